// Package numbering issues the sequential, human-readable business numbers
// used across the system (vehicle, customer, contract and invoice numbers).
//
// Numbers come from durable per-namespace counters, never from a query over
// the numbered entities themselves. Allocation is a single conditional
// increment so that concurrent callers can never observe the same value.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dms/backend/internal/domain/shared"
)

// Namespace is a counting domain for sequential identifiers.
type Namespace string

const (
	NamespaceVehicle  Namespace = "vehicle"
	NamespaceCustomer Namespace = "customer"
	NamespaceContract Namespace = "contract"
)

// InvoiceNamespace returns the per-year namespace for invoice numbers.
// Invoice sequences restart at 1 every calendar year.
func InvoiceNamespace(year int) Namespace {
	return Namespace(fmt.Sprintf("invoice-%d", year))
}

// IsValid checks that the namespace is non-empty and well-formed.
func (n Namespace) IsValid() bool {
	s := string(n)
	return s != "" && !strings.ContainsAny(s, " \t\n")
}

// String returns the string representation of the namespace.
func (n Namespace) String() string {
	return string(n)
}

// Allocator hands out the next number in a namespace.
//
// Implementations must guarantee uniqueness and monotonicity under concurrent
// callers: two allocations in the same namespace never return the same value
// and later allocations return larger values. Allocations in different
// namespaces are independent.
type Allocator interface {
	// Next returns the next sequential number in the namespace.
	Next(ctx context.Context, ns Namespace) (int64, error)
}

// InvoiceNumberPrefix is the prefix of all formatted invoice numbers.
const InvoiceNumberPrefix = "INV"

// FormatVehicleNumber renders a vehicle number, e.g. "V-00042".
func FormatVehicleNumber(seq int64) string {
	return fmt.Sprintf("V-%05d", seq)
}

// FormatCustomerNumber renders a customer number, e.g. "K-00007".
func FormatCustomerNumber(seq int64) string {
	return fmt.Sprintf("K-%05d", seq)
}

// FormatContractNumber renders a contract number, e.g. "C-2026-00013".
func FormatContractNumber(year int, seq int64) string {
	return fmt.Sprintf("C-%d-%05d", year, seq)
}

// FormatInvoiceNumber renders an invoice number, e.g. "INV-2026-0001".
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", InvoiceNumberPrefix, year, seq)
}

// ParseInvoiceNumber splits a formatted invoice number into year and sequence.
func ParseInvoiceNumber(number string) (year int, seq int64, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] != InvoiceNumberPrefix {
		return 0, 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number must have the form INV-<year>-<seq>")
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number year is not numeric")
	}
	seq, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number sequence is not numeric")
	}
	return year, seq, nil
}

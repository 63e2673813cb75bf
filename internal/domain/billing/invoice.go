package billing

import (
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusOpen      InvoiceStatus = "OPEN"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusOpen, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusOpen || target == InvoiceStatusCancelled
	case InvoiceStatusOpen:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return false
	}
	return false
}

// amountTolerance is the accepted rounding difference on aggregate amounts
var amountTolerance = decimal.NewFromFloat(0.01)

// InvoicePosition represents one line of an invoice
type InvoicePosition struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	Total       decimal.Decimal
}

// NewInvoicePosition creates a new invoice line. Total is quantity times
// unit price, rounded to cents.
func NewInvoicePosition(invoiceID uuid.UUID, position int, description string, quantity decimal.Decimal, unitPrice valueobject.Money, vatRate decimal.Decimal) (*InvoicePosition, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Position description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if vatRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", "VAT rate cannot be negative")
	}

	return &InvoicePosition{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Position:    position,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		VATRate:     vatRate,
		Total:       quantity.Mul(unitPrice.Amount()).Round(2),
	}, nil
}

// NetShare returns the net portion of the position total
func (p *InvoicePosition) NetShare() decimal.Decimal {
	divisor := decimal.NewFromInt(1).Add(p.VATRate.Div(decimal.NewFromInt(100)))
	return p.Total.Div(divisor).Round(2)
}

// Invoice represents an invoice with an ordered list of positions.
// Aggregate amounts are recalculated on every position change; the invariant
// gross == net + vat == sum(position totals) holds within one cent.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	ContractID    *uuid.UUID
	CustomerID    uuid.UUID
	Positions     []InvoicePosition
	NetAmount     decimal.Decimal
	VATAmount     decimal.Decimal
	GrossAmount   decimal.Decimal
	Status        InvoiceStatus
	IssuedAt      *time.Time
	DueAt         *time.Time
	PaidAt        *time.Time
	Notes         string
}

// NewInvoice creates a new invoice in DRAFT status.
// invoiceNumber must come from the numbering allocator (INV-<year>-<seq>).
func NewInvoice(invoiceNumber string, customerID uuid.UUID, contractID *uuid.UUID) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        customerID,
		ContractID:        contractID,
		Positions:         make([]InvoicePosition, 0),
		NetAmount:         decimal.Zero,
		VATAmount:         decimal.Zero,
		GrossAmount:       decimal.Zero,
		Status:            InvoiceStatusDraft,
	}, nil
}

// AddPosition appends a line to the invoice and recalculates the aggregates.
// Only allowed in DRAFT status.
func (i *Invoice) AddPosition(description string, quantity decimal.Decimal, unitPrice valueobject.Money, vatRate decimal.Decimal) (*InvoicePosition, error) {
	if i.Status != InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add positions to a non-draft invoice")
	}

	pos, err := NewInvoicePosition(i.ID, len(i.Positions)+1, description, quantity, unitPrice, vatRate)
	if err != nil {
		return nil, err
	}

	i.Positions = append(i.Positions, *pos)
	i.recalculate()
	return pos, nil
}

// RemovePosition removes a line by its ID and renumbers the remaining lines
func (i *Invoice) RemovePosition(positionID uuid.UUID) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove positions from a non-draft invoice")
	}

	for idx, pos := range i.Positions {
		if pos.ID == positionID {
			i.Positions = append(i.Positions[:idx], i.Positions[idx+1:]...)
			for j := range i.Positions {
				i.Positions[j].Position = j + 1
			}
			i.recalculate()
			return nil
		}
	}
	return shared.NewDomainError("POSITION_NOT_FOUND", "Invoice position not found")
}

// recalculate rebuilds the aggregate amounts from the positions
func (i *Invoice) recalculate() {
	gross := decimal.Zero
	net := decimal.Zero
	for _, pos := range i.Positions {
		gross = gross.Add(pos.Total)
		net = net.Add(pos.NetShare())
	}
	i.GrossAmount = gross
	i.NetAmount = net
	i.VATAmount = gross.Sub(net)
	i.UpdatedAt = time.Now()
}

// Validate checks the aggregate amount invariants
func (i *Invoice) Validate() error {
	sum := decimal.Zero
	for _, pos := range i.Positions {
		sum = sum.Add(pos.Total)
	}
	if i.GrossAmount.Sub(sum).Abs().GreaterThan(amountTolerance) {
		return shared.NewDomainError("INVALID_AMOUNTS",
			fmt.Sprintf("Gross amount %s does not match position sum %s", i.GrossAmount.StringFixed(2), sum.StringFixed(2)))
	}
	if i.GrossAmount.Sub(i.NetAmount.Add(i.VATAmount)).Abs().GreaterThan(amountTolerance) {
		return shared.NewDomainError("INVALID_AMOUNTS",
			fmt.Sprintf("Gross amount %s does not equal net %s plus VAT %s", i.GrossAmount.StringFixed(2), i.NetAmount.StringFixed(2), i.VATAmount.StringFixed(2)))
	}
	return nil
}

// Issue moves the invoice from DRAFT to OPEN and stamps the issue date
func (i *Invoice) Issue(dueInDays int) error {
	if !i.Status.CanTransitionTo(InvoiceStatusOpen) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue invoice in status %s", i.Status))
	}
	if len(i.Positions) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot issue an invoice without positions")
	}
	if err := i.Validate(); err != nil {
		return err
	}
	now := time.Now()
	due := now.AddDate(0, 0, dueInDays)
	i.Status = InvoiceStatusOpen
	i.IssuedAt = &now
	i.DueAt = &due
	i.UpdatedAt = now
	return nil
}

// MarkPaid marks an open invoice as paid
func (i *Invoice) MarkPaid() error {
	if !i.Status.CanTransitionTo(InvoiceStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice in status %s as paid", i.Status))
	}
	now := time.Now()
	i.Status = InvoiceStatusPaid
	i.PaidAt = &now
	i.UpdatedAt = now
	return nil
}

// Cancel cancels a draft or open invoice
func (i *Invoice) Cancel() error {
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in status %s", i.Status))
	}
	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}

// GetGrossAmountMoney returns the gross amount as Money value object
func (i *Invoice) GetGrossAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(i.GrossAmount)
}

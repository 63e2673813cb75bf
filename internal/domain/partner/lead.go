package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadStatus represents the processing state of an inbound inquiry
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusCompleted LeadStatus = "COMPLETED"
	LeadStatusDiscarded LeadStatus = "DISCARDED"
)

// IsValid checks if the status is a valid LeadStatus
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusCompleted, LeadStatusDiscarded:
		return true
	}
	return false
}

// Lead represents an unauthenticated inbound inquiry from the catalog site.
// A lead can be converted into a customer exactly once.
type Lead struct {
	shared.BaseAggregateRoot
	Name       string
	Email      string
	Phone      string
	Message    string
	VehicleID  *uuid.UUID
	Status     LeadStatus
	CustomerID *uuid.UUID
}

// NewLead creates a new lead from a catalog inquiry
func NewLead(name, email, phone, message string, vehicleID *uuid.UUID) (*Lead, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Lead name cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" && strings.TrimSpace(phone) == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Lead needs at least an email address or phone number")
	}

	return &Lead{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Phone:             strings.TrimSpace(phone),
		Message:           message,
		VehicleID:         vehicleID,
		Status:            LeadStatusNew,
	}, nil
}

// MarkContacted records that staff reached out to the lead
func (l *Lead) MarkContacted() error {
	if l.Status != LeadStatusNew {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark lead in status %s as contacted", l.Status))
	}
	l.Status = LeadStatusContacted
	l.UpdatedAt = time.Now()
	return nil
}

// Discard closes a lead without conversion
func (l *Lead) Discard() error {
	if l.Status == LeadStatusCompleted || l.Status == LeadStatusDiscarded {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Lead is already %s", l.Status))
	}
	l.Status = LeadStatusDiscarded
	l.UpdatedAt = time.Now()
	return nil
}

// Convert builds a customer from the lead's contact fields and closes the
// lead. Converting an already converted lead fails; callers that want
// idempotent behavior check CustomerID first.
//
// Name splitting follows the "last word is the surname" heuristic. This is
// known to be lossy for multi-word surnames and business names; staff can
// correct the customer record afterwards.
func (l *Lead) Convert(customerNumber int64) (*Customer, error) {
	if l.Status == LeadStatusCompleted {
		return nil, shared.NewDomainError("ALREADY_CONVERTED", "Lead has already been converted to a customer")
	}
	if l.Status == LeadStatusDiscarded {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot convert a discarded lead")
	}

	firstName, lastName := SplitName(l.Name)
	customer, err := NewCustomer(customerNumber, CustomerTypePrivate, firstName, lastName, "")
	if err != nil {
		return nil, err
	}
	customer.SetContact(l.Email, l.Phone)

	l.Status = LeadStatusCompleted
	l.CustomerID = &customer.ID
	l.UpdatedAt = time.Now()
	return customer, nil
}

// SplitName splits a free-form name into first and last name,
// treating the last word as the surname.
func SplitName(name string) (firstName, lastName string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}

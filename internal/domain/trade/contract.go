package trade

import (
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the status of a contract
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "DRAFT"
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCompleted ContractStatus = "COMPLETED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusCompleted, ContractStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are permitted
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	switch s {
	case ContractStatusDraft:
		return target == ContractStatusActive || target == ContractStatusCancelled
	case ContractStatusActive:
		return target == ContractStatusCompleted || target == ContractStatusCancelled
	case ContractStatusCompleted, ContractStatusCancelled:
		return false
	}
	return false
}

// ContractType represents the direction of a contract
type ContractType string

const (
	// ContractTypePurchase is a customer buying a vehicle from the dealership
	ContractTypePurchase ContractType = "PURCHASE"
	// ContractTypeAcquisition is the dealership buying a vehicle from a customer
	ContractTypeAcquisition ContractType = "ACQUISITION"
)

// IsValid checks if the type is a valid ContractType
func (t ContractType) IsValid() bool {
	return t == ContractTypePurchase || t == ContractTypeAcquisition
}

// priceTolerance is the accepted rounding difference between gross and net+vat
var priceTolerance = decimal.NewFromFloat(0.01)

// Contract represents a purchase or acquisition contract. It is the sole
// authority over the linked vehicle's RESERVED and SOLD statuses.
type Contract struct {
	shared.BaseAggregateRoot
	ContractNumber string
	Type           ContractType
	CustomerID     uuid.UUID
	VehicleID      uuid.UUID
	NetPrice       decimal.Decimal
	VATAmount      decimal.Decimal
	GrossPrice     decimal.Decimal
	Deposit        decimal.Decimal
	Status         ContractStatus
	DeliveryDate   *time.Time
	Notes          string
	ActivatedAt    *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string
}

// NewContract creates a new contract in DRAFT status.
// contractNumber must come from the numbering allocator.
func NewContract(contractNumber string, contractType ContractType, customerID, vehicleID uuid.UUID) (*Contract, error) {
	if contractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if !contractType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONTRACT_TYPE", fmt.Sprintf("Unknown contract type: %s", contractType))
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if vehicleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VEHICLE", "Vehicle ID cannot be empty")
	}

	return &Contract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractNumber:    contractNumber,
		Type:              contractType,
		CustomerID:        customerID,
		VehicleID:         vehicleID,
		NetPrice:          decimal.Zero,
		VATAmount:         decimal.Zero,
		GrossPrice:        decimal.Zero,
		Deposit:           decimal.Zero,
		Status:            ContractStatusDraft,
	}, nil
}

// SetPricing sets the monetary fields. Gross must equal net plus VAT within
// the rounding tolerance of one cent.
func (c *Contract) SetPricing(net, vat, gross valueobject.Money) error {
	if net.IsNegative() || vat.IsNegative() || gross.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Contract amounts cannot be negative")
	}
	diff := gross.Amount().Sub(net.Amount().Add(vat.Amount())).Abs()
	if diff.GreaterThan(priceTolerance) {
		return shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Gross price %s does not equal net %s plus VAT %s", gross.StringFixed(2), net.StringFixed(2), vat.StringFixed(2)))
	}
	c.NetPrice = net.Amount()
	c.VATAmount = vat.Amount()
	c.GrossPrice = gross.Amount()
	c.UpdatedAt = time.Now()
	return nil
}

// SetDeposit sets the deposit amount, which cannot exceed the gross price
func (c *Contract) SetDeposit(deposit valueobject.Money) error {
	if deposit.IsNegative() {
		return shared.NewDomainError("INVALID_DEPOSIT", "Deposit cannot be negative")
	}
	if deposit.Amount().GreaterThan(c.GrossPrice) {
		return shared.NewDomainError("INVALID_DEPOSIT", "Deposit cannot exceed the gross price")
	}
	c.Deposit = deposit.Amount()
	c.UpdatedAt = time.Now()
	return nil
}

// SetDeliveryDate sets the agreed delivery date
func (c *Contract) SetDeliveryDate(date time.Time) {
	c.DeliveryDate = &date
	c.UpdatedAt = time.Now()
}

// Activate moves the contract from DRAFT to ACTIVE.
// Callers must apply the planned lifecycle effects in the same transaction.
func (c *Contract) Activate() error {
	if !c.Status.CanTransitionTo(ContractStatusActive) {
		return terminalOrInvalid(c.Status, ContractStatusActive)
	}
	now := time.Now()
	c.Status = ContractStatusActive
	c.ActivatedAt = &now
	c.UpdatedAt = now
	return nil
}

// Complete moves the contract from ACTIVE to COMPLETED
func (c *Contract) Complete() error {
	if !c.Status.CanTransitionTo(ContractStatusCompleted) {
		return terminalOrInvalid(c.Status, ContractStatusCompleted)
	}
	now := time.Now()
	c.Status = ContractStatusCompleted
	c.CompletedAt = &now
	c.UpdatedAt = now
	return nil
}

// Cancel moves the contract to CANCELLED
func (c *Contract) Cancel(reason string) error {
	if !c.Status.CanTransitionTo(ContractStatusCancelled) {
		return terminalOrInvalid(c.Status, ContractStatusCancelled)
	}
	now := time.Now()
	c.Status = ContractStatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason
	c.UpdatedAt = now
	return nil
}

func terminalOrInvalid(from, to ContractStatus) *shared.DomainError {
	if from.IsTerminal() {
		return shared.NewDomainError("TERMINAL_STATUS", fmt.Sprintf("Contract is %s, no further transitions permitted", from))
	}
	return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot transition contract from %s to %s", from, to))
}

// GetGrossPriceMoney returns the gross price as Money value object
func (c *Contract) GetGrossPriceMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(c.GrossPrice)
}

// OutstandingAmount returns gross price minus deposit
func (c *Contract) OutstandingAmount() valueobject.Money {
	return valueobject.NewMoneyEUR(c.GrossPrice.Sub(c.Deposit))
}

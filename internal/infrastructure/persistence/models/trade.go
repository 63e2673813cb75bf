package models

import (
	"time"

	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate root
type ContractModel struct {
	AggregateModel
	ContractNumber string          `gorm:"size:50;not null;uniqueIndex"`
	Type           string          `gorm:"size:20;not null"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	VehicleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	NetPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	VATAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GrossPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Deposit        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status         string          `gorm:"size:20;not null;index"`
	DeliveryDate   *time.Time      ``
	Notes          string          `gorm:"type:text"`
	ActivatedAt    *time.Time      ``
	CompletedAt    *time.Time      ``
	CancelledAt    *time.Time      ``
	CancelReason   string          `gorm:"size:500"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *ContractModel) ToDomain() *trade.Contract {
	return &trade.Contract{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ContractNumber:    m.ContractNumber,
		Type:              trade.ContractType(m.Type),
		CustomerID:        m.CustomerID,
		VehicleID:         m.VehicleID,
		NetPrice:          m.NetPrice,
		VATAmount:         m.VATAmount,
		GrossPrice:        m.GrossPrice,
		Deposit:           m.Deposit,
		Status:            trade.ContractStatus(m.Status),
		DeliveryDate:      m.DeliveryDate,
		Notes:             m.Notes,
		ActivatedAt:       m.ActivatedAt,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
}

// ContractModelFromDomain converts the domain aggregate to the persistence model
func ContractModelFromDomain(c *trade.Contract) *ContractModel {
	model := &ContractModel{
		ContractNumber: c.ContractNumber,
		Type:           string(c.Type),
		CustomerID:     c.CustomerID,
		VehicleID:      c.VehicleID,
		NetPrice:       c.NetPrice,
		VATAmount:      c.VATAmount,
		GrossPrice:     c.GrossPrice,
		Deposit:        c.Deposit,
		Status:         string(c.Status),
		DeliveryDate:   c.DeliveryDate,
		Notes:          c.Notes,
		ActivatedAt:    c.ActivatedAt,
		CompletedAt:    c.CompletedAt,
		CancelledAt:    c.CancelledAt,
		CancelReason:   c.CancelReason,
	}
	model.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return model
}

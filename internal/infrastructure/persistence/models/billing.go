package models

import (
	"time"

	"github.com/dms/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Positions are loaded eagerly; the aggregate is always complete in memory.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                 `gorm:"size:50;not null;uniqueIndex"`
	ContractID    *uuid.UUID             `gorm:"type:uuid;index"`
	CustomerID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	NetAmount     decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	VATAmount     decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	GrossAmount   decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	Status        string                 `gorm:"size:20;not null;index"`
	IssuedAt      *time.Time             ``
	DueAt         *time.Time             ``
	PaidAt        *time.Time             ``
	Notes         string                 `gorm:"type:text"`
	Positions     []InvoicePositionModel `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoicePositionModel is the persistence model for one invoice line
type InvoicePositionModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"size:500;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VATRate     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (InvoicePositionModel) TableName() string {
	return "invoice_positions"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	positions := make([]billing.InvoicePosition, len(m.Positions))
	for i, p := range m.Positions {
		positions[i] = billing.InvoicePosition{
			ID:          p.ID,
			InvoiceID:   p.InvoiceID,
			Position:    p.Position,
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			VATRate:     p.VATRate,
			Total:       p.Total,
		}
	}

	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		ContractID:        m.ContractID,
		CustomerID:        m.CustomerID,
		Positions:         positions,
		NetAmount:         m.NetAmount,
		VATAmount:         m.VATAmount,
		GrossAmount:       m.GrossAmount,
		Status:            billing.InvoiceStatus(m.Status),
		IssuedAt:          m.IssuedAt,
		DueAt:             m.DueAt,
		PaidAt:            m.PaidAt,
		Notes:             m.Notes,
	}
}

// InvoiceModelFromDomain converts the domain aggregate to the persistence model
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	positions := make([]InvoicePositionModel, len(inv.Positions))
	for i, p := range inv.Positions {
		positions[i] = InvoicePositionModel{
			ID:          p.ID,
			InvoiceID:   p.InvoiceID,
			Position:    p.Position,
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			VATRate:     p.VATRate,
			Total:       p.Total,
		}
	}

	model := &InvoiceModel{
		InvoiceNumber: inv.InvoiceNumber,
		ContractID:    inv.ContractID,
		CustomerID:    inv.CustomerID,
		NetAmount:     inv.NetAmount,
		VATAmount:     inv.VATAmount,
		GrossAmount:   inv.GrossAmount,
		Status:        string(inv.Status),
		IssuedAt:      inv.IssuedAt,
		DueAt:         inv.DueAt,
		PaidAt:        inv.PaidAt,
		Notes:         inv.Notes,
		Positions:     positions,
	}
	model.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return model
}

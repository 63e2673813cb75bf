package billing

import (
	"time"

	"github.com/dms/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionRequest represents one invoice line in a create request
type PositionRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID         `json:"customer_id" binding:"required"`
	ContractID *uuid.UUID        `json:"contract_id"`
	Positions  []PositionRequest `json:"positions" binding:"dive"`
	Notes      string            `json:"notes" binding:"max=5000"`
}

// IssueInvoiceRequest carries the payment term for issuing an invoice
type IssueInvoiceRequest struct {
	DueInDays int `json:"due_in_days" binding:"omitempty,min=0,max=365"`
}

// PositionResponse represents an invoice line in API responses
type PositionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    uuid.UUID          `json:"customer_id"`
	ContractID    *uuid.UUID         `json:"contract_id"`
	Positions     []PositionResponse `json:"positions"`
	NetAmount     decimal.Decimal    `json:"net_amount"`
	VATAmount     decimal.Decimal    `json:"vat_amount"`
	GrossAmount   decimal.Decimal    `json:"gross_amount"`
	Status        string             `json:"status"`
	IssuedAt      *time.Time         `json:"issued_at"`
	DueAt         *time.Time         `json:"due_at"`
	PaidAt        *time.Time         `json:"paid_at"`
	Notes         string             `json:"notes"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int                `json:"version"`
}

// InvoiceListFilter represents filter options for invoice lists
type InvoiceListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=DRAFT OPEN PAID CANCELLED"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	positions := make([]PositionResponse, len(inv.Positions))
	for i, p := range inv.Positions {
		positions[i] = PositionResponse{
			ID:          p.ID,
			Position:    p.Position,
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			VATRate:     p.VATRate,
			Total:       p.Total,
		}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		ContractID:    inv.ContractID,
		Positions:     positions,
		NetAmount:     inv.NetAmount,
		VATAmount:     inv.VATAmount,
		GrossAmount:   inv.GrossAmount,
		Status:        string(inv.Status),
		IssuedAt:      inv.IssuedAt,
		DueAt:         inv.DueAt,
		PaidAt:        inv.PaidAt,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
	}
}

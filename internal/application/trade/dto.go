package trade

import (
	"time"

	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateContractRequest represents a request to create a new contract
type CreateContractRequest struct {
	Type         string           `json:"type" binding:"required,oneof=PURCHASE ACQUISITION"`
	CustomerID   uuid.UUID        `json:"customer_id" binding:"required"`
	VehicleID    uuid.UUID        `json:"vehicle_id" binding:"required"`
	NetPrice     decimal.Decimal  `json:"net_price" binding:"required"`
	VATAmount    decimal.Decimal  `json:"vat_amount"`
	GrossPrice   decimal.Decimal  `json:"gross_price" binding:"required"`
	Deposit      *decimal.Decimal `json:"deposit"`
	DeliveryDate *time.Time       `json:"delivery_date"`
	Notes        string           `json:"notes" binding:"max=5000"`
}

// UpdateContractRequest represents a request to update a draft contract
type UpdateContractRequest struct {
	NetPrice     *decimal.Decimal `json:"net_price"`
	VATAmount    *decimal.Decimal `json:"vat_amount"`
	GrossPrice   *decimal.Decimal `json:"gross_price"`
	Deposit      *decimal.Decimal `json:"deposit"`
	DeliveryDate *time.Time       `json:"delivery_date"`
	Notes        *string          `json:"notes" binding:"omitempty,max=5000"`
}

// CancelContractRequest carries the reason for a cancellation
type CancelContractRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID             uuid.UUID       `json:"id"`
	ContractNumber string          `json:"contract_number"`
	Type           string          `json:"type"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	VehicleID      uuid.UUID       `json:"vehicle_id"`
	NetPrice       decimal.Decimal `json:"net_price"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	GrossPrice     decimal.Decimal `json:"gross_price"`
	Deposit        decimal.Decimal `json:"deposit"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Status         string          `json:"status"`
	DeliveryDate   *time.Time      `json:"delivery_date"`
	Notes          string          `json:"notes"`
	ActivatedAt    *time.Time      `json:"activated_at"`
	CompletedAt    *time.Time      `json:"completed_at"`
	CancelledAt    *time.Time      `json:"cancelled_at"`
	CancelReason   string          `json:"cancel_reason"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ContractListFilter represents filter options for contract lists
type ContractListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE COMPLETED CANCELLED"`
	Type       string     `form:"type" binding:"omitempty,oneof=PURCHASE ACQUISITION"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToContractResponse converts a domain Contract to ContractResponse
func ToContractResponse(c *trade.Contract) ContractResponse {
	return ContractResponse{
		ID:             c.ID,
		ContractNumber: c.ContractNumber,
		Type:           string(c.Type),
		CustomerID:     c.CustomerID,
		VehicleID:      c.VehicleID,
		NetPrice:       c.NetPrice,
		VATAmount:      c.VATAmount,
		GrossPrice:     c.GrossPrice,
		Deposit:        c.Deposit,
		Outstanding:    c.OutstandingAmount().Amount(),
		Status:         string(c.Status),
		DeliveryDate:   c.DeliveryDate,
		Notes:          c.Notes,
		ActivatedAt:    c.ActivatedAt,
		CompletedAt:    c.CompletedAt,
		CancelledAt:    c.CancelledAt,
		CancelReason:   c.CancelReason,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

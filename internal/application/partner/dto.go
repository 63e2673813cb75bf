package partner

import (
	"time"

	"github.com/dms/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Type        string `json:"type" binding:"required,oneof=PRIVATE BUSINESS"`
	FirstName   string `json:"first_name" binding:"max=100"`
	LastName    string `json:"last_name" binding:"max=100"`
	CompanyName string `json:"company_name" binding:"max=200"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"max=50"`
	Street      string `json:"street" binding:"max=200"`
	PostalCode  string `json:"postal_code" binding:"max=20"`
	City        string `json:"city" binding:"max=100"`
	Country     string `json:"country" binding:"omitempty,len=2"`
	TaxID       string `json:"tax_id" binding:"max=50"`
	Notes       string `json:"notes" binding:"max=5000"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	CompanyName *string `json:"company_name" binding:"omitempty,max=200"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Street      *string `json:"street" binding:"omitempty,max=200"`
	PostalCode  *string `json:"postal_code" binding:"omitempty,max=20"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Country     *string `json:"country" binding:"omitempty,len=2"`
	TaxID       *string `json:"tax_id" binding:"omitempty,max=50"`
	Notes       *string `json:"notes" binding:"omitempty,max=5000"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID `json:"id"`
	CustomerNumber int64     `json:"customer_number"`
	Type           string    `json:"type"`
	Role           string    `json:"role"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	CompanyName    string    `json:"company_name"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Street         string    `json:"street"`
	PostalCode     string    `json:"postal_code"`
	City           string    `json:"city"`
	Country        string    `json:"country"`
	TaxID          string    `json:"tax_id"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version"`
}

// CustomerListFilter represents filter options for customer lists
type CustomerListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=PRIVATE BUSINESS"`
	Role     string `form:"role" binding:"omitempty,oneof=PROSPECT BUYER SELLER"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateLeadRequest represents an inbound catalog inquiry
type CreateLeadRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=200"`
	Email     string     `json:"email" binding:"omitempty,email"`
	Phone     string     `json:"phone" binding:"max=50"`
	Message   string     `json:"message" binding:"max=5000"`
	VehicleID *uuid.UUID `json:"vehicle_id"`
}

// LeadResponse represents a lead in API responses
type LeadResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Message    string     `json:"message"`
	VehicleID  *uuid.UUID `json:"vehicle_id"`
	Status     string     `json:"status"`
	CustomerID *uuid.UUID `json:"customer_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// LeadListFilter represents filter options for lead lists
type LeadListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=NEW CONTACTED COMPLETED DISCARDED"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// ConvertLeadResponse is returned by a lead conversion: the closed lead
// together with the customer created from it
type ConvertLeadResponse struct {
	Lead     LeadResponse     `json:"lead"`
	Customer CustomerResponse `json:"customer"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		CustomerNumber: c.CustomerNumber,
		Type:           string(c.Type),
		Role:           string(c.Role),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		CompanyName:    c.CompanyName,
		DisplayName:    c.DisplayName(),
		Email:          c.Email,
		Phone:          c.Phone,
		Street:         c.Street,
		PostalCode:     c.PostalCode,
		City:           c.City,
		Country:        c.Country,
		TaxID:          c.TaxID,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

// ToLeadResponse converts a domain Lead to LeadResponse
func ToLeadResponse(l *partner.Lead) LeadResponse {
	return LeadResponse{
		ID:         l.ID,
		Name:       l.Name,
		Email:      l.Email,
		Phone:      l.Phone,
		Message:    l.Message,
		VehicleID:  l.VehicleID,
		Status:     string(l.Status),
		CustomerID: l.CustomerID,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

package models

import (
	"github.com/dms/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CustomerModel is the persistence model for the Customer aggregate root
type CustomerModel struct {
	AggregateModel
	CustomerNumber int64  `gorm:"not null;uniqueIndex"`
	Type           string `gorm:"size:20;not null"`
	Role           string `gorm:"size:20;not null"`
	FirstName      string `gorm:"size:100"`
	LastName       string `gorm:"size:100;index"`
	CompanyName    string `gorm:"size:200;index"`
	Email          string `gorm:"size:255;index"`
	Phone          string `gorm:"size:50"`
	Street         string `gorm:"size:255"`
	PostalCode     string `gorm:"size:20"`
	City           string `gorm:"size:100"`
	Country        string `gorm:"size:2;not null;default:'DE'"`
	TaxID          string `gorm:"size:50"`
	Notes          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerNumber:    m.CustomerNumber,
		Type:              partner.CustomerType(m.Type),
		Role:              partner.CustomerRole(m.Role),
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		CompanyName:       m.CompanyName,
		Email:             m.Email,
		Phone:             m.Phone,
		Street:            m.Street,
		PostalCode:        m.PostalCode,
		City:              m.City,
		Country:           m.Country,
		TaxID:             m.TaxID,
		Notes:             m.Notes,
	}
}

// CustomerModelFromDomain converts the domain aggregate to the persistence model
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	model := &CustomerModel{
		CustomerNumber: c.CustomerNumber,
		Type:           string(c.Type),
		Role:           string(c.Role),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		CompanyName:    c.CompanyName,
		Email:          c.Email,
		Phone:          c.Phone,
		Street:         c.Street,
		PostalCode:     c.PostalCode,
		City:           c.City,
		Country:        c.Country,
		TaxID:          c.TaxID,
		Notes:          c.Notes,
	}
	model.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return model
}

// LeadModel is the persistence model for the Lead aggregate root
type LeadModel struct {
	AggregateModel
	Name       string     `gorm:"size:200;not null"`
	Email      string     `gorm:"size:255"`
	Phone      string     `gorm:"size:50"`
	Message    string     `gorm:"type:text"`
	VehicleID  *uuid.UUID `gorm:"type:uuid;index"`
	Status     string     `gorm:"size:20;not null;index"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *LeadModel) ToDomain() *partner.Lead {
	return &partner.Lead{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Message:           m.Message,
		VehicleID:         m.VehicleID,
		Status:            partner.LeadStatus(m.Status),
		CustomerID:        m.CustomerID,
	}
}

// LeadModelFromDomain converts the domain aggregate to the persistence model
func LeadModelFromDomain(l *partner.Lead) *LeadModel {
	model := &LeadModel{
		Name:       l.Name,
		Email:      l.Email,
		Phone:      l.Phone,
		Message:    l.Message,
		VehicleID:  l.VehicleID,
		Status:     string(l.Status),
		CustomerID: l.CustomerID,
	}
	model.FromDomainAggregateRoot(l.BaseAggregateRoot)
	return model
}

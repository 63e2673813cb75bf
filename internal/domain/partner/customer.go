package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
)

// CustomerType represents the legal form of a customer
type CustomerType string

const (
	CustomerTypePrivate  CustomerType = "PRIVATE"
	CustomerTypeBusiness CustomerType = "BUSINESS"
)

// IsValid checks if the type is a valid CustomerType
func (t CustomerType) IsValid() bool {
	return t == CustomerTypePrivate || t == CustomerTypeBusiness
}

// CustomerRole represents the commercial relationship with a customer.
// The role is advisory metadata maintained by the contract lifecycle, not an
// authoritative state: a buyer can later also sell a vehicle to the dealership.
type CustomerRole string

const (
	RoleProspect CustomerRole = "PROSPECT"
	RoleBuyer    CustomerRole = "BUYER"
	RoleSeller   CustomerRole = "SELLER"
)

// IsValid checks if the role is a valid CustomerRole
func (r CustomerRole) IsValid() bool {
	switch r {
	case RoleProspect, RoleBuyer, RoleSeller:
		return true
	}
	return false
}

// Customer represents a person or business the dealership trades with
type Customer struct {
	shared.BaseAggregateRoot
	CustomerNumber int64
	Type           CustomerType
	Role           CustomerRole
	FirstName      string
	LastName       string
	CompanyName    string
	Email          string
	Phone          string
	Street         string
	PostalCode     string
	City           string
	Country        string
	TaxID          string
	Notes          string
}

// NewCustomer creates a new customer in the PROSPECT role.
// customerNumber must come from the numbering allocator.
func NewCustomer(customerNumber int64, customerType CustomerType, firstName, lastName, companyName string) (*Customer, error) {
	if customerNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NUMBER", "Customer number must be positive")
	}
	if !customerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_TYPE", fmt.Sprintf("Unknown customer type: %s", customerType))
	}
	switch customerType {
	case CustomerTypePrivate:
		if lastName == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Last name is required for private customers")
		}
	case CustomerTypeBusiness:
		if companyName == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Company name is required for business customers")
		}
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerNumber:    customerNumber,
		Type:              customerType,
		Role:              RoleProspect,
		FirstName:         firstName,
		LastName:          lastName,
		CompanyName:       companyName,
		Country:           "DE",
	}, nil
}

// PromoteToBuyer marks the customer as a buyer. Only prospects are promoted;
// a customer already acting as seller keeps that role.
func (c *Customer) PromoteToBuyer() {
	if c.Role == RoleProspect {
		c.Role = RoleBuyer
		c.UpdatedAt = time.Now()
	}
}

// PromoteToSeller marks the customer as a seller of a vehicle to the dealership
func (c *Customer) PromoteToSeller() {
	if c.Role == RoleProspect {
		c.Role = RoleSeller
		c.UpdatedAt = time.Now()
	}
}

// SetContact updates the contact attributes
func (c *Customer) SetContact(email, phone string) {
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.Phone = strings.TrimSpace(phone)
	c.UpdatedAt = time.Now()
}

// SetAddress updates the postal address
func (c *Customer) SetAddress(street, postalCode, city, country string) {
	c.Street = street
	c.PostalCode = postalCode
	c.City = city
	if country != "" {
		c.Country = country
	}
	c.UpdatedAt = time.Now()
}

// DisplayName returns the name shown in lists and documents
func (c *Customer) DisplayName() string {
	if c.Type == CustomerTypeBusiness {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

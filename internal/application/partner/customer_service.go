package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/dms/backend/internal/domain/numbering"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	allocator    numbering.Allocator
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	allocator numbering.Allocator,
	logger *zap.Logger,
) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		allocator:    allocator,
		logger:       logger,
	}
}

// Create creates a new customer in the PROSPECT role
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customerNumber, err := s.allocator.Next(ctx, numbering.NamespaceCustomer)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate customer number: %w", err)
	}

	customer, err := partner.NewCustomer(
		customerNumber,
		partner.CustomerType(req.Type),
		req.FirstName,
		req.LastName,
		req.CompanyName,
	)
	if err != nil {
		return nil, err
	}

	customer.SetContact(req.Email, req.Phone)
	customer.SetAddress(req.Street, req.PostalCode, req.City, req.Country)
	customer.TaxID = req.TaxID
	customer.Notes = req.Notes

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("id", customer.ID.String()),
		zap.Int64("customerNumber", customer.CustomerNumber))

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a paginated list of customers
func (s *CustomerService) List(ctx context.Context, req CustomerListFilter) ([]CustomerResponse, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  make(map[string]interface{}),
	}
	if req.Type != "" {
		filter.Filters["type"] = req.Type
	}
	if req.Role != "" {
		filter.Filters["role"] = req.Role
	}

	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	return items, total, nil
}

// Update updates a customer's master data
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		if customer.Type == partner.CustomerTypePrivate && *req.LastName == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Last name is required for private customers")
		}
		customer.LastName = *req.LastName
	}
	if req.CompanyName != nil {
		if customer.Type == partner.CustomerTypeBusiness && *req.CompanyName == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Company name is required for business customers")
		}
		customer.CompanyName = *req.CompanyName
	}

	if req.Email != nil || req.Phone != nil {
		email := customer.Email
		if req.Email != nil {
			email = *req.Email
		}
		phone := customer.Phone
		if req.Phone != nil {
			phone = *req.Phone
		}
		customer.SetContact(email, phone)
	}

	if req.Street != nil || req.PostalCode != nil || req.City != nil || req.Country != nil {
		street := customer.Street
		if req.Street != nil {
			street = *req.Street
		}
		postalCode := customer.PostalCode
		if req.PostalCode != nil {
			postalCode = *req.PostalCode
		}
		city := customer.City
		if req.City != nil {
			city = *req.City
		}
		country := customer.Country
		if req.Country != nil {
			country = *req.Country
		}
		customer.SetAddress(street, postalCode, city, country)
	}

	if req.TaxID != nil {
		customer.TaxID = *req.TaxID
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.logger.Info("customer updated", zap.String("id", customer.ID.String()))

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info("customer deleted", zap.String("id", id.String()))
	return nil
}

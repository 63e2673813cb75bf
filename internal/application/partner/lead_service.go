package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/numbering"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadService handles inbound inquiries and their conversion to customers
type LeadService struct {
	leadRepo     partner.LeadRepository
	customerRepo partner.CustomerRepository
	vehicleRepo  inventory.VehicleRepository
	allocator    numbering.Allocator
	logger       *zap.Logger
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo partner.LeadRepository,
	customerRepo partner.CustomerRepository,
	vehicleRepo inventory.VehicleRepository,
	allocator numbering.Allocator,
	logger *zap.Logger,
) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		leadRepo:     leadRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		allocator:    allocator,
		logger:       logger,
	}
}

// Create records an inbound inquiry from the public catalog
func (s *LeadService) Create(ctx context.Context, req CreateLeadRequest) (*LeadResponse, error) {
	if req.VehicleID != nil {
		if _, err := s.vehicleRepo.FindByID(ctx, *req.VehicleID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Vehicle not found")
			}
			return nil, fmt.Errorf("failed to check vehicle: %w", err)
		}
	}

	lead, err := partner.NewLead(req.Name, req.Email, req.Phone, req.Message, req.VehicleID)
	if err != nil {
		return nil, err
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	s.logger.Info("lead created",
		zap.String("id", lead.ID.String()),
		zap.String("name", lead.Name))

	response := ToLeadResponse(lead)
	return &response, nil
}

// GetByID retrieves a lead by ID
func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*LeadResponse, error) {
	lead, err := s.findLead(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToLeadResponse(lead)
	return &response, nil
}

// List retrieves a paginated list of leads
func (s *LeadService) List(ctx context.Context, req LeadListFilter) ([]LeadResponse, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}

	leads, err := s.leadRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	total, err := s.leadRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	items := make([]LeadResponse, len(leads))
	for i := range leads {
		items[i] = ToLeadResponse(&leads[i])
	}
	return items, total, nil
}

// MarkContacted records that staff reached out to the lead
func (s *LeadService) MarkContacted(ctx context.Context, id uuid.UUID) (*LeadResponse, error) {
	lead, err := s.findLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lead.MarkContacted(); err != nil {
		return nil, err
	}

	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	response := ToLeadResponse(lead)
	return &response, nil
}

// Discard closes a lead without conversion
func (s *LeadService) Discard(ctx context.Context, id uuid.UUID) (*LeadResponse, error) {
	lead, err := s.findLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lead.Discard(); err != nil {
		return nil, err
	}

	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	s.logger.Info("lead discarded", zap.String("id", lead.ID.String()))

	response := ToLeadResponse(lead)
	return &response, nil
}

// Convert creates a customer from the lead and closes it. Converting a lead
// that already has a customer returns that customer instead of failing, so
// retried requests are harmless.
func (s *LeadService) Convert(ctx context.Context, id uuid.UUID) (*ConvertLeadResponse, error) {
	lead, err := s.findLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if lead.Status == partner.LeadStatusCompleted && lead.CustomerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, *lead.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load converted customer: %w", err)
		}
		return &ConvertLeadResponse{
			Lead:     ToLeadResponse(lead),
			Customer: ToCustomerResponse(customer),
		}, nil
	}

	customerNumber, err := s.allocator.Next(ctx, numbering.NamespaceCustomer)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate customer number: %w", err)
	}

	customer, err := lead.Convert(customerNumber)
	if err != nil {
		return nil, err
	}

	if err := s.leadRepo.SaveConversion(ctx, lead, customer); err != nil {
		return nil, fmt.Errorf("failed to save conversion: %w", err)
	}

	s.logger.Info("lead converted",
		zap.String("leadId", lead.ID.String()),
		zap.String("customerId", customer.ID.String()),
		zap.Int64("customerNumber", customer.CustomerNumber))

	return &ConvertLeadResponse{
		Lead:     ToLeadResponse(lead),
		Customer: ToCustomerResponse(customer),
	}, nil
}

func (s *LeadService) findLead(ctx context.Context, id uuid.UUID) (*partner.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Lead not found")
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

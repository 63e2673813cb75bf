package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/numbering"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogInvalidator drops cached public catalog responses after writes
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// VehicleService handles vehicle-related business operations
type VehicleService struct {
	vehicleRepo  inventory.VehicleRepository
	contractRepo trade.ContractRepository
	allocator    numbering.Allocator
	invalidator  CatalogInvalidator
	logger       *zap.Logger
}

// NewVehicleService creates a new VehicleService
func NewVehicleService(
	vehicleRepo inventory.VehicleRepository,
	contractRepo trade.ContractRepository,
	allocator numbering.Allocator,
	logger *zap.Logger,
) *VehicleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{
		vehicleRepo:  vehicleRepo,
		contractRepo: contractRepo,
		allocator:    allocator,
		logger:       logger,
	}
}

// SetCatalogInvalidator wires the public catalog cache invalidation.
// Optional; without it vehicle writes rely on the cache TTL.
func (s *VehicleService) SetCatalogInvalidator(invalidator CatalogInvalidator) {
	s.invalidator = invalidator
}

func (s *VehicleService) invalidateCatalog(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}

// Create creates a new vehicle in DRAFT status
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*VehicleResponse, error) {
	vehicleNumber, err := s.allocator.Next(ctx, numbering.NamespaceVehicle)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate vehicle number: %w", err)
	}

	vehicle, err := inventory.NewVehicle(
		vehicleNumber,
		req.Make,
		req.Model,
		req.Variant,
		inventory.VehicleType(req.Type),
		inventory.Condition(req.Condition),
		valueobject.NewMoneyEUR(req.SellingPrice),
		inventory.VATType(req.VATType),
	)
	if err != nil {
		return nil, err
	}

	if req.VIN != "" {
		if err := vehicle.SetVIN(req.VIN); err != nil {
			return nil, err
		}
	}

	if req.FuelType != "" || req.Transmission != "" || req.BodyType != "" || req.DriveType != "" || req.MileageKM > 0 || req.PowerKW > 0 {
		err := vehicle.SetTechnicalData(
			inventory.FuelType(req.FuelType),
			inventory.Transmission(req.Transmission),
			inventory.BodyType(req.BodyType),
			inventory.DriveType(req.DriveType),
			req.MileageKM,
			req.PowerKW,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := vehicle.SetListingDetails(req.FirstRegistration, req.ColorExterior, req.Doors, req.Seats, req.Description); err != nil {
		return nil, err
	}

	if len(req.Images) > 0 {
		vehicle.SetImages(req.Images)
	}
	vehicle.Notes = req.Notes

	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to save vehicle: %w", err)
	}

	s.logger.Info("vehicle created",
		zap.String("id", vehicle.ID.String()),
		zap.Int64("vehicleNumber", vehicle.VehicleNumber),
		zap.String("title", vehicle.Title()))

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// GetByID retrieves a vehicle by ID
func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// GetBySlug retrieves a vehicle by its catalog slug
func (s *VehicleService) GetBySlug(ctx context.Context, slug string) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// List retrieves a paginated list of vehicles
func (s *VehicleService) List(ctx context.Context, req VehicleListFilter) ([]VehicleListResponse, int64, error) {
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
	if req.Make != "" {
		filter.Filters["make"] = req.Make
	}

	var (
		vehicles []inventory.Vehicle
		err      error
	)
	if req.Status != "" {
		vehicles, err = s.vehicleRepo.FindByStatus(ctx, inventory.VehicleStatus(req.Status), filter)
		filter.Filters["status"] = req.Status
	} else {
		vehicles, err = s.vehicleRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	total, err := s.vehicleRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	items := make([]VehicleListResponse, len(vehicles))
	for i := range vehicles {
		items[i] = ToVehicleListResponse(&vehicles[i])
	}
	return items, total, nil
}

// Update updates a vehicle's listing data
func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, req UpdateVehicleRequest) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	if req.Variant != nil {
		vehicle.Variant = *req.Variant
	}

	if req.VIN != nil {
		if err := vehicle.SetVIN(*req.VIN); err != nil {
			return nil, err
		}
	}

	if req.SellingPrice != nil {
		if err := vehicle.UpdatePrice(valueobject.NewMoneyEUR(*req.SellingPrice)); err != nil {
			return nil, err
		}
	}

	if req.FuelType != nil || req.Transmission != nil || req.BodyType != nil || req.DriveType != nil || req.MileageKM != nil || req.PowerKW != nil {
		fuel := vehicle.FuelType
		if req.FuelType != nil {
			fuel = inventory.FuelType(*req.FuelType)
		}
		transmission := vehicle.Transmission
		if req.Transmission != nil {
			transmission = inventory.Transmission(*req.Transmission)
		}
		body := vehicle.BodyType
		if req.BodyType != nil {
			body = inventory.BodyType(*req.BodyType)
		}
		drive := vehicle.DriveType
		if req.DriveType != nil {
			drive = inventory.DriveType(*req.DriveType)
		}
		mileage := vehicle.MileageKM
		if req.MileageKM != nil {
			mileage = *req.MileageKM
		}
		power := vehicle.PowerKW
		if req.PowerKW != nil {
			power = *req.PowerKW
		}
		if err := vehicle.SetTechnicalData(fuel, transmission, body, drive, mileage, power); err != nil {
			return nil, err
		}
	}

	firstReg := vehicle.FirstRegistration
	if req.FirstRegistration != nil {
		firstReg = req.FirstRegistration
	}
	color := vehicle.ColorExterior
	if req.ColorExterior != nil {
		color = *req.ColorExterior
	}
	doors := vehicle.Doors
	if req.Doors != nil {
		doors = *req.Doors
	}
	seats := vehicle.Seats
	if req.Seats != nil {
		seats = *req.Seats
	}
	description := vehicle.Description
	if req.Description != nil {
		description = *req.Description
	}
	if err := vehicle.SetListingDetails(firstReg, color, doors, seats, description); err != nil {
		return nil, err
	}

	if req.Images != nil {
		vehicle.SetImages(req.Images)
	}
	if req.Notes != nil {
		vehicle.Notes = *req.Notes
	}

	if err := s.vehicleRepo.SaveWithLock(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to save vehicle: %w", err)
	}
	s.invalidateCatalog(ctx)

	s.logger.Info("vehicle updated", zap.String("id", vehicle.ID.String()))

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// Activate publishes a draft vehicle to the active inventory
func (s *VehicleService) Activate(ctx context.Context, id uuid.UUID) (*VehicleResponse, error) {
	return s.transition(ctx, id, (*inventory.Vehicle).Activate, "vehicle activated")
}

// Withdraw takes an active vehicle back to draft
func (s *VehicleService) Withdraw(ctx context.Context, id uuid.UUID) (*VehicleResponse, error) {
	return s.transition(ctx, id, (*inventory.Vehicle).Withdraw, "vehicle withdrawn")
}

func (s *VehicleService) transition(ctx context.Context, id uuid.UUID, op func(*inventory.Vehicle) error, logMsg string) (*VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	if err := op(vehicle); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.SaveWithLock(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to save vehicle: %w", err)
	}
	s.invalidateCatalog(ctx)

	s.logger.Info(logMsg,
		zap.String("id", vehicle.ID.String()),
		zap.String("status", string(vehicle.Status)))

	response := ToVehicleResponse(vehicle)
	return &response, nil
}

// Delete removes a vehicle. Vehicles referenced by any contract are never
// deleted; withdraw them instead.
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Vehicle not found")
		}
		return fmt.Errorf("failed to get vehicle: %w", err)
	}

	if vehicle.Status.IsContractControlled() {
		return shared.NewDomainError("CONFLICT", fmt.Sprintf("Cannot delete a %s vehicle", vehicle.Status))
	}

	referenced, err := s.contractRepo.ExistsByVehicle(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check contract references: %w", err)
	}
	if referenced {
		return shared.NewDomainError("CONFLICT", "Vehicle is referenced by a contract and cannot be deleted")
	}

	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	s.invalidateCatalog(ctx)

	s.logger.Info("vehicle deleted", zap.String("id", id.String()))
	return nil
}

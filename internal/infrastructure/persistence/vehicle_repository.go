package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVehicleRepository implements VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID finds a vehicle by its ID
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Vehicle, error) {
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple vehicles by their IDs
func (r *GormVehicleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Vehicle, error) {
	if len(ids) == 0 {
		return []inventory.Vehicle{}, nil
	}

	var vehicleModels []models.VehicleModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("vehicle_number ASC").
		Find(&vehicleModels).Error; err != nil {
		return nil, err
	}

	vehicles := make([]inventory.Vehicle, len(vehicleModels))
	for i, model := range vehicleModels {
		vehicles[i] = *model.ToDomain()
	}
	return vehicles, nil
}

// FindBySlug finds a vehicle by its catalog slug
func (r *GormVehicleRepository) FindBySlug(ctx context.Context, slug string) (*inventory.Vehicle, error) {
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByVehicleNumber finds a vehicle by its business number
func (r *GormVehicleRepository) FindByVehicleNumber(ctx context.Context, vehicleNumber int64) (*inventory.Vehicle, error) {
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).First(&model, "vehicle_number = ?", vehicleNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all vehicles matching the filter
func (r *GormVehicleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Vehicle, error) {
	var vehicleModels []models.VehicleModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.VehicleModel{}), filter)

	if err := query.Find(&vehicleModels).Error; err != nil {
		return nil, err
	}

	vehicles := make([]inventory.Vehicle, len(vehicleModels))
	for i, model := range vehicleModels {
		vehicles[i] = *model.ToDomain()
	}
	return vehicles, nil
}

// FindByStatus finds vehicles by status.
// A filter with PageSize 0 returns all matching rows unpaginated; the feed
// exporters rely on this.
func (r *GormVehicleRepository) FindByStatus(ctx context.Context, status inventory.VehicleStatus, filter shared.Filter) ([]inventory.Vehicle, error) {
	var vehicleModels []models.VehicleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.VehicleModel{}).Where("status = ?", status),
		filter,
	)

	if err := query.Find(&vehicleModels).Error; err != nil {
		return nil, err
	}

	vehicles := make([]inventory.Vehicle, len(vehicleModels))
	for i, model := range vehicleModels {
		vehicles[i] = *model.ToDomain()
	}
	return vehicles, nil
}

// Count counts vehicles matching the filter
func (r *GormVehicleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.VehicleModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a vehicle
func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *inventory.Vehicle) error {
	model := models.VehicleModelFromDomain(vehicle)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a vehicle with optimistic locking (version check).
// The caller increments the version before saving.
func (r *GormVehicleRepository) SaveWithLock(ctx context.Context, vehicle *inventory.Vehicle) error {
	vehicle.IncrementVersion()
	model := models.VehicleModelFromDomain(vehicle)
	result := r.db.WithContext(ctx).
		Model(&models.VehicleModel{}).
		Where("id = ? AND version = ?", vehicle.ID, vehicle.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		vehicle.Version--
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a vehicle
func (r *GormVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.VehicleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatusCAS transitions the vehicle status with a compare-and-swap on
// (id, expected status, expected version). No row matched means a concurrent
// writer won; the caller must re-read and re-plan.
func (r *GormVehicleRepository) UpdateStatusCAS(ctx context.Context, id uuid.UUID, expected, target inventory.VehicleStatus, expectedVersion int) error {
	return updateVehicleStatusCAS(r.db.WithContext(ctx), id, expected, target, expectedVersion)
}

// updateVehicleStatusCAS is shared with the contract repository, which runs
// the same compare-and-swap inside its transition transaction.
func updateVehicleStatusCAS(db *gorm.DB, id uuid.UUID, expected, target inventory.VehicleStatus, expectedVersion int) error {
	result := db.
		Model(&models.VehicleModel{}).
		Where("id = ? AND status = ? AND version = ?", id, expected, expectedVersion).
		Updates(map[string]interface{}{
			"status":  string(target),
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormVehicleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// PageSize 0 means unpaginated
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("vehicle_number ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormVehicleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("make LIKE ? OR model LIKE ? OR vin LIKE ? OR slug LIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "make":
			query = query.Where("make = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "condition":
			query = query.Where("condition = ?", value)
		case "vat_type":
			query = query.Where("vat_type = ?", value)
		}
	}

	return query
}

// Ensure GormVehicleRepository implements VehicleRepository
var _ inventory.VehicleRepository = (*GormVehicleRepository)(nil)

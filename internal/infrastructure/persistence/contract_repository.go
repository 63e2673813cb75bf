package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContractNumber finds a contract by its business number
func (r *GormContractRepository) FindByContractNumber(ctx context.Context, contractNumber string) (*trade.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "contract_number = ?", contractNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all contracts matching the filter
func (r *GormContractRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]trade.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = *model.ToDomain()
	}
	return contracts, nil
}

// FindByCustomer finds contracts belonging to a customer
func (r *GormContractRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]trade.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ContractModel{}).Where("customer_id = ?", customerID),
		filter,
	)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]trade.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = *model.ToDomain()
	}
	return contracts, nil
}

// Count counts contracts matching the filter
func (r *GormContractRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ContractModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, contract *trade.Contract) error {
	model := models.ContractModelFromDomain(contract)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a contract with optimistic locking (version check)
func (r *GormContractRepository) SaveWithLock(ctx context.Context, contract *trade.Contract) error {
	return saveContractWithLock(r.db.WithContext(ctx), contract)
}

// saveContractWithLock runs the version-checked update on the given handle so
// that ApplyTransition can reuse it inside a transaction.
func saveContractWithLock(db *gorm.DB, contract *trade.Contract) error {
	contract.IncrementVersion()
	model := models.ContractModelFromDomain(contract)
	result := db.
		Model(&models.ContractModel{}).
		Where("id = ? AND version = ?", contract.ID, contract.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		contract.Version--
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a contract
func (r *GormContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContractModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindOpenPurchaseByVehicle returns the non-terminal purchase contract
// referencing the vehicle
func (r *GormContractRepository) FindOpenPurchaseByVehicle(ctx context.Context, vehicleID uuid.UUID) (*trade.Contract, error) {
	var model models.ContractModel
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND type = ? AND status NOT IN ?",
			vehicleID,
			string(trade.ContractTypePurchase),
			[]string{string(trade.ContractStatusCompleted), string(trade.ContractStatusCancelled)},
		).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByVehicle reports whether any contract references the vehicle
func (r *GormContractRepository) ExistsByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("vehicle_id = ?", vehicleID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ApplyTransition persists the contract and its planned lifecycle effects in
// one transaction. The vehicle update is a compare-and-swap on the planned
// From status; when it matches no row the whole transition rolls back with
// shared.ErrConcurrencyConflict and the caller must re-read and re-plan.
func (r *GormContractRepository) ApplyTransition(ctx context.Context, contract *trade.Contract, effects trade.TransitionEffects) error {
	versionBefore := contract.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveContractWithLock(tx, contract); err != nil {
			return err
		}

		if effects.Vehicle != nil {
			change := effects.Vehicle
			result := tx.
				Model(&models.VehicleModel{}).
				Where("id = ? AND status = ?", change.VehicleID, string(change.From)).
				Updates(map[string]interface{}{
					"status":  string(change.To),
					"version": gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}
		}

		if effects.CustomerRole != nil {
			change := effects.CustomerRole
			result := tx.
				Model(&models.CustomerModel{}).
				Where("id = ?", change.CustomerID).
				Updates(map[string]interface{}{
					"role":    string(change.To),
					"version": gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
		}

		return nil
	})
	if err != nil {
		contract.Version = versionBefore
	}
	return err
}

// applyFilter applies filter options to the query
func (r *GormContractRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("contract_number LIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "vehicle_id":
			query = query.Where("vehicle_id = ?", value)
		}
	}

	return query
}

// Ensure GormContractRepository implements ContractRepository
var _ trade.ContractRepository = (*GormContractRepository)(nil)

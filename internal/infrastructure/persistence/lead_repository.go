package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeadRepository implements LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead by its ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all leads matching the filter
func (r *GormLeadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Lead, error) {
	var leadModels []models.LeadModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LeadModel{}), filter)

	if err := query.Find(&leadModels).Error; err != nil {
		return nil, err
	}

	leads := make([]partner.Lead, len(leadModels))
	for i, model := range leadModels {
		leads[i] = *model.ToDomain()
	}
	return leads, nil
}

// Count counts leads matching the filter
func (r *GormLeadRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.LeadModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *partner.Lead) error {
	model := models.LeadModelFromDomain(lead)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a lead with optimistic locking (version check)
func (r *GormLeadRepository) SaveWithLock(ctx context.Context, lead *partner.Lead) error {
	return saveLeadWithLock(r.db.WithContext(ctx), lead)
}

// saveLeadWithLock runs the version-checked update on the given handle so
// that SaveConversion can reuse it inside a transaction.
func saveLeadWithLock(db *gorm.DB, lead *partner.Lead) error {
	lead.IncrementVersion()
	model := models.LeadModelFromDomain(lead)
	result := db.
		Model(&models.LeadModel{}).
		Where("id = ? AND version = ?", lead.ID, lead.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		lead.Version--
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveConversion inserts the new customer and closes the lead in one
// transaction. When the lead write loses the version race the customer
// insert rolls back with it and the caller gets shared.ErrConcurrencyConflict.
func (r *GormLeadRepository) SaveConversion(ctx context.Context, lead *partner.Lead, customer *partner.Customer) error {
	versionBefore := lead.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.CustomerModelFromDomain(customer)).Error; err != nil {
			return err
		}
		return saveLeadWithLock(tx, lead)
	})
	if err != nil {
		lead.Version = versionBefore
	}
	return err
}

// Delete deletes a lead
func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LeadModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormLeadRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "vehicle_id":
			query = query.Where("vehicle_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}

	return query
}

// Ensure GormLeadRepository implements LeadRepository
var _ partner.LeadRepository = (*GormLeadRepository)(nil)

package inventory

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VehicleRepository defines persistence operations for vehicles
type VehicleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Vehicle, error)
	FindBySlug(ctx context.Context, slug string) (*Vehicle, error)
	FindByVehicleNumber(ctx context.Context, vehicleNumber int64) (*Vehicle, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Vehicle, error)
	FindByStatus(ctx context.Context, status VehicleStatus, filter shared.Filter) ([]Vehicle, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, vehicle *Vehicle) error
	SaveWithLock(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStatusCAS transitions the vehicle status with a compare-and-swap
	// on (id, expected status, expected version). It returns
	// shared.ErrConcurrencyConflict when no row matched, leaving the vehicle
	// untouched. This is the only write path for contract-controlled statuses.
	UpdateStatusCAS(ctx context.Context, id uuid.UUID, expected, target VehicleStatus, expectedVersion int) error
}

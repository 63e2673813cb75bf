package trade

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContractRepository defines persistence operations for contracts
type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	FindByContractNumber(ctx context.Context, contractNumber string) (*Contract, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Contract, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Contract, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, contract *Contract) error
	SaveWithLock(ctx context.Context, contract *Contract) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindOpenPurchaseByVehicle returns the non-terminal purchase contract
	// referencing the vehicle, or shared.ErrNotFound. At most one such
	// contract may exist at any time.
	FindOpenPurchaseByVehicle(ctx context.Context, vehicleID uuid.UUID) (*Contract, error)

	// ExistsByVehicle reports whether any contract references the vehicle
	ExistsByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error)

	// ApplyTransition persists the contract together with its planned
	// lifecycle effects in one atomic unit. The vehicle status change is a
	// compare-and-swap on the planned From status; if the vehicle moved in
	// the meantime the whole transition rolls back with
	// shared.ErrConcurrencyConflict.
	ApplyTransition(ctx context.Context, contract *Contract, effects TransitionEffects) error
}

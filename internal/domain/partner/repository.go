package partner

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByCustomerNumber(ctx context.Context, customerNumber int64) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, customer *Customer) error
	SaveWithLock(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LeadRepository defines persistence operations for leads
type LeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Lead, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, lead *Lead) error
	SaveWithLock(ctx context.Context, lead *Lead) error
	// SaveConversion persists the converted lead and its new customer in one
	// transaction. A failed lead write must not leave the customer behind.
	SaveConversion(ctx context.Context, lead *Lead, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

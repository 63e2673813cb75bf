package persistence

import (
	"context"
	"testing"

	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, number int64) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(number, partner.CustomerTypePrivate, "Anna", "Schmidt", "")
	require.NoError(t, err)
	return customer
}

func TestGormCustomerRepository_SaveAndFindByNumber(t *testing.T) {
	repo := NewGormCustomerRepository(newTestDB(t))
	ctx := context.Background()

	customer := newTestCustomer(t, 7)
	customer.SetContact("anna.schmidt@example.com", "+49 170 1234567")
	require.NoError(t, repo.Save(ctx, customer))

	found, err := repo.FindByCustomerNumber(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)
	assert.Equal(t, partner.RoleProspect, found.Role)
	assert.Equal(t, "DE", found.Country)
	assert.Equal(t, "anna.schmidt@example.com", found.Email)
}

func TestGormCustomerRepository_FindByEmail_NormalizesLookup(t *testing.T) {
	repo := NewGormCustomerRepository(newTestDB(t))
	ctx := context.Background()

	customer := newTestCustomer(t, 1)
	customer.SetContact("Anna.Schmidt@Example.com", "")
	require.NoError(t, repo.Save(ctx, customer))

	found, err := repo.FindByEmail(ctx, "  ANNA.SCHMIDT@EXAMPLE.COM ")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCustomerRepository_SaveWithLock_Conflict(t *testing.T) {
	repo := NewGormCustomerRepository(newTestDB(t))
	ctx := context.Background()

	customer := newTestCustomer(t, 1)
	require.NoError(t, repo.Save(ctx, customer))

	first, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)

	first.PromoteToBuyer()
	require.NoError(t, repo.SaveWithLock(ctx, first))

	second.Notes = "stale edit"
	assert.ErrorIs(t, repo.SaveWithLock(ctx, second), shared.ErrConcurrencyConflict)
}

func TestGormCustomerRepository_FilterByRole(t *testing.T) {
	repo := NewGormCustomerRepository(newTestDB(t))
	ctx := context.Background()

	buyer := newTestCustomer(t, 1)
	buyer.PromoteToBuyer()
	require.NoError(t, repo.Save(ctx, buyer))
	require.NoError(t, repo.Save(ctx, newTestCustomer(t, 2)))

	buyers, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]interface{}{"role": "BUYER"}})
	require.NoError(t, err)
	require.Len(t, buyers, 1)
	assert.Equal(t, int64(1), buyers[0].CustomerNumber)

	count, err := repo.Count(ctx, shared.Filter{Filters: map[string]interface{}{"role": "PROSPECT"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormCustomerRepository_Search(t *testing.T) {
	repo := NewGormCustomerRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestCustomer(t, 1)))

	business, err := partner.NewCustomer(2, partner.CustomerTypeBusiness, "", "", "Autohaus Weber GmbH")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, business))

	results, err := repo.FindAll(ctx, shared.Filter{Search: "Weber"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Autohaus Weber GmbH", results[0].CompanyName)
}

func TestGormCustomerRepository_Delete(t *testing.T) {
	repo := NewGormCustomerRepository(newTestDB(t))
	ctx := context.Background()

	customer := newTestCustomer(t, 1)
	require.NoError(t, repo.Save(ctx, customer))

	require.NoError(t, repo.Delete(ctx, customer.ID))
	assert.ErrorIs(t, repo.Delete(ctx, customer.ID), shared.ErrNotFound)
}

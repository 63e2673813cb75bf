package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/dms/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockVehicleRepository is a mock implementation of inventory.VehicleRepository
type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Vehicle, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]inventory.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindBySlug(ctx context.Context, slug string) (*inventory.Vehicle, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindByVehicleNumber(ctx context.Context, vehicleNumber int64) (*inventory.Vehicle, error) {
	args := m.Called(ctx, vehicleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Vehicle, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindByStatus(ctx context.Context, status inventory.VehicleStatus, filter shared.Filter) ([]inventory.Vehicle, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]inventory.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVehicleRepository) Save(ctx context.Context, vehicle *inventory.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) SaveWithLock(ctx context.Context, vehicle *inventory.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVehicleRepository) UpdateStatusCAS(ctx context.Context, id uuid.UUID, expected, target inventory.VehicleStatus, expectedVersion int) error {
	args := m.Called(ctx, id, expected, target, expectedVersion)
	return args.Error(0)
}

type catalogFixture struct {
	repo    *MockVehicleRepository
	cache   *cache.InMemoryResponseCache
	service *CatalogService
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	repo := new(MockVehicleRepository)
	responseCache := cache.NewInMemoryResponseCache()
	t.Cleanup(func() { responseCache.Close() })

	return &catalogFixture{
		repo:    repo,
		cache:   responseCache,
		service: NewCatalogService(repo, responseCache, time.Minute, nil),
	}
}

func newActiveVehicle(t *testing.T, number int64) *inventory.Vehicle {
	t.Helper()
	v, err := inventory.NewVehicle(number, "Volkswagen", "Golf", "VII",
		inventory.VehicleTypeCar, inventory.ConditionUsed,
		valueobject.NewMoneyEURFromFloat(24990), inventory.VATStandard)
	require.NoError(t, err)
	require.NoError(t, v.SetTechnicalData(inventory.FuelPetrol, inventory.TransmissionManual,
		inventory.BodySedan, inventory.DriveFront, 45000, 110))
	v.SetImages([]string{"https://img.example/1.jpg"})
	require.NoError(t, v.Activate())
	return v
}

func TestCatalogService_ListVehicles(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	v := newActiveVehicle(t, 42)
	f.repo.On("FindByStatus", ctx, inventory.VehicleStatusActive, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 1 && filter.PageSize == 20 && filter.OrderBy == "vehicle_number"
	})).Return([]inventory.Vehicle{*v}, nil)
	f.repo.On("Count", ctx, mock.Anything).Return(int64(1), nil)

	resp, err := f.service.ListVehicles(ctx, ListCatalogRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1), resp.Total)
	item := resp.Items[0]
	assert.Equal(t, "Volkswagen Golf VII", item.Title)
	assert.Equal(t, "24990.00", item.Price)
	assert.Equal(t, "EUR", item.Currency)
	assert.True(t, item.VATDeductible)
	assert.Equal(t, 45000, item.MileageKM)
}

func TestCatalogService_ListVehicles_ServedFromCache(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	v := newActiveVehicle(t, 42)
	f.repo.On("FindByStatus", ctx, inventory.VehicleStatusActive, mock.Anything).
		Return([]inventory.Vehicle{*v}, nil).Once()
	f.repo.On("Count", ctx, mock.Anything).Return(int64(1), nil).Once()

	first, err := f.service.ListVehicles(ctx, ListCatalogRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)

	// Second call must not touch the repository
	second, err := f.service.ListVehicles(ctx, ListCatalogRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	f.repo.AssertExpectations(t)
}

func TestCatalogService_ListVehicles_DifferentPagesCachedSeparately(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	f.repo.On("FindByStatus", ctx, inventory.VehicleStatusActive, mock.Anything).
		Return([]inventory.Vehicle{}, nil).Twice()
	f.repo.On("Count", ctx, mock.Anything).Return(int64(0), nil).Twice()

	_, err := f.service.ListVehicles(ctx, ListCatalogRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)
	_, err = f.service.ListVehicles(ctx, ListCatalogRequest{Page: 2, PageSize: 20})
	require.NoError(t, err)

	f.repo.AssertExpectations(t)
}

func TestCatalogService_Invalidate(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	f.repo.On("FindByStatus", ctx, inventory.VehicleStatusActive, mock.Anything).
		Return([]inventory.Vehicle{}, nil).Twice()
	f.repo.On("Count", ctx, mock.Anything).Return(int64(0), nil).Twice()

	_, err := f.service.ListVehicles(ctx, ListCatalogRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)

	f.service.Invalidate(ctx)

	// After invalidation the repository is queried again
	_, err = f.service.ListVehicles(ctx, ListCatalogRequest{Page: 1, PageSize: 20})
	require.NoError(t, err)

	f.repo.AssertExpectations(t)
}

func TestCatalogService_GetVehicle(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	v := newActiveVehicle(t, 42)
	f.repo.On("FindBySlug", ctx, v.Slug).Return(v, nil).Once()

	resp, err := f.service.GetVehicle(ctx, v.Slug)
	require.NoError(t, err)
	assert.Equal(t, v.Slug, resp.Slug)
	assert.Equal(t, "Volkswagen Golf VII", resp.Title)
	assert.Equal(t, []string{"https://img.example/1.jpg"}, resp.Images)

	// Served from cache on repeat
	again, err := f.service.GetVehicle(ctx, v.Slug)
	require.NoError(t, err)
	assert.Equal(t, resp, again)
	f.repo.AssertExpectations(t)
}

func TestCatalogService_GetVehicle_DraftHidden(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	v, err := inventory.NewVehicle(43, "Volkswagen", "Polo", "",
		inventory.VehicleTypeCar, inventory.ConditionUsed,
		valueobject.NewMoneyEURFromFloat(9990), inventory.VATMargin)
	require.NoError(t, err)
	f.repo.On("FindBySlug", ctx, v.Slug).Return(v, nil)

	_, err = f.service.GetVehicle(ctx, v.Slug)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestCatalogService_GetVehicle_NotFound(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	f.repo.On("FindBySlug", ctx, "no-such-car").Return(nil, shared.ErrNotFound)

	_, err := f.service.GetVehicle(ctx, "no-such-car")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

package feed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/feed"
	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
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

func newListedVehicle(t *testing.T, number int64) *inventory.Vehicle {
	t.Helper()
	v, err := inventory.NewVehicle(number, "Volkswagen", "Golf", "VII",
		inventory.VehicleTypeCar, inventory.ConditionUsed,
		valueobject.NewMoneyEURFromFloat(24990), inventory.VATStandard)
	require.NoError(t, err)
	require.NoError(t, v.SetTechnicalData(inventory.FuelPetrol, inventory.TransmissionManual,
		inventory.BodySedan, inventory.DriveFront, 45000, 110))
	v.SetImages([]string{"https://img.example/1.jpg", "https://img.example/2.jpg"})
	require.NoError(t, v.Activate())
	return v
}

func newExportService(repo *MockVehicleRepository) *ExportService {
	svc := NewExportService(repo, feed.DefaultRegistry(), "Autohaus Mustermann", nil)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestExportService_ExportVehicles_Mobile(t *testing.T) {
	repo := new(MockVehicleRepository)
	svc := newExportService(repo)

	v1 := newListedVehicle(t, 42)
	v2 := newListedVehicle(t, 43)
	ids := []uuid.UUID{v1.ID, v2.ID}
	repo.On("FindByIDs", mock.Anything, ids).Return([]inventory.Vehicle{*v1, *v2}, nil)

	export, err := svc.ExportVehicles(context.Background(), "mobile", ids)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", export.ContentType)
	assert.Equal(t, "autohaus-mustermann-mobile-2026-08-29.csv", export.Filename)

	lines := strings.Split(strings.TrimRight(string(export.Data), "\n"), "\n")
	require.Len(t, lines, 3)

	schema, err := feed.DefaultRegistry().Get("mobile")
	require.NoError(t, err)
	header := strings.Split(lines[0], ";")
	assert.Equal(t, schema.Columns(), header)
	row := strings.Split(lines[1], ";")
	assert.Len(t, row, len(header))
	assert.Equal(t, "42", row[0])
}

func TestExportService_ExportVehicles_AutoScoutSeparator(t *testing.T) {
	repo := new(MockVehicleRepository)
	svc := newExportService(repo)

	v := newListedVehicle(t, 42)
	repo.On("FindByIDs", mock.Anything, []uuid.UUID{v.ID}).Return([]inventory.Vehicle{*v}, nil)

	export, err := svc.ExportVehicles(context.Background(), "autoscout", []uuid.UUID{v.ID})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(export.Data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "offer_ref,")
	assert.NotContains(t, lines[0], ";")
}

func TestExportService_ExportVehicles_SkipsUnlisted(t *testing.T) {
	repo := new(MockVehicleRepository)
	svc := newExportService(repo)

	listed := newListedVehicle(t, 42)
	draft, err := inventory.NewVehicle(99, "Opel", "Corsa", "",
		inventory.VehicleTypeCar, inventory.ConditionUsed,
		valueobject.NewMoneyEURFromFloat(9990), inventory.VATMargin)
	require.NoError(t, err)

	ids := []uuid.UUID{listed.ID, draft.ID}
	repo.On("FindByIDs", mock.Anything, ids).Return([]inventory.Vehicle{*listed, *draft}, nil)

	export, err := svc.ExportVehicles(context.Background(), "mobile", ids)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(export.Data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "42", strings.Split(lines[1], ";")[0])
}

func TestExportService_ExportVehicles_AllActiveWhenNoIDs(t *testing.T) {
	repo := new(MockVehicleRepository)
	svc := newExportService(repo)

	v := newListedVehicle(t, 42)
	repo.On("FindByStatus", mock.Anything, inventory.VehicleStatusActive, mock.MatchedBy(func(f shared.Filter) bool {
		return f.PageSize == 0
	})).Return([]inventory.Vehicle{*v}, nil)

	export, err := svc.ExportVehicles(context.Background(), "mobile", nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(export.Data), "\n"), "\n")
	require.Len(t, lines, 2)
	repo.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestExportService_ExportVehicles_UnknownSchema(t *testing.T) {
	repo := new(MockVehicleRepository)
	svc := newExportService(repo)

	_, err := svc.ExportVehicles(context.Background(), "ebay", nil)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNKNOWN_SCHEMA", domainErr.Code)
	repo.AssertNotCalled(t, "FindByStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportService_Deterministic(t *testing.T) {
	repo := new(MockVehicleRepository)
	svc := newExportService(repo)

	v := newListedVehicle(t, 42)
	repo.On("FindByIDs", mock.Anything, []uuid.UUID{v.ID}).Return([]inventory.Vehicle{*v}, nil)

	first, err := svc.ExportVehicles(context.Background(), "mobile", []uuid.UUID{v.ID})
	require.NoError(t, err)
	second, err := svc.ExportVehicles(context.Background(), "mobile", []uuid.UUID{v.ID})
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
}

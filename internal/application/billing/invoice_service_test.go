package billing

import (
	"context"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/billing"
	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/numbering"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCustomerNumber(ctx context.Context, customerNumber int64) (*partner.Customer, error) {
	args := m.Called(ctx, customerNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*partner.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockContractRepository is a mock implementation of trade.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByContractNumber(ctx context.Context, contractNumber string) (*trade.Contract, error) {
	args := m.Called(ctx, contractNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Contract, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]trade.Contract, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]trade.Contract), args.Error(1)
}

func (m *MockContractRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, contract *trade.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, contract *trade.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContractRepository) FindOpenPurchaseByVehicle(ctx context.Context, vehicleID uuid.UUID) (*trade.Contract, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Contract), args.Error(1)
}

func (m *MockContractRepository) ExistsByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, vehicleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockContractRepository) ApplyTransition(ctx context.Context, contract *trade.Contract, effects trade.TransitionEffects) error {
	args := m.Called(ctx, contract, effects)
	return args.Error(0)
}

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

// MockAllocator is a mock implementation of numbering.Allocator
type MockAllocator struct {
	mock.Mock
}

func (m *MockAllocator) Next(ctx context.Context, ns numbering.Namespace) (int64, error) {
	args := m.Called(ctx, ns)
	return args.Get(0).(int64), args.Error(1)
}

type invoiceFixture struct {
	invoiceRepo  *MockInvoiceRepository
	customerRepo *MockCustomerRepository
	contractRepo *MockContractRepository
	vehicleRepo  *MockVehicleRepository
	allocator    *MockAllocator
	service      *InvoiceService
}

func newInvoiceFixture(year int) *invoiceFixture {
	f := &invoiceFixture{
		invoiceRepo:  new(MockInvoiceRepository),
		customerRepo: new(MockCustomerRepository),
		contractRepo: new(MockContractRepository),
		vehicleRepo:  new(MockVehicleRepository),
		allocator:    new(MockAllocator),
	}
	f.service = NewInvoiceService(f.invoiceRepo, f.customerRepo, f.contractRepo, f.vehicleRepo, f.allocator, nil)
	f.service.now = func() time.Time {
		return time.Date(year, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func testCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(101, partner.CustomerTypePrivate, "Anna", "Schmidt", "")
	require.NoError(t, err)
	return c
}

func TestInvoiceService_Create_PerYearNumbering(t *testing.T) {
	f := newInvoiceFixture(2026)
	customer := testCustomer(t)

	f.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	f.allocator.On("Next", mock.Anything, numbering.Namespace("invoice-2026")).Return(int64(1), nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	resp, err := f.service.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: customer.ID,
		Positions: []PositionRequest{
			{Description: "Vehicle", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(24990), VATRate: decimal.NewFromInt(19)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", resp.InvoiceNumber)
	assert.Equal(t, "DRAFT", resp.Status)
	require.Len(t, resp.Positions, 1)
	f.allocator.AssertExpectations(t)
}

func TestInvoiceService_Create_YearRollover(t *testing.T) {
	customer := testCustomer(t)

	// Allocations in the following year use a fresh namespace, so the
	// sequence restarts at 1
	f := newInvoiceFixture(2027)
	f.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	f.allocator.On("Next", mock.Anything, numbering.Namespace("invoice-2027")).Return(int64(1), nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Create(context.Background(), CreateInvoiceRequest{CustomerID: customer.ID})
	require.NoError(t, err)
	assert.Equal(t, "INV-2027-0001", resp.InvoiceNumber)
}

func TestInvoiceService_Create_ContractOfOtherCustomer(t *testing.T) {
	f := newInvoiceFixture(2026)
	customer := testCustomer(t)
	contract, err := trade.NewContract("C-2026-00001", trade.ContractTypePurchase, uuid.New(), uuid.New())
	require.NoError(t, err)

	f.customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	f.contractRepo.On("FindByID", mock.Anything, contract.ID).Return(contract, nil)

	_, err = f.service.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: customer.ID,
		ContractID: &contract.ID,
	})

	require.Error(t, err)
	f.allocator.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestInvoiceService_CreateFromContract(t *testing.T) {
	f := newInvoiceFixture(2026)

	vehicle, err := inventory.NewVehicle(7, "Volkswagen", "Golf", "VII",
		inventory.VehicleTypeCar, inventory.ConditionUsed,
		valueobject.NewMoneyEURFromFloat(24990), inventory.VATStandard)
	require.NoError(t, err)
	require.NoError(t, vehicle.SetVIN("WVWZZZ1KZAW000001"))

	contract, err := trade.NewContract("C-2026-00001", trade.ContractTypePurchase, uuid.New(), vehicle.ID)
	require.NoError(t, err)
	require.NoError(t, contract.SetPricing(
		valueobject.NewMoneyEURFromFloat(21000),
		valueobject.NewMoneyEURFromFloat(3990),
		valueobject.NewMoneyEURFromFloat(24990),
	))
	require.NoError(t, contract.Activate())

	f.contractRepo.On("FindByID", mock.Anything, contract.ID).Return(contract, nil)
	f.vehicleRepo.On("FindByID", mock.Anything, vehicle.ID).Return(vehicle, nil)
	f.allocator.On("Next", mock.Anything, numbering.Namespace("invoice-2026")).Return(int64(3), nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	resp, err := f.service.CreateFromContract(context.Background(), contract.ID)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-0003", resp.InvoiceNumber)
	require.Len(t, resp.Positions, 1)
	assert.Contains(t, resp.Positions[0].Description, "Volkswagen Golf VII")
	assert.Contains(t, resp.Positions[0].Description, "C-2026-00001")
	assert.Equal(t, "24990.00", resp.GrossAmount.StringFixed(2))
	assert.Equal(t, "19", resp.Positions[0].VATRate.String())
}

func TestInvoiceService_CreateFromContract_Draft(t *testing.T) {
	f := newInvoiceFixture(2026)

	contract, err := trade.NewContract("C-2026-00001", trade.ContractTypePurchase, uuid.New(), uuid.New())
	require.NoError(t, err)

	f.contractRepo.On("FindByID", mock.Anything, contract.ID).Return(contract, nil)

	_, err = f.service.CreateFromContract(context.Background(), contract.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestInvoiceService_Issue_DefaultTerm(t *testing.T) {
	f := newInvoiceFixture(2026)

	invoice, err := billing.NewInvoice("INV-2026-0001", uuid.New(), nil)
	require.NoError(t, err)
	_, err = invoice.AddPosition("Vehicle", decimal.NewFromInt(1), valueobject.NewMoneyEURFromFloat(24990), decimal.NewFromInt(19))
	require.NoError(t, err)

	f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := f.service.Issue(context.Background(), invoice.ID, IssueInvoiceRequest{})
	require.NoError(t, err)

	assert.Equal(t, "OPEN", resp.Status)
	require.NotNil(t, resp.DueAt)
	require.NotNil(t, resp.IssuedAt)
	assert.Equal(t, DefaultDueInDays, int(resp.DueAt.Sub(*resp.IssuedAt).Hours()/24))
}

func TestInvoiceService_MarkPaid_NotOpen(t *testing.T) {
	f := newInvoiceFixture(2026)

	invoice, err := billing.NewInvoice("INV-2026-0001", uuid.New(), nil)
	require.NoError(t, err)

	f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err = f.service.MarkPaid(context.Background(), invoice.ID)
	require.Error(t, err)
	f.invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

package persistence

import (
	"context"
	"testing"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tradeFixture struct {
	db        *gorm.DB
	contracts *GormContractRepository
	vehicles  *GormVehicleRepository
	customers *GormCustomerRepository
}

func newTradeFixture(t *testing.T) *tradeFixture {
	db := newTestDB(t)
	return &tradeFixture{
		db:        db,
		contracts: NewGormContractRepository(db),
		vehicles:  NewGormVehicleRepository(db),
		customers: NewGormCustomerRepository(db),
	}
}

func (f *tradeFixture) seedVehicle(t *testing.T, number int64, activate bool) *inventory.Vehicle {
	t.Helper()
	vehicle := newTestVehicle(t, number)
	if activate {
		require.NoError(t, vehicle.Activate())
	}
	require.NoError(t, f.vehicles.Save(context.Background(), vehicle))
	return vehicle
}

func (f *tradeFixture) seedCustomer(t *testing.T, number int64) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(number, partner.CustomerTypePrivate, "Anna", "Schmidt", "")
	require.NoError(t, err)
	require.NoError(t, f.customers.Save(context.Background(), customer))
	return customer
}

func (f *tradeFixture) seedContract(t *testing.T, number string, customerID, vehicleID uuid.UUID) *trade.Contract {
	t.Helper()
	contract, err := trade.NewContract(number, trade.ContractTypePurchase, customerID, vehicleID)
	require.NoError(t, err)
	require.NoError(t, contract.SetPricing(
		valueobject.NewMoneyEURFromFloat(21000),
		valueobject.NewMoneyEURFromFloat(3990),
		valueobject.NewMoneyEURFromFloat(24990),
	))
	require.NoError(t, f.contracts.Save(context.Background(), contract))
	return contract
}

func TestGormContractRepository_SaveAndFindByNumber(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()

	vehicle := f.seedVehicle(t, 1, true)
	customer := f.seedCustomer(t, 1)
	contract := f.seedContract(t, "C-2026-00001", customer.ID, vehicle.ID)

	found, err := f.contracts.FindByContractNumber(ctx, "C-2026-00001")
	require.NoError(t, err)
	assert.Equal(t, contract.ID, found.ID)
	assert.Equal(t, trade.ContractStatusDraft, found.Status)
	assert.True(t, found.GrossPrice.Equal(contract.GrossPrice))
}

func TestGormContractRepository_ApplyTransition_Activation(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()

	vehicle := f.seedVehicle(t, 1, true)
	customer := f.seedCustomer(t, 1)
	contract := f.seedContract(t, "C-2026-00001", customer.ID, vehicle.ID)

	require.NoError(t, contract.Activate())
	effects := trade.TransitionEffects{
		Vehicle: &trade.VehicleStatusChange{
			VehicleID: vehicle.ID,
			From:      inventory.VehicleStatusActive,
			To:        inventory.VehicleStatusReserved,
		},
		CustomerRole: &trade.CustomerRoleChange{
			CustomerID: customer.ID,
			To:         partner.RoleBuyer,
		},
	}

	require.NoError(t, f.contracts.ApplyTransition(ctx, contract, effects))

	storedContract, err := f.contracts.FindByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.ContractStatusActive, storedContract.Status)
	assert.Equal(t, 2, storedContract.Version)

	storedVehicle, err := f.vehicles.FindByID(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.VehicleStatusReserved, storedVehicle.Status)

	storedCustomer, err := f.customers.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, partner.RoleBuyer, storedCustomer.Role)
}

func TestGormContractRepository_ApplyTransition_VehicleMovedRollsBack(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()

	vehicle := f.seedVehicle(t, 1, true)
	customer := f.seedCustomer(t, 1)
	contract := f.seedContract(t, "C-2026-00001", customer.ID, vehicle.ID)

	// another writer reserved the vehicle first
	require.NoError(t, f.vehicles.UpdateStatusCAS(ctx, vehicle.ID,
		inventory.VehicleStatusActive, inventory.VehicleStatusReserved, vehicle.Version))

	require.NoError(t, contract.Activate())
	effects := trade.TransitionEffects{
		Vehicle: &trade.VehicleStatusChange{
			VehicleID: vehicle.ID,
			From:      inventory.VehicleStatusActive,
			To:        inventory.VehicleStatusReserved,
		},
		CustomerRole: &trade.CustomerRoleChange{
			CustomerID: customer.ID,
			To:         partner.RoleBuyer,
		},
	}

	err := f.contracts.ApplyTransition(ctx, contract, effects)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 1, contract.Version)

	// the contract write rolled back with the failed vehicle swap
	storedContract, err := f.contracts.FindByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.ContractStatusDraft, storedContract.Status)
	assert.Equal(t, 1, storedContract.Version)

	storedCustomer, err := f.customers.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, partner.RoleProspect, storedCustomer.Role)
}

func TestGormContractRepository_ApplyTransition_NoEffects(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()

	vehicle := f.seedVehicle(t, 1, true)
	customer := f.seedCustomer(t, 1)
	contract := f.seedContract(t, "C-2026-00001", customer.ID, vehicle.ID)

	contract.Notes = "updated terms"
	require.NoError(t, f.contracts.ApplyTransition(ctx, contract, trade.TransitionEffects{}))

	stored, err := f.contracts.FindByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated terms", stored.Notes)
}

func TestGormContractRepository_FindOpenPurchaseByVehicle(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()

	vehicle := f.seedVehicle(t, 1, true)
	customer := f.seedCustomer(t, 1)

	cancelled := f.seedContract(t, "C-2026-00001", customer.ID, vehicle.ID)
	require.NoError(t, cancelled.Cancel("customer withdrew"))
	require.NoError(t, f.contracts.Save(ctx, cancelled))

	_, err := f.contracts.FindOpenPurchaseByVehicle(ctx, vehicle.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	open := f.seedContract(t, "C-2026-00002", customer.ID, vehicle.ID)

	found, err := f.contracts.FindOpenPurchaseByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, found.ID)
}

func TestGormContractRepository_ExistsByVehicle(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()

	vehicle := f.seedVehicle(t, 1, true)
	customer := f.seedCustomer(t, 1)

	exists, err := f.contracts.ExistsByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	f.seedContract(t, "C-2026-00001", customer.ID, vehicle.ID)

	exists, err = f.contracts.ExistsByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormContractRepository_FindByCustomer(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()

	vehicleA := f.seedVehicle(t, 1, true)
	vehicleB := f.seedVehicle(t, 2, true)
	buyer := f.seedCustomer(t, 1)
	other := f.seedCustomer(t, 2)

	f.seedContract(t, "C-2026-00001", buyer.ID, vehicleA.ID)
	f.seedContract(t, "C-2026-00002", other.ID, vehicleB.ID)

	contracts, err := f.contracts.FindByCustomer(ctx, buyer.ID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "C-2026-00001", contracts[0].ContractNumber)
}

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/dms/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContractRepository_OptimisticLock_Integration verifies the version-checked
// write path against a real PostgreSQL database.
func TestContractRepository_OptimisticLock_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormContractRepository(testDB.DB)
	ctx := context.Background()

	customerID := uuid.New()
	vehicleID := uuid.New()
	testDB.CreateTestCustomer(customerID, 1001)
	testDB.CreateTestVehicle(vehicleID, 2001)

	contract, err := trade.NewContract("K-2025-00001", trade.ContractTypePurchase, customerID, vehicleID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, contract))

	// Two readers load the same version
	first, err := repo.FindByID(ctx, contract.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, contract.ID)
	require.NoError(t, err)

	first.Notes = "winter tyres included"
	require.NoError(t, repo.SaveWithLock(ctx, first))

	// The stale copy must be rejected, not silently overwrite the first write
	second.Notes = "sold as seen"
	err = repo.SaveWithLock(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

	reloaded, err := repo.FindByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "winter tyres included", reloaded.Notes)
	assert.Equal(t, first.Version, reloaded.Version)
}

// TestContractRepository_ApplyTransition_Integration verifies that a contract
// activation and its vehicle reservation apply atomically, and that a
// concurrent reservation of the same vehicle rolls the whole transition back.
func TestContractRepository_ApplyTransition_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	contractRepo := persistence.NewGormContractRepository(testDB.DB)
	vehicleRepo := persistence.NewGormVehicleRepository(testDB.DB)
	ctx := context.Background()

	customerID := uuid.New()
	vehicleID := uuid.New()
	testDB.CreateTestCustomer(customerID, 1002)
	testDB.CreateTestVehicle(vehicleID, 2002)

	contract, err := trade.NewContract("K-2025-00002", trade.ContractTypePurchase, customerID, vehicleID)
	require.NoError(t, err)
	require.NoError(t, contractRepo.Save(ctx, contract))

	rival, err := trade.NewContract("K-2025-00003", trade.ContractTypePurchase, customerID, vehicleID)
	require.NoError(t, err)
	require.NoError(t, contractRepo.Save(ctx, rival))

	// First activation reserves the vehicle
	effects, err := trade.PlanActivation(contract, inventory.VehicleStatusActive, partner.RoleBuyer)
	require.NoError(t, err)
	require.NoError(t, contract.Activate())
	require.NoError(t, contractRepo.ApplyTransition(ctx, contract, *effects))

	vehicle, err := vehicleRepo.FindByID(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, inventory.VehicleStatusReserved, vehicle.Status)

	// The rival planned against the old ACTIVE status; the compare-and-swap
	// must fail and leave the rival contract untouched in the database.
	rivalEffects := &trade.TransitionEffects{
		Vehicle: &trade.VehicleStatusChange{
			VehicleID: vehicleID,
			From:      inventory.VehicleStatusActive,
			To:        inventory.VehicleStatusReserved,
		},
	}
	versionBefore := rival.Version
	require.NoError(t, rival.Activate())
	err = contractRepo.ApplyTransition(ctx, rival, *rivalEffects)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	assert.Equal(t, versionBefore, rival.Version, "failed transition must restore the in-memory version")

	stored, err := contractRepo.FindByID(ctx, rival.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.ContractStatusDraft, stored.Status, "rolled-back transition must not persist the status change")

	vehicle, err = vehicleRepo.FindByID(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, inventory.VehicleStatusReserved, vehicle.Status, "vehicle stays reserved for the first contract")
}

package trade

import (
	"testing"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanActivation_Purchase(t *testing.T) {
	c := createTestContract(t, ContractTypePurchase)

	effects, err := PlanActivation(c, inventory.VehicleStatusActive, partner.RoleProspect)
	require.NoError(t, err)

	require.NotNil(t, effects.Vehicle)
	assert.Equal(t, c.VehicleID, effects.Vehicle.VehicleID)
	assert.Equal(t, inventory.VehicleStatusActive, effects.Vehicle.From)
	assert.Equal(t, inventory.VehicleStatusReserved, effects.Vehicle.To)

	require.NotNil(t, effects.CustomerRole)
	assert.Equal(t, c.CustomerID, effects.CustomerRole.CustomerID)
	assert.Equal(t, partner.RoleBuyer, effects.CustomerRole.To)
}

func TestPlanActivation_Purchase_CustomerAlreadyBuyer(t *testing.T) {
	c := createTestContract(t, ContractTypePurchase)

	effects, err := PlanActivation(c, inventory.VehicleStatusActive, partner.RoleBuyer)
	require.NoError(t, err)
	require.NotNil(t, effects.Vehicle)
	// Role promotion only applies to prospects
	assert.Nil(t, effects.CustomerRole)
}

func TestPlanActivation_Purchase_VehicleNotAvailable(t *testing.T) {
	c := createTestContract(t, ContractTypePurchase)

	for _, status := range []inventory.VehicleStatus{
		inventory.VehicleStatusDraft,
		inventory.VehicleStatusReserved,
		inventory.VehicleStatusSold,
	} {
		t.Run(string(status), func(t *testing.T) {
			_, err := PlanActivation(c, status, partner.RoleProspect)
			require.Error(t, err)

			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VEHICLE_NOT_AVAILABLE", domainErr.Code)
			// The error names the current status so staff see why
			assert.Contains(t, domainErr.Message, string(status))
		})
	}
}

func TestPlanActivation_Acquisition(t *testing.T) {
	c := createTestContract(t, ContractTypeAcquisition)

	// Vehicle status is irrelevant for acquisitions; it is not yet in inventory
	effects, err := PlanActivation(c, inventory.VehicleStatusDraft, partner.RoleProspect)
	require.NoError(t, err)

	assert.Nil(t, effects.Vehicle)
	require.NotNil(t, effects.CustomerRole)
	assert.Equal(t, partner.RoleSeller, effects.CustomerRole.To)
}

func TestPlanActivation_Acquisition_EstablishedRoleKept(t *testing.T) {
	c := createTestContract(t, ContractTypeAcquisition)

	effects, err := PlanActivation(c, inventory.VehicleStatusDraft, partner.RoleBuyer)
	require.NoError(t, err)
	assert.True(t, effects.IsEmpty())
}

func TestPlanTransition_Complete(t *testing.T) {
	c := createTestContract(t, ContractTypePurchase)
	require.NoError(t, c.Activate())

	effects, err := PlanTransition(c, ContractStatusCompleted, inventory.VehicleStatusReserved)
	require.NoError(t, err)

	require.NotNil(t, effects.Vehicle)
	assert.Equal(t, inventory.VehicleStatusReserved, effects.Vehicle.From)
	assert.Equal(t, inventory.VehicleStatusSold, effects.Vehicle.To)
	assert.Nil(t, effects.CustomerRole)
}

func TestPlanTransition_Complete_VehicleNotReserved(t *testing.T) {
	c := createTestContract(t, ContractTypePurchase)
	require.NoError(t, c.Activate())

	_, err := PlanTransition(c, ContractStatusCompleted, inventory.VehicleStatusActive)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestPlanTransition_Cancel_ReleasesVehicle(t *testing.T) {
	c := createTestContract(t, ContractTypePurchase)
	require.NoError(t, c.Activate())

	effects, err := PlanTransition(c, ContractStatusCancelled, inventory.VehicleStatusReserved)
	require.NoError(t, err)

	require.NotNil(t, effects.Vehicle)
	assert.Equal(t, inventory.VehicleStatusReserved, effects.Vehicle.From)
	assert.Equal(t, inventory.VehicleStatusActive, effects.Vehicle.To)
}

func TestPlanTransition_CancelDraft_NoVehicleEffect(t *testing.T) {
	c := createTestContract(t, ContractTypePurchase)

	effects, err := PlanTransition(c, ContractStatusCancelled, inventory.VehicleStatusActive)
	require.NoError(t, err)
	assert.True(t, effects.IsEmpty())
}

func TestPlanTransition_FromTerminal(t *testing.T) {
	c := createTestContract(t, ContractTypePurchase)
	require.NoError(t, c.Activate())
	require.NoError(t, c.Complete())

	_, err := PlanTransition(c, ContractStatusCancelled, inventory.VehicleStatusSold)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TERMINAL_STATUS", domainErr.Code)
}

func TestPlanTransition_Acquisition_NoVehicleEffects(t *testing.T) {
	c := createTestContract(t, ContractTypeAcquisition)
	require.NoError(t, c.Activate())

	effects, err := PlanTransition(c, ContractStatusCompleted, inventory.VehicleStatusDraft)
	require.NoError(t, err)
	assert.True(t, effects.IsEmpty())

	effects, err = PlanTransition(c, ContractStatusCancelled, inventory.VehicleStatusDraft)
	require.NoError(t, err)
	assert.True(t, effects.IsEmpty())
}

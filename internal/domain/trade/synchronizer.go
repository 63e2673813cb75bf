package trade

import (
	"fmt"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VehicleStatusChange is a planned vehicle status transition. From is the
// expected current status: applying the change is a compare-and-swap, so a
// concurrent writer that moved the vehicle first causes the whole transition
// to fail instead of double-selling it.
type VehicleStatusChange struct {
	VehicleID uuid.UUID
	From      inventory.VehicleStatus
	To        inventory.VehicleStatus
}

// CustomerRoleChange is a planned customer role update
type CustomerRoleChange struct {
	CustomerID uuid.UUID
	To         partner.CustomerRole
}

// TransitionEffects is the set of entity mutations a contract transition
// requires beyond the contract itself. All effects and the contract write
// apply atomically, or none of them do.
type TransitionEffects struct {
	Vehicle      *VehicleStatusChange
	CustomerRole *CustomerRoleChange
}

// IsEmpty reports whether the transition has no side effects
func (e *TransitionEffects) IsEmpty() bool {
	return e.Vehicle == nil && e.CustomerRole == nil
}

// PlanActivation computes the lifecycle effects of a contract becoming
// ACTIVE, given the current vehicle status and customer role. It is a pure
// function: validation and planning only, no mutation.
func PlanActivation(c *Contract, vehicleStatus inventory.VehicleStatus, customerRole partner.CustomerRole) (*TransitionEffects, error) {
	effects := &TransitionEffects{}

	switch c.Type {
	case ContractTypePurchase:
		if vehicleStatus != inventory.VehicleStatusActive {
			return nil, shared.NewDomainError("VEHICLE_NOT_AVAILABLE",
				fmt.Sprintf("Vehicle is %s, a purchase contract requires an ACTIVE vehicle", vehicleStatus))
		}
		effects.Vehicle = &VehicleStatusChange{
			VehicleID: c.VehicleID,
			From:      inventory.VehicleStatusActive,
			To:        inventory.VehicleStatusReserved,
		}
		if customerRole == partner.RoleProspect {
			effects.CustomerRole = &CustomerRoleChange{
				CustomerID: c.CustomerID,
				To:         partner.RoleBuyer,
			}
		}
	case ContractTypeAcquisition:
		// The vehicle is being bought into inventory and is not yet listed,
		// so activation has no vehicle effect.
		if customerRole == partner.RoleProspect {
			effects.CustomerRole = &CustomerRoleChange{
				CustomerID: c.CustomerID,
				To:         partner.RoleSeller,
			}
		}
	default:
		return nil, shared.NewDomainError("INVALID_CONTRACT_TYPE", fmt.Sprintf("Unknown contract type: %s", c.Type))
	}

	return effects, nil
}

// PlanTransition computes the lifecycle effects of moving an active contract
// to a terminal status, given the current vehicle status.
func PlanTransition(c *Contract, target ContractStatus, vehicleStatus inventory.VehicleStatus) (*TransitionEffects, error) {
	if !c.Status.CanTransitionTo(target) {
		return nil, terminalOrInvalid(c.Status, target)
	}

	effects := &TransitionEffects{}
	if c.Type != ContractTypePurchase {
		return effects, nil
	}

	switch target {
	case ContractStatusCompleted:
		if vehicleStatus != inventory.VehicleStatusReserved {
			return nil, shared.NewDomainError("CONFLICT",
				fmt.Sprintf("Vehicle is %s, completing a purchase contract requires a RESERVED vehicle", vehicleStatus))
		}
		effects.Vehicle = &VehicleStatusChange{
			VehicleID: c.VehicleID,
			From:      inventory.VehicleStatusReserved,
			To:        inventory.VehicleStatusSold,
		}
	case ContractStatusCancelled:
		// Cancelling a draft contract releases nothing; the vehicle was
		// never reserved.
		if c.Status == ContractStatusActive {
			if !vehicleStatus.IsContractControlled() {
				return nil, shared.NewDomainError("CONFLICT",
					fmt.Sprintf("Vehicle is %s, expected it to be controlled by the contract", vehicleStatus))
			}
			effects.Vehicle = &VehicleStatusChange{
				VehicleID: c.VehicleID,
				From:      vehicleStatus,
				To:        inventory.VehicleStatusActive,
			}
		}
	}

	return effects, nil
}

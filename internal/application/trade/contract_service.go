package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/numbering"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContractService drives the contract lifecycle and its effects on vehicles
// and customers. Status transitions are planned by the pure functions in the
// trade domain and applied atomically through the contract repository.
type ContractService struct {
	contractRepo trade.ContractRepository
	vehicleRepo  inventory.VehicleRepository
	customerRepo partner.CustomerRepository
	allocator    numbering.Allocator
	logger       *zap.Logger
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo trade.ContractRepository,
	vehicleRepo inventory.VehicleRepository,
	customerRepo partner.CustomerRepository,
	allocator numbering.Allocator,
	logger *zap.Logger,
) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		contractRepo: contractRepo,
		vehicleRepo:  vehicleRepo,
		customerRepo: customerRepo,
		allocator:    allocator,
		logger:       logger,
	}
}

// Create creates a new contract in DRAFT status. For purchase contracts the
// vehicle must be available for sale and free of other open purchase
// contracts; the authoritative check happens again at activation.
func (s *ContractService) Create(ctx context.Context, req CreateContractRequest) (*ContractResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	contractType := trade.ContractType(req.Type)
	if contractType == trade.ContractTypePurchase {
		if !vehicle.IsAvailableForSale() {
			return nil, shared.NewDomainError("VEHICLE_NOT_AVAILABLE",
				fmt.Sprintf("Vehicle is %s, a purchase contract requires an ACTIVE vehicle", vehicle.Status))
		}
		if _, err := s.contractRepo.FindOpenPurchaseByVehicle(ctx, req.VehicleID); err == nil {
			return nil, shared.NewDomainError("CONFLICT", "Vehicle already has an open purchase contract")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to check open contracts: %w", err)
		}
	}

	seq, err := s.allocator.Next(ctx, numbering.NamespaceContract)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate contract number: %w", err)
	}
	contractNumber := numbering.FormatContractNumber(time.Now().Year(), seq)

	contract, err := trade.NewContract(contractNumber, contractType, customer.ID, vehicle.ID)
	if err != nil {
		return nil, err
	}

	net := valueobject.NewMoneyEUR(req.NetPrice)
	vat := valueobject.NewMoneyEUR(req.VATAmount)
	gross := valueobject.NewMoneyEUR(req.GrossPrice)
	if err := contract.SetPricing(net, vat, gross); err != nil {
		return nil, err
	}
	if req.Deposit != nil {
		if err := contract.SetDeposit(valueobject.NewMoneyEUR(*req.Deposit)); err != nil {
			return nil, err
		}
	}
	if req.DeliveryDate != nil {
		contract.SetDeliveryDate(*req.DeliveryDate)
	}
	contract.Notes = req.Notes

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	s.logger.Info("contract created",
		zap.String("id", contract.ID.String()),
		zap.String("contractNumber", contract.ContractNumber),
		zap.String("type", string(contract.Type)))

	response := ToContractResponse(contract)
	return &response, nil
}

// Activate moves a draft contract to ACTIVE and applies the planned vehicle
// and customer effects atomically. The vehicle write is a compare-and-swap,
// so two concurrent activations for the same vehicle cannot both succeed.
func (s *ContractService) Activate(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, contract.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, contract.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	effects, err := trade.PlanActivation(contract, vehicle.Status, customer.Role)
	if err != nil {
		return nil, err
	}
	if err := contract.Activate(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.ApplyTransition(ctx, contract, *effects); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, shared.NewDomainError("CONFLICT", "Vehicle was modified concurrently, please retry")
		}
		return nil, fmt.Errorf("failed to apply contract activation: %w", err)
	}

	s.logger.Info("contract activated",
		zap.String("id", contract.ID.String()),
		zap.String("contractNumber", contract.ContractNumber),
		zap.Bool("vehicleReserved", effects.Vehicle != nil))

	response := ToContractResponse(contract)
	return &response, nil
}

// Complete moves an active contract to COMPLETED. For purchase contracts the
// reserved vehicle becomes SOLD in the same atomic write.
func (s *ContractService) Complete(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	return s.transition(ctx, id, trade.ContractStatusCompleted, "")
}

// Cancel moves a contract to CANCELLED. A vehicle held by the contract is
// released back to the active inventory in the same atomic write.
func (s *ContractService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*ContractResponse, error) {
	return s.transition(ctx, id, trade.ContractStatusCancelled, reason)
}

func (s *ContractService) transition(ctx context.Context, id uuid.UUID, target trade.ContractStatus, reason string) (*ContractResponse, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, contract.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	effects, err := trade.PlanTransition(contract, target, vehicle.Status)
	if err != nil {
		return nil, err
	}

	switch target {
	case trade.ContractStatusCompleted:
		err = contract.Complete()
	case trade.ContractStatusCancelled:
		err = contract.Cancel(reason)
	default:
		err = shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Unsupported transition target %s", target))
	}
	if err != nil {
		return nil, err
	}

	if err := s.contractRepo.ApplyTransition(ctx, contract, *effects); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, shared.NewDomainError("CONFLICT", "Vehicle was modified concurrently, please retry")
		}
		return nil, fmt.Errorf("failed to apply contract transition: %w", err)
	}

	s.logger.Info("contract transitioned",
		zap.String("id", contract.ID.String()),
		zap.String("status", string(contract.Status)))

	response := ToContractResponse(contract)
	return &response, nil
}

// GetByID retrieves a contract by ID
func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToContractResponse(contract)
	return &response, nil
}

// List retrieves a paginated list of contracts
func (s *ContractService) List(ctx context.Context, req ContractListFilter) ([]ContractResponse, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.Type != "" {
		filter.Filters["type"] = req.Type
	}

	var (
		contracts []trade.Contract
		err       error
	)
	if req.CustomerID != nil {
		contracts, err = s.contractRepo.FindByCustomer(ctx, *req.CustomerID, filter)
	} else {
		contracts, err = s.contractRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}

	total, err := s.contractRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	items := make([]ContractResponse, len(contracts))
	for i := range contracts {
		items[i] = ToContractResponse(&contracts[i])
	}
	return items, total, nil
}

// Update updates a draft contract's commercial terms
func (s *ContractService) Update(ctx context.Context, id uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return nil, err
	}

	if contract.Status != trade.ContractStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft contracts can be edited")
	}

	if req.NetPrice != nil || req.VATAmount != nil || req.GrossPrice != nil {
		net := contract.NetPrice
		if req.NetPrice != nil {
			net = *req.NetPrice
		}
		vat := contract.VATAmount
		if req.VATAmount != nil {
			vat = *req.VATAmount
		}
		gross := contract.GrossPrice
		if req.GrossPrice != nil {
			gross = *req.GrossPrice
		}
		err := contract.SetPricing(
			valueobject.NewMoneyEUR(net),
			valueobject.NewMoneyEUR(vat),
			valueobject.NewMoneyEUR(gross),
		)
		if err != nil {
			return nil, err
		}
	}

	if req.Deposit != nil {
		if err := contract.SetDeposit(valueobject.NewMoneyEUR(*req.Deposit)); err != nil {
			return nil, err
		}
	}
	if req.DeliveryDate != nil {
		contract.SetDeliveryDate(*req.DeliveryDate)
	}
	if req.Notes != nil {
		contract.Notes = *req.Notes
	}

	if err := s.contractRepo.SaveWithLock(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	response := ToContractResponse(contract)
	return &response, nil
}

func (s *ContractService) findContract(ctx context.Context, id uuid.UUID) (*trade.Contract, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Contract not found")
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return contract, nil
}

package providers

import (
	"context"
	"fmt"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/printing"
	"github.com/dms/backend/internal/domain/trade"
	infra "github.com/dms/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
)

// ContractProvider implements DataProvider for the CONTRACT document type.
type ContractProvider struct {
	contractRepo trade.ContractRepository
	customerRepo partner.CustomerRepository
	vehicleRepo  inventory.VehicleRepository
	dealer       infra.DealerInfo
}

// NewContractProvider creates a new ContractProvider.
func NewContractProvider(
	contractRepo trade.ContractRepository,
	customerRepo partner.CustomerRepository,
	vehicleRepo inventory.VehicleRepository,
	dealer infra.DealerInfo,
) *ContractProvider {
	return &ContractProvider{
		contractRepo: contractRepo,
		customerRepo: customerRepo,
		vehicleRepo:  vehicleRepo,
		dealer:       dealer,
	}
}

// GetDocType returns the document type this provider handles.
func (p *ContractProvider) GetDocType() printing.DocType {
	return printing.DocTypeContract
}

// GetData retrieves contract data for rendering.
func (p *ContractProvider) GetData(ctx context.Context, documentID uuid.UUID) (*infra.DocumentData, error) {
	contract, err := p.contractRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}

	customer, err := p.customerRepo.FindByID(ctx, contract.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	vehicle, err := p.vehicleRepo.FindByID(ctx, contract.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}

	docData := infra.NewDocumentData(printing.DocTypeContract, contract.ContractNumber)
	docData.Dealer = p.dealer
	docData.Meta.Status = string(contract.Status)
	docData.Meta.StatusText = infra.StatusText(string(contract.Status))
	docData.Meta.CreatedAt = contract.CreatedAt
	docData.Meta.UpdatedAt = contract.UpdatedAt

	outstanding := contract.OutstandingAmount().Amount()

	docData.Document = infra.ContractDocumentData{
		ID:             contract.ID,
		ContractNumber: contract.ContractNumber,
		Type:           string(contract.Type),
		TypeText:       contractTypeText(contract.Type),
		Customer:       customerInfo(customer),
		Vehicle:        vehicleInfo(vehicle),
		NetPrice:       contract.NetPrice,
		VATAmount:      contract.VATAmount,
		GrossPrice:     contract.GrossPrice,
		Deposit:        contract.Deposit,
		Outstanding:    outstanding,
		MarginScheme:   vehicle.VATType == inventory.VATMargin,
		DeliveryDate:   contract.DeliveryDate,
		SignedAt:       contract.ActivatedAt,
		Notes:          contract.Notes,

		NetPriceFormatted:    infra.FormatMoneyValue(contract.NetPrice),
		VATAmountFormatted:   infra.FormatMoneyValue(contract.VATAmount),
		GrossPriceFormatted:  infra.FormatMoneyValue(contract.GrossPrice),
		DepositFormatted:     infra.FormatMoneyValue(contract.Deposit),
		OutstandingFormatted: infra.FormatMoneyValue(outstanding),
	}

	return docData, nil
}

// contractTypeText converts the contract type to German display text
func contractTypeText(t trade.ContractType) string {
	switch t {
	case trade.ContractTypePurchase:
		return "Kaufvertrag"
	case trade.ContractTypeAcquisition:
		return "Ankaufvertrag"
	default:
		return string(t)
	}
}

// vehicleInfo builds the vehicle block for contract documents
func vehicleInfo(v *inventory.Vehicle) infra.VehicleInfo {
	firstReg := ""
	if v.FirstRegistration != nil {
		firstReg = v.FirstRegistration.Format("01/2006")
	}
	return infra.VehicleInfo{
		ID:                v.ID,
		VehicleNumber:     v.VehicleNumber,
		Title:             v.Title(),
		VIN:               v.VIN,
		FirstRegistration: firstReg,
		MileageKM:         v.MileageKM,
		PowerKW:           v.PowerKW,
		Fuel:              fuelText(v.FuelType),
		Transmission:      transmissionText(v.Transmission),
		ColorExterior:     v.ColorExterior,
	}
}

// fuelText converts the fuel type to German display text
func fuelText(f inventory.FuelType) string {
	switch f {
	case inventory.FuelPetrol:
		return "Benzin"
	case inventory.FuelDiesel:
		return "Diesel"
	case inventory.FuelElectric:
		return "Elektro"
	case inventory.FuelHybrid:
		return "Hybrid"
	case inventory.FuelLPG:
		return "Autogas"
	case inventory.FuelCNG:
		return "Erdgas"
	default:
		return string(f)
	}
}

// transmissionText converts the transmission to German display text
func transmissionText(t inventory.Transmission) string {
	switch t {
	case inventory.TransmissionManual:
		return "Schaltgetriebe"
	case inventory.TransmissionAutomatic:
		return "Automatik"
	case inventory.TransmissionSemiAuto:
		return "Halbautomatik"
	default:
		return string(t)
	}
}

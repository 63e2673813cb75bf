package inventory

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// VehicleStatus represents the availability status of a vehicle
type VehicleStatus string

const (
	VehicleStatusDraft    VehicleStatus = "DRAFT"
	VehicleStatusActive   VehicleStatus = "ACTIVE"
	VehicleStatusReserved VehicleStatus = "RESERVED"
	VehicleStatusSold     VehicleStatus = "SOLD"
)

// IsValid checks if the status is a valid VehicleStatus
func (s VehicleStatus) IsValid() bool {
	switch s {
	case VehicleStatusDraft, VehicleStatusActive, VehicleStatusReserved, VehicleStatusSold:
		return true
	}
	return false
}

// String returns the string representation of VehicleStatus
func (s VehicleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// RESERVED and SOLD are owned by the contract lifecycle: they are only ever
// entered or left through a contract transition, never directly by staff.
func (s VehicleStatus) CanTransitionTo(target VehicleStatus) bool {
	switch s {
	case VehicleStatusDraft:
		return target == VehicleStatusActive
	case VehicleStatusActive:
		return target == VehicleStatusDraft || target == VehicleStatusReserved
	case VehicleStatusReserved:
		return target == VehicleStatusSold || target == VehicleStatusActive
	case VehicleStatusSold:
		return target == VehicleStatusActive
	}
	return false
}

// IsContractControlled reports whether the status is driven by a contract.
func (s VehicleStatus) IsContractControlled() bool {
	return s == VehicleStatusReserved || s == VehicleStatusSold
}

// VehicleType represents the inventory category of a vehicle
type VehicleType string

const (
	VehicleTypeCar        VehicleType = "CAR"
	VehicleTypeVan        VehicleType = "VAN"
	VehicleTypeMotorcycle VehicleType = "MOTORCYCLE"
	VehicleTypeTrailer    VehicleType = "TRAILER"
)

// IsValid checks if the type is a valid VehicleType
func (t VehicleType) IsValid() bool {
	switch t {
	case VehicleTypeCar, VehicleTypeVan, VehicleTypeMotorcycle, VehicleTypeTrailer:
		return true
	}
	return false
}

// Condition represents the sale condition of a vehicle
type Condition string

const (
	ConditionNew      Condition = "NEW"
	ConditionUsed     Condition = "USED"
	ConditionDemo     Condition = "DEMO"
	ConditionOldtimer Condition = "OLDTIMER"
)

// IsValid checks if the condition is a valid Condition
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionDemo, ConditionOldtimer:
		return true
	}
	return false
}

// FuelType represents the fuel type of a vehicle
type FuelType string

const (
	FuelPetrol   FuelType = "PETROL"
	FuelDiesel   FuelType = "DIESEL"
	FuelElectric FuelType = "ELECTRIC"
	FuelHybrid   FuelType = "HYBRID"
	FuelLPG      FuelType = "LPG"
	FuelCNG      FuelType = "CNG"
)

// Transmission represents the transmission type of a vehicle
type Transmission string

const (
	TransmissionManual    Transmission = "MANUAL"
	TransmissionAutomatic Transmission = "AUTOMATIC"
	TransmissionSemiAuto  Transmission = "SEMI_AUTOMATIC"
)

// BodyType represents the body style of a vehicle
type BodyType string

const (
	BodySedan       BodyType = "SEDAN"
	BodyEstate      BodyType = "ESTATE"
	BodyHatchback   BodyType = "HATCHBACK"
	BodySUV         BodyType = "SUV"
	BodyCoupe       BodyType = "COUPE"
	BodyConvertible BodyType = "CONVERTIBLE"
	BodyVanBody     BodyType = "VAN"
	BodyPickup      BodyType = "PICKUP"
)

// DriveType represents the drivetrain layout of a vehicle
type DriveType string

const (
	DriveFront DriveType = "FRONT"
	DriveRear  DriveType = "REAR"
	DriveAll   DriveType = "ALL"
)

// VATType represents how VAT is handled on the selling price
type VATType string

const (
	// VATStandard means the price contains deductible VAT (Regelbesteuerung)
	VATStandard VATType = "STANDARD"
	// VATMargin means the margin scheme applies, VAT not deductible (§25a UStG)
	VATMargin VATType = "MARGIN"
)

// IsValid checks if the VAT type is valid
func (v VATType) IsValid() bool {
	return v == VATStandard || v == VATMargin
}

// MaxFeedImages is the number of image slots marketplace feeds expose per vehicle.
const MaxFeedImages = 10

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Vehicle represents a vehicle in the dealership inventory.
// It is the contested resource of the contract lifecycle: RESERVED and SOLD
// are only written through the contract synchronizer's compare-and-swap.
type Vehicle struct {
	shared.BaseAggregateRoot
	VehicleNumber     int64
	Slug              string
	Make              string
	Model             string
	Variant           string
	VIN               string
	Type              VehicleType
	Condition         Condition
	FuelType          FuelType
	Transmission      Transmission
	BodyType          BodyType
	DriveType         DriveType
	MileageKM         int
	PowerKW           int
	FirstRegistration *time.Time
	ColorExterior     string
	Doors             int
	Seats             int
	Images            []string
	SellingPrice      decimal.Decimal
	VATType           VATType
	Status            VehicleStatus
	Description       string
	Notes             string
}

// NewVehicle creates a new vehicle in DRAFT status.
// vehicleNumber must come from the numbering allocator.
func NewVehicle(vehicleNumber int64, makeName, model, variant string, vehicleType VehicleType, condition Condition, sellingPrice valueobject.Money, vatType VATType) (*Vehicle, error) {
	if vehicleNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_VEHICLE_NUMBER", "Vehicle number must be positive")
	}
	if makeName == "" {
		return nil, shared.NewDomainError("INVALID_MAKE", "Make cannot be empty")
	}
	if model == "" {
		return nil, shared.NewDomainError("INVALID_MODEL", "Model cannot be empty")
	}
	if !vehicleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VEHICLE_TYPE", fmt.Sprintf("Unknown vehicle type: %s", vehicleType))
	}
	if !condition.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONDITION", fmt.Sprintf("Unknown condition: %s", condition))
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	if !vatType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_TYPE", fmt.Sprintf("Unknown VAT type: %s", vatType))
	}

	v := &Vehicle{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VehicleNumber:     vehicleNumber,
		Make:              makeName,
		Model:             model,
		Variant:           variant,
		Type:              vehicleType,
		Condition:         condition,
		SellingPrice:      sellingPrice.Amount(),
		VATType:           vatType,
		Status:            VehicleStatusDraft,
		Images:            make([]string, 0),
	}
	v.Slug = buildSlug(makeName, model, variant, vehicleNumber)
	return v, nil
}

// buildSlug derives the catalog URL slug from the descriptive attributes
// plus the vehicle number for uniqueness.
func buildSlug(makeName, model, variant string, vehicleNumber int64) string {
	base := strings.ToLower(strings.Join([]string{makeName, model, variant}, " "))
	base = slugPattern.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	return fmt.Sprintf("%s-%d", base, vehicleNumber)
}

// Activate publishes a draft vehicle to the active inventory
func (v *Vehicle) Activate() error {
	if !v.Status.CanTransitionTo(VehicleStatusActive) || v.Status != VehicleStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot activate vehicle in status %s", v.Status))
	}
	v.Status = VehicleStatusActive
	v.UpdatedAt = time.Now()
	return nil
}

// Withdraw takes an active vehicle back to draft, e.g. to fix listing data.
// Not allowed while a contract controls the status.
func (v *Vehicle) Withdraw() error {
	if v.Status != VehicleStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot withdraw vehicle in status %s", v.Status))
	}
	v.Status = VehicleStatusDraft
	v.UpdatedAt = time.Now()
	return nil
}

// Reserve marks the vehicle as reserved by an active purchase contract
func (v *Vehicle) Reserve() error {
	if v.Status != VehicleStatusActive {
		return shared.NewDomainError("VEHICLE_NOT_AVAILABLE", fmt.Sprintf("Vehicle is %s, only ACTIVE vehicles can be reserved", v.Status))
	}
	v.Status = VehicleStatusReserved
	v.UpdatedAt = time.Now()
	return nil
}

// MarkSold marks a reserved vehicle as sold when its contract completes
func (v *Vehicle) MarkSold() error {
	if v.Status != VehicleStatusReserved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot sell vehicle in status %s", v.Status))
	}
	v.Status = VehicleStatusSold
	v.UpdatedAt = time.Now()
	return nil
}

// Release returns a reserved or sold vehicle to the active inventory
// when its contract is cancelled
func (v *Vehicle) Release() error {
	if !v.Status.IsContractControlled() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot release vehicle in status %s", v.Status))
	}
	v.Status = VehicleStatusActive
	v.UpdatedAt = time.Now()
	return nil
}

// IsAvailableForSale reports whether a new purchase contract may reference the vehicle
func (v *Vehicle) IsAvailableForSale() bool {
	return v.Status == VehicleStatusActive
}

// UpdatePrice changes the selling price
func (v *Vehicle) UpdatePrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	v.SellingPrice = price.Amount()
	v.UpdatedAt = time.Now()
	return nil
}

// SetVIN sets the vehicle identification number
func (v *Vehicle) SetVIN(vin string) error {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if vin != "" && len(vin) != 17 {
		return shared.NewDomainError("INVALID_VIN", "VIN must be 17 characters")
	}
	v.VIN = vin
	v.UpdatedAt = time.Now()
	return nil
}

// SetImages replaces the image URL list, keeping input order
func (v *Vehicle) SetImages(urls []string) {
	images := make([]string, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			images = append(images, u)
		}
	}
	v.Images = images
	v.UpdatedAt = time.Now()
}

// SetTechnicalData updates the technical attributes in one call
func (v *Vehicle) SetTechnicalData(fuel FuelType, transmission Transmission, body BodyType, drive DriveType, mileageKM, powerKW int) error {
	if mileageKM < 0 {
		return shared.NewDomainError("INVALID_MILEAGE", "Mileage cannot be negative")
	}
	if powerKW < 0 {
		return shared.NewDomainError("INVALID_POWER", "Power cannot be negative")
	}
	v.FuelType = fuel
	v.Transmission = transmission
	v.BodyType = body
	v.DriveType = drive
	v.MileageKM = mileageKM
	v.PowerKW = powerKW
	v.UpdatedAt = time.Now()
	return nil
}

// SetListingDetails updates the descriptive listing attributes
func (v *Vehicle) SetListingDetails(firstRegistration *time.Time, colorExterior string, doors, seats int, description string) error {
	if doors < 0 || seats < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Doors and seats cannot be negative")
	}
	v.FirstRegistration = firstRegistration
	v.ColorExterior = colorExterior
	v.Doors = doors
	v.Seats = seats
	v.Description = description
	v.UpdatedAt = time.Now()
	return nil
}

// GetSellingPriceMoney returns the selling price as Money value object
func (v *Vehicle) GetSellingPriceMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(v.SellingPrice)
}

// Title returns the display title used in listings and documents
func (v *Vehicle) Title() string {
	parts := []string{v.Make, v.Model}
	if v.Variant != "" {
		parts = append(parts, v.Variant)
	}
	return strings.Join(parts, " ")
}

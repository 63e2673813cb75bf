package inventory

import (
	"time"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateVehicleRequest represents a request to create a new vehicle
type CreateVehicleRequest struct {
	Make              string          `json:"make" binding:"required,min=1,max=100"`
	Model             string          `json:"model" binding:"required,min=1,max=100"`
	Variant           string          `json:"variant" binding:"max=200"`
	VIN               string          `json:"vin" binding:"omitempty,vin"`
	Type              string          `json:"type" binding:"required,oneof=CAR VAN MOTORCYCLE TRAILER"`
	Condition         string          `json:"condition" binding:"required,oneof=NEW USED DEMO OLDTIMER"`
	SellingPrice      decimal.Decimal `json:"selling_price" binding:"required"`
	VATType           string          `json:"vat_type" binding:"required,oneof=STANDARD MARGIN"`
	FuelType          string          `json:"fuel_type" binding:"omitempty"`
	Transmission      string          `json:"transmission" binding:"omitempty"`
	BodyType          string          `json:"body_type" binding:"omitempty"`
	DriveType         string          `json:"drive_type" binding:"omitempty"`
	MileageKM         int             `json:"mileage_km" binding:"min=0"`
	PowerKW           int             `json:"power_kw" binding:"min=0"`
	FirstRegistration *time.Time      `json:"first_registration"`
	ColorExterior     string          `json:"color_exterior" binding:"max=50"`
	Doors             int             `json:"doors" binding:"min=0,max=9"`
	Seats             int             `json:"seats" binding:"min=0,max=99"`
	Images            []string        `json:"images" binding:"max=30,dive,url"`
	Description       string          `json:"description" binding:"max=10000"`
	Notes             string          `json:"notes" binding:"max=5000"`
}

// UpdateVehicleRequest represents a request to update a vehicle's listing data
type UpdateVehicleRequest struct {
	Variant           *string          `json:"variant" binding:"omitempty,max=200"`
	VIN               *string          `json:"vin" binding:"omitempty,vin"`
	SellingPrice      *decimal.Decimal `json:"selling_price"`
	FuelType          *string          `json:"fuel_type"`
	Transmission      *string          `json:"transmission"`
	BodyType          *string          `json:"body_type"`
	DriveType         *string          `json:"drive_type"`
	MileageKM         *int             `json:"mileage_km" binding:"omitempty,min=0"`
	PowerKW           *int             `json:"power_kw" binding:"omitempty,min=0"`
	FirstRegistration *time.Time       `json:"first_registration"`
	ColorExterior     *string          `json:"color_exterior" binding:"omitempty,max=50"`
	Doors             *int             `json:"doors" binding:"omitempty,min=0,max=9"`
	Seats             *int             `json:"seats" binding:"omitempty,min=0,max=99"`
	Images            []string         `json:"images" binding:"omitempty,max=30,dive,url"`
	Description       *string          `json:"description" binding:"omitempty,max=10000"`
	Notes             *string          `json:"notes" binding:"omitempty,max=5000"`
}

// VehicleResponse represents a vehicle in API responses
type VehicleResponse struct {
	ID                uuid.UUID       `json:"id"`
	VehicleNumber     int64           `json:"vehicle_number"`
	Slug              string          `json:"slug"`
	Make              string          `json:"make"`
	Model             string          `json:"model"`
	Variant           string          `json:"variant"`
	VIN               string          `json:"vin"`
	Type              string          `json:"type"`
	Condition         string          `json:"condition"`
	FuelType          string          `json:"fuel_type"`
	Transmission      string          `json:"transmission"`
	BodyType          string          `json:"body_type"`
	DriveType         string          `json:"drive_type"`
	MileageKM         int             `json:"mileage_km"`
	PowerKW           int             `json:"power_kw"`
	FirstRegistration *time.Time      `json:"first_registration"`
	ColorExterior     string          `json:"color_exterior"`
	Doors             int             `json:"doors"`
	Seats             int             `json:"seats"`
	Images            []string        `json:"images"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	VATType           string          `json:"vat_type"`
	Status            string          `json:"status"`
	Description       string          `json:"description"`
	Notes             string          `json:"notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// VehicleListResponse represents a list item for vehicles
type VehicleListResponse struct {
	ID            uuid.UUID       `json:"id"`
	VehicleNumber int64           `json:"vehicle_number"`
	Slug          string          `json:"slug"`
	Make          string          `json:"make"`
	Model         string          `json:"model"`
	Variant       string          `json:"variant"`
	MileageKM     int             `json:"mileage_km"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// VehicleListFilter represents filter options for vehicle lists
type VehicleListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE RESERVED SOLD"`
	Make     string `form:"make"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToVehicleResponse converts a domain Vehicle to VehicleResponse
func ToVehicleResponse(v *inventory.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                v.ID,
		VehicleNumber:     v.VehicleNumber,
		Slug:              v.Slug,
		Make:              v.Make,
		Model:             v.Model,
		Variant:           v.Variant,
		VIN:               v.VIN,
		Type:              string(v.Type),
		Condition:         string(v.Condition),
		FuelType:          string(v.FuelType),
		Transmission:      string(v.Transmission),
		BodyType:          string(v.BodyType),
		DriveType:         string(v.DriveType),
		MileageKM:         v.MileageKM,
		PowerKW:           v.PowerKW,
		FirstRegistration: v.FirstRegistration,
		ColorExterior:     v.ColorExterior,
		Doors:             v.Doors,
		Seats:             v.Seats,
		Images:            v.Images,
		SellingPrice:      v.SellingPrice,
		VATType:           string(v.VATType),
		Status:            string(v.Status),
		Description:       v.Description,
		Notes:             v.Notes,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
		Version:           v.Version,
	}
}

// ToVehicleListResponse converts a domain Vehicle to VehicleListResponse
func ToVehicleListResponse(v *inventory.Vehicle) VehicleListResponse {
	return VehicleListResponse{
		ID:            v.ID,
		VehicleNumber: v.VehicleNumber,
		Slug:          v.Slug,
		Make:          v.Make,
		Model:         v.Model,
		Variant:       v.Variant,
		MileageKM:     v.MileageKM,
		SellingPrice:  v.SellingPrice,
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt,
	}
}

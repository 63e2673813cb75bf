package models

import (
	"time"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// VehicleModel is the persistence model for the Vehicle aggregate root.
// Images are stored as a JSON array; the feed exporters care about order.
type VehicleModel struct {
	AggregateModel
	VehicleNumber     int64           `gorm:"not null;uniqueIndex"`
	Slug              string          `gorm:"size:255;not null;uniqueIndex"`
	Make              string          `gorm:"size:100;not null;index"`
	Model             string          `gorm:"size:100;not null"`
	Variant           string          `gorm:"size:100"`
	VIN               string          `gorm:"size:17;index"`
	Type              string          `gorm:"size:20;not null"`
	Condition         string          `gorm:"size:20;not null"`
	FuelType          string          `gorm:"size:20"`
	Transmission      string          `gorm:"size:20"`
	BodyType          string          `gorm:"size:20"`
	DriveType         string          `gorm:"size:20"`
	MileageKM         int             `gorm:"not null;default:0"`
	PowerKW           int             `gorm:"not null;default:0"`
	FirstRegistration *time.Time      ``
	ColorExterior     string          `gorm:"size:50"`
	Doors             int             `gorm:"not null;default:0"`
	Seats             int             `gorm:"not null;default:0"`
	Images            []string        `gorm:"serializer:json"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	VATType           string          `gorm:"size:20;not null"`
	Status            string          `gorm:"size:20;not null;index"`
	Description       string          `gorm:"type:text"`
	Notes             string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (VehicleModel) TableName() string {
	return "vehicles"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *VehicleModel) ToDomain() *inventory.Vehicle {
	return &inventory.Vehicle{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		VehicleNumber:     m.VehicleNumber,
		Slug:              m.Slug,
		Make:              m.Make,
		Model:             m.Model,
		Variant:           m.Variant,
		VIN:               m.VIN,
		Type:              inventory.VehicleType(m.Type),
		Condition:         inventory.Condition(m.Condition),
		FuelType:          inventory.FuelType(m.FuelType),
		Transmission:      inventory.Transmission(m.Transmission),
		BodyType:          inventory.BodyType(m.BodyType),
		DriveType:         inventory.DriveType(m.DriveType),
		MileageKM:         m.MileageKM,
		PowerKW:           m.PowerKW,
		FirstRegistration: m.FirstRegistration,
		ColorExterior:     m.ColorExterior,
		Doors:             m.Doors,
		Seats:             m.Seats,
		Images:            m.Images,
		SellingPrice:      m.SellingPrice,
		VATType:           inventory.VATType(m.VATType),
		Status:            inventory.VehicleStatus(m.Status),
		Description:       m.Description,
		Notes:             m.Notes,
	}
}

// VehicleModelFromDomain converts the domain aggregate to the persistence model
func VehicleModelFromDomain(v *inventory.Vehicle) *VehicleModel {
	model := &VehicleModel{
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
	}
	model.FromDomainAggregateRoot(v.BaseAggregateRoot)
	return model
}

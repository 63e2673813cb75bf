package feed

import (
	"time"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// VehicleSnapshot is a fully resolved, read-only view of a vehicle as
// consumed by schema projections. Enum fields carry the raw internal
// values; translation to marketplace vocabulary happens per schema.
type VehicleSnapshot struct {
	VehicleNumber     int64
	Make              string
	Model             string
	Variant           string
	VIN               string
	Type              string
	Condition         string
	FuelType          string
	Transmission      string
	BodyType          string
	DriveType         string
	MileageKM         int
	PowerKW           int
	FirstRegistration *time.Time
	ColorExterior     string
	Doors             int
	Seats             int
	Images            []string
	SellingPrice      decimal.Decimal
	VATType           string
	Description       string
}

// SnapshotFromVehicle projects a vehicle aggregate into a snapshot
func SnapshotFromVehicle(v *inventory.Vehicle) VehicleSnapshot {
	images := make([]string, len(v.Images))
	copy(images, v.Images)
	return VehicleSnapshot{
		VehicleNumber:     v.VehicleNumber,
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
		Images:            images,
		SellingPrice:      v.SellingPrice,
		VATType:           string(v.VATType),
		Description:       v.Description,
	}
}

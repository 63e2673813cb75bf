package feed

import "strconv"

// AutoScout24 listing feed. Comma separated, lowercase English vocabulary,
// first registration as YYYY-MM.

const autoScoutDateLayout = "2006-01"

var autoScoutFuel = Translation{
	"PETROL":   "gasoline",
	"DIESEL":   "diesel",
	"ELECTRIC": "electric",
	"HYBRID":   "hybrid",
	"LPG":      "lpg",
	"CNG":      "cng",
}

var autoScoutGearbox = Translation{
	"MANUAL":         "manual",
	"AUTOMATIC":      "automatic",
	"SEMI_AUTOMATIC": "semi-automatic",
}

var autoScoutBody = Translation{
	"SEDAN":       "saloon",
	"ESTATE":      "estate",
	"HATCHBACK":   "hatchback",
	"SUV":         "suv",
	"COUPE":       "coupe",
	"CONVERTIBLE": "cabriolet",
	"VAN":         "van",
	"PICKUP":      "pickup",
}

var autoScoutCondition = Translation{
	"NEW":      "new",
	"USED":     "used",
	"DEMO":     "demonstration",
	"OLDTIMER": "classic",
}

var autoScoutDrive = Translation{
	"FRONT": "front",
	"REAR":  "rear",
	"ALL":   "4wd",
}

var autoScoutVAT = Translation{
	"STANDARD": "deductible",
	"MARGIN":   "margin",
}

var autoScoutColumns = []string{
	"offer_ref",
	"make",
	"model",
	"version",
	"vin",
	"condition",
	"fuel_type",
	"gearbox",
	"body_type",
	"drive_type",
	"mileage",
	"power_kw",
	"first_registration",
	"exterior_color",
	"doors",
	"seats",
	"price",
	"vat_type",
	"description",
	"image_url_1", "image_url_2", "image_url_3", "image_url_4", "image_url_5",
	"image_url_6", "image_url_7", "image_url_8", "image_url_9", "image_url_10",
}

// AutoScoutSchema projects vehicles into the AutoScout24 feed format
type AutoScoutSchema struct{}

// NewAutoScoutSchema creates the AutoScout24 export schema
func NewAutoScoutSchema() *AutoScoutSchema {
	return &AutoScoutSchema{}
}

func (s *AutoScoutSchema) Code() string {
	return "autoscout"
}

func (s *AutoScoutSchema) Separator() rune {
	return ','
}

func (s *AutoScoutSchema) Columns() []string {
	cols := make([]string, len(autoScoutColumns))
	copy(cols, autoScoutColumns)
	return cols
}

func (s *AutoScoutSchema) Row(v VehicleSnapshot) []string {
	row := []string{
		strconv.FormatInt(v.VehicleNumber, 10),
		v.Make,
		v.Model,
		v.Variant,
		v.VIN,
		autoScoutCondition.Apply(v.Condition),
		autoScoutFuel.Apply(v.FuelType),
		autoScoutGearbox.Apply(v.Transmission),
		autoScoutBody.Apply(v.BodyType),
		autoScoutDrive.Apply(v.DriveType),
		formatInt(v.MileageKM),
		formatInt(v.PowerKW),
		formatDate(v.FirstRegistration, autoScoutDateLayout),
		v.ColorExterior,
		formatInt(v.Doors),
		formatInt(v.Seats),
		formatPrice(v.SellingPrice),
		autoScoutVAT.Apply(v.VATType),
		v.Description,
	}
	return append(row, padImages(v.Images)...)
}

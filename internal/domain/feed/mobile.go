package feed

import "strconv"

// mobile.de inventory feed. Semicolon separated, German vocabulary,
// first registration as MM/YYYY.

const mobileDateLayout = "01/2006"

var mobileFuel = Translation{
	"PETROL":   "BENZIN",
	"DIESEL":   "DIESEL",
	"ELECTRIC": "ELEKTRO",
	"HYBRID":   "HYBRID",
	"LPG":      "AUTOGAS",
	"CNG":      "ERDGAS",
}

var mobileTransmission = Translation{
	"MANUAL":         "SCHALTGETRIEBE",
	"AUTOMATIC":      "AUTOMATIK",
	"SEMI_AUTOMATIC": "HALBAUTOMATIK",
}

var mobileBody = Translation{
	"SEDAN":       "LIMOUSINE",
	"ESTATE":      "KOMBI",
	"HATCHBACK":   "SCHRAEGHECK",
	"SUV":         "GELAENDEWAGEN",
	"COUPE":       "SPORTWAGEN",
	"CONVERTIBLE": "CABRIO",
	"VAN":         "TRANSPORTER",
	"PICKUP":      "PICKUP",
}

var mobileCondition = Translation{
	"NEW":      "NEU",
	"USED":     "GEBRAUCHT",
	"DEMO":     "VORFUEHRFAHRZEUG",
	"OLDTIMER": "OLDTIMER",
}

var mobileDrive = Translation{
	"FRONT": "FRONTANTRIEB",
	"REAR":  "HECKANTRIEB",
	"ALL":   "ALLRAD",
}

var mobileVAT = Translation{
	"STANDARD": "MWST_AUSWEISBAR",
	"MARGIN":   "DIFFERENZBESTEUERT",
}

var mobileColumns = []string{
	"interne_nummer",
	"marke",
	"modell",
	"variante",
	"fin",
	"zustand",
	"kraftstoffart",
	"getriebeart",
	"karosserieform",
	"antriebsart",
	"kilometer",
	"leistung_kw",
	"erstzulassung",
	"aussenfarbe",
	"tueren",
	"sitze",
	"preis",
	"mwst",
	"beschreibung",
	"bild1", "bild2", "bild3", "bild4", "bild5",
	"bild6", "bild7", "bild8", "bild9", "bild10",
}

// MobileSchema projects vehicles into the mobile.de feed format
type MobileSchema struct{}

// NewMobileSchema creates the mobile.de export schema
func NewMobileSchema() *MobileSchema {
	return &MobileSchema{}
}

func (s *MobileSchema) Code() string {
	return "mobile"
}

func (s *MobileSchema) Separator() rune {
	return ';'
}

func (s *MobileSchema) Columns() []string {
	cols := make([]string, len(mobileColumns))
	copy(cols, mobileColumns)
	return cols
}

func (s *MobileSchema) Row(v VehicleSnapshot) []string {
	row := []string{
		strconv.FormatInt(v.VehicleNumber, 10),
		v.Make,
		v.Model,
		v.Variant,
		v.VIN,
		mobileCondition.Apply(v.Condition),
		mobileFuel.Apply(v.FuelType),
		mobileTransmission.Apply(v.Transmission),
		mobileBody.Apply(v.BodyType),
		mobileDrive.Apply(v.DriveType),
		formatInt(v.MileageKM),
		formatInt(v.PowerKW),
		formatDate(v.FirstRegistration, mobileDateLayout),
		v.ColorExterior,
		formatInt(v.Doors),
		formatInt(v.Seats),
		formatPrice(v.SellingPrice),
		mobileVAT.Apply(v.VATType),
		v.Description,
	}
	return append(row, padImages(v.Images)...)
}

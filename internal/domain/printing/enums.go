package printing

// DocType represents the type of business document that can be printed
type DocType string

const (
	DocTypeContract DocType = "CONTRACT"
	DocTypeInvoice  DocType = "INVOICE"
)

// IsValid checks if the DocType is a valid value
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeContract, DocTypeInvoice:
		return true
	}
	return false
}

// String returns the string representation of DocType
func (d DocType) String() string {
	return string(d)
}

// DisplayName returns the German display name for DocType
func (d DocType) DisplayName() string {
	switch d {
	case DocTypeContract:
		return "Kaufvertrag"
	case DocTypeInvoice:
		return "Rechnung"
	default:
		return string(d)
	}
}

// AllDocTypes returns all valid DocType values
func AllDocTypes() []DocType {
	return []DocType{DocTypeContract, DocTypeInvoice}
}

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeA4 PaperSize = "A4" // 210mm x 297mm
	PaperSizeA5 PaperSize = "A5" // 148mm x 210mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	default:
		return 210, 297
	}
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

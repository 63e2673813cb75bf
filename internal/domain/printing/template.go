package printing

import "github.com/google/uuid"

// PrintTemplate is a renderable HTML template for one document type.
// Templates ship with the binary and can be overridden from a directory,
// they are not user-managed data.
type PrintTemplate struct {
	ID           uuid.UUID
	DocumentType DocType
	Name         string
	Description  string
	Content      string
	PaperSize    PaperSize
	Orientation  Orientation
	Margins      Margins
	IsDefault    bool
}

package printing

import (
	"embed"
	"fmt"

	"github.com/dms/backend/internal/domain/printing"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTemplate represents a default print template configuration
type DefaultTemplate struct {
	DocType     printing.DocType
	Name        string
	Description string
	PaperSize   printing.PaperSize
	Orientation printing.Orientation
	Margins     printing.Margins
	FilePath    string // Path within embed.FS
	IsDefault   bool   // Whether this is the default for its doc type
}

// GetDefaultTemplates returns all default template configurations
func GetDefaultTemplates() []DefaultTemplate {
	return []DefaultTemplate{
		{
			DocType:     printing.DocTypeContract,
			Name:        "Kaufvertrag A4",
			Description: "Fahrzeug-Kaufvertrag mit Kundendaten, Fahrzeugdaten und Preisen",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/contract_a4.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypeInvoice,
			Name:        "Rechnung A4",
			Description: "Rechnung mit Positionen und Umsatzsteuerausweis",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/invoice_a4.html",
			IsDefault:   true,
		},
	}
}

// LoadTemplateContent loads the HTML content for a default template
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return string(content), nil
}

// GetDefaultTemplateForDocType finds the default template for a document type
func GetDefaultTemplateForDocType(docType printing.DocType) *DefaultTemplate {
	templates := GetDefaultTemplates()
	for _, t := range templates {
		if t.DocType == docType && t.IsDefault {
			return &t
		}
	}
	return nil
}

package printing

import (
	"github.com/google/uuid"
)

// RenderDocumentRequest represents a request to render a document as PDF
type RenderDocumentRequest struct {
	// DocumentType is CONTRACT or INVOICE
	DocumentType string `json:"document_type" binding:"required"`
	// DocumentID is the aggregate to render
	DocumentID uuid.UUID `json:"document_id" binding:"required"`
	// TemplateID optionally selects a non-default template
	TemplateID *uuid.UUID `json:"template_id,omitempty"`
}

// DocumentResponse contains a rendered PDF document
type DocumentResponse struct {
	// Filename is the suggested download filename
	Filename string `json:"filename"`
	// ContentType is always application/pdf
	ContentType string `json:"content_type"`
	// Data is the raw PDF content
	Data []byte `json:"-"`
	// URL is the archive location of the stored PDF
	URL string `json:"url"`
	// PageCount is the number of pages
	PageCount int `json:"page_count"`
}

// PreviewResponse contains rendered HTML for on-screen preview
type PreviewResponse struct {
	HTML        string     `json:"html"`
	TemplateID  string     `json:"template_id"`
	PaperSize   string     `json:"paper_size"`
	Orientation string     `json:"orientation"`
	Margins     MarginsDTO `json:"margins"`
}

// MarginsDTO represents page margins in millimeters
type MarginsDTO struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// TemplateResponse represents a print template in API responses
type TemplateResponse struct {
	ID           string     `json:"id"`
	DocumentType string     `json:"document_type"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	PaperSize    string     `json:"paper_size"`
	Orientation  string     `json:"orientation"`
	Margins      MarginsDTO `json:"margins"`
	IsDefault    bool       `json:"is_default"`
}

// DocumentTypeResponse represents an available document type
type DocumentTypeResponse struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

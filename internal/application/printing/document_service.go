package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dms/backend/internal/domain/printing"
	"github.com/dms/backend/internal/domain/shared"
	infra "github.com/dms/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PDFContentType is the content type of rendered documents
const PDFContentType = "application/pdf"

// DataLoader loads the fully resolved document snapshot for a document type.
// Implemented by the provider registry.
type DataLoader interface {
	LoadData(ctx context.Context, docType printing.DocType, documentID uuid.UUID) (*infra.DocumentData, error)
	HasProvider(docType printing.DocType) bool
}

// DocumentService renders business documents as PDF files.
// It composes the data providers, template engine, PDF renderer, and
// the archive storage into a single render pipeline.
type DocumentService struct {
	loader    DataLoader
	templates *infra.TemplateStore
	engine    *infra.TemplateEngine
	renderer  infra.PDFRenderer
	storage   infra.PDFStorage
	logger    *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	loader DataLoader,
	templates *infra.TemplateStore,
	engine *infra.TemplateEngine,
	renderer infra.PDFRenderer,
	storage infra.PDFStorage,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		loader:    loader,
		templates: templates,
		engine:    engine,
		renderer:  renderer,
		storage:   storage,
		logger:    logger,
	}
}

// Render generates a PDF for a document and archives it.
// The returned response carries both the raw bytes for immediate download
// and the archive URL.
func (s *DocumentService) Render(ctx context.Context, req RenderDocumentRequest) (*DocumentResponse, error) {
	docType := printing.DocType(req.DocumentType)
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}
	if req.DocumentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document ID is required")
	}
	if !s.loader.HasProvider(docType) {
		return nil, shared.NewDomainError("INVALID_INPUT", "No data provider for this document type")
	}

	template, err := s.resolveTemplate(docType, req.TemplateID)
	if err != nil {
		return nil, err
	}

	data, err := s.loader.LoadData(ctx, docType, req.DocumentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return nil, fmt.Errorf("failed to load document data: %w", err)
	}

	htmlResult, err := s.engine.Render(ctx, &infra.RenderTemplateRequest{
		Template: template,
		Data:     data,
	})
	if err != nil {
		var renderErr *infra.RenderError
		if errors.As(err, &renderErr) {
			return nil, shared.NewDomainError(renderErr.Code, renderErr.Message)
		}
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	pdfResult, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:        htmlResult.HTML,
		PaperSize:   template.PaperSize,
		Orientation: template.Orientation,
		Margins:     template.Margins,
		Title:       fmt.Sprintf("%s %s", data.Meta.DocTypeName, data.Meta.DocNo),
	})
	if err != nil {
		s.logger.Error("PDF rendering failed",
			zap.Error(err),
			zap.String("docType", string(docType)),
			zap.String("documentId", req.DocumentID.String()))
		var renderErr *infra.RenderError
		if errors.As(err, &renderErr) {
			return nil, shared.NewDomainError(renderErr.Code, renderErr.Message)
		}
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	storeResult, err := s.storage.Store(ctx, &infra.StoreRequest{
		DocType:    docType,
		DocumentID: req.DocumentID,
		PDFData:    pdfResult.PDFData,
	})
	if err != nil {
		s.logger.Error("PDF archiving failed",
			zap.Error(err),
			zap.String("docType", string(docType)),
			zap.String("documentId", req.DocumentID.String()))
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	s.logger.Info("document rendered",
		zap.String("docType", string(docType)),
		zap.String("docNo", data.Meta.DocNo),
		zap.Int("pages", pdfResult.PageCount),
		zap.String("url", storeResult.URL))

	return &DocumentResponse{
		Filename:    documentFilename(docType, data.Meta.DocNo),
		ContentType: PDFContentType,
		Data:        pdfResult.PDFData,
		URL:         storeResult.URL,
		PageCount:   pdfResult.PageCount,
	}, nil
}

// Preview renders the HTML for a document without producing a PDF
func (s *DocumentService) Preview(ctx context.Context, req RenderDocumentRequest) (*PreviewResponse, error) {
	docType := printing.DocType(req.DocumentType)
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}
	if !s.loader.HasProvider(docType) {
		return nil, shared.NewDomainError("INVALID_INPUT", "No data provider for this document type")
	}

	template, err := s.resolveTemplate(docType, req.TemplateID)
	if err != nil {
		return nil, err
	}

	data, err := s.loader.LoadData(ctx, docType, req.DocumentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return nil, fmt.Errorf("failed to load document data: %w", err)
	}

	result, err := s.engine.Render(ctx, &infra.RenderTemplateRequest{
		Template: template,
		Data:     data,
	})
	if err != nil {
		var renderErr *infra.RenderError
		if errors.As(err, &renderErr) {
			return nil, shared.NewDomainError(renderErr.Code, renderErr.Message)
		}
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &PreviewResponse{
		HTML:        result.HTML,
		TemplateID:  template.ID.String(),
		PaperSize:   string(template.PaperSize),
		Orientation: string(template.Orientation),
		Margins:     toMarginsDTO(template.Margins),
	}, nil
}

// OpenArchived opens a previously archived PDF by its storage path
func (s *DocumentService) OpenArchived(ctx context.Context, path string) (io.ReadCloser, error) {
	reader, err := s.storage.Get(ctx, path)
	if err != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Archived document not found")
	}
	return reader, nil
}

// ListTemplates returns all available print templates
func (s *DocumentService) ListTemplates() []TemplateResponse {
	templates := s.templates.GetAll()
	result := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		result[i] = *toTemplateResponse(&t)
	}
	return result
}

// GetDocumentTypes returns all renderable document types
func (s *DocumentService) GetDocumentTypes() []DocumentTypeResponse {
	docTypes := printing.AllDocTypes()
	result := make([]DocumentTypeResponse, len(docTypes))
	for i, dt := range docTypes {
		result[i] = DocumentTypeResponse{
			Code:        string(dt),
			DisplayName: dt.DisplayName(),
		}
	}
	return result
}

// resolveTemplate picks the requested template or the doc type default
func (s *DocumentService) resolveTemplate(docType printing.DocType, templateID *uuid.UUID) (*printing.PrintTemplate, error) {
	if templateID != nil {
		template := s.templates.GetByID(*templateID)
		if template == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		if template.DocumentType != docType {
			return nil, shared.NewDomainError("INVALID_INPUT", "Template does not match document type")
		}
		return template, nil
	}

	template := s.templates.GetDefault(docType)
	if template == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No default template found for this document type")
	}
	return template, nil
}

// documentFilename builds the download filename, e.g. "rechnung-INV-2026-0001.pdf"
func documentFilename(docType printing.DocType, docNo string) string {
	return fmt.Sprintf("%s-%s.pdf", strings.ToLower(docType.DisplayName()), docNo)
}

func toMarginsDTO(m printing.Margins) MarginsDTO {
	return MarginsDTO{
		Top:    m.Top,
		Right:  m.Right,
		Bottom: m.Bottom,
		Left:   m.Left,
	}
}

func toTemplateResponse(t *printing.PrintTemplate) *TemplateResponse {
	return &TemplateResponse{
		ID:           t.ID.String(),
		DocumentType: string(t.DocumentType),
		Name:         t.Name,
		Description:  t.Description,
		PaperSize:    string(t.PaperSize),
		Orientation:  string(t.Orientation),
		Margins:      toMarginsDTO(t.Margins),
		IsDefault:    t.IsDefault,
	}
}

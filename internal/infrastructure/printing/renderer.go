package printing

import (
	"context"
	"time"

	"github.com/dms/backend/internal/domain/printing"
)

// RenderRequest carries everything needed to turn HTML into a PDF.
type RenderRequest struct {
	HTML        string
	PaperSize   printing.PaperSize
	Orientation printing.Orientation
	// Margins in millimeters.
	Margins printing.Margins
	// Title lands in the PDF document metadata.
	Title string
	// FooterHTML is optional footer content, page numbers mostly.
	FooterHTML string
	// Timeout overrides the renderer default when non-zero.
	Timeout time.Duration
}

// RenderResult is the output of a render run.
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer renders HTML to PDF. The chromedp implementation is the only
// production one; tests substitute fakes.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases the browser resources held by the renderer.
	Close() error
}

// RenderError wraps a rendering failure with a stable code.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Rendering failure codes.
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeBinaryNotFound   = "BINARY_NOT_FOUND"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

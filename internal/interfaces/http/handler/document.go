package handler

import (
	"io"
	"net/http"
	"regexp"

	printingapp "github.com/dms/backend/internal/application/printing"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// DocumentHandler handles document rendering API endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *printingapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *printingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

var (
	archiveYearPattern  = regexp.MustCompile(`^\d{4}$`)
	archiveMonthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	// Archived files are named <doctype>-<uuid>.pdf by the storage layer
	archiveFilePattern = regexp.MustCompile(`^[a-z]+-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.pdf$`)
)

// Render godoc
// @ID           renderDocument
// @Summary      Render a document as PDF
// @Description  Renders a contract or invoice as PDF, archives the file and returns the PDF bytes for download
// @Tags         documents
// @Accept       json
// @Produce      application/pdf
// @Param        request body printingapp.RenderDocumentRequest true "Render request"
// @Success      200 {file} binary "PDF file"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/render [post]
func (h *DocumentHandler) Render(c *gin.Context) {
	var req printingapp.RenderDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.documentService.Render(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Header("X-Document-URL", result.URL)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Preview godoc
// @ID           previewDocument
// @Summary      Preview a document as HTML
// @Description  Renders the document template to HTML without producing a PDF
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body printingapp.RenderDocumentRequest true "Preview request"
// @Success      200 {object} APIResponse[printingapp.PreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/preview [post]
func (h *DocumentHandler) Preview(c *gin.Context) {
	var req printingapp.RenderDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.documentService.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListTemplates godoc
// @ID           listDocumentTemplates
// @Summary      List print templates
// @Tags         documents
// @Produce      json
// @Success      200 {object} APIResponse[[]printingapp.TemplateResponse]
// @Security     BearerAuth
// @Router       /documents/templates [get]
func (h *DocumentHandler) ListTemplates(c *gin.Context) {
	h.Success(c, h.documentService.ListTemplates())
}

// GetDocumentTypes godoc
// @ID           getDocumentTypes
// @Summary      List renderable document types
// @Tags         documents
// @Produce      json
// @Success      200 {object} APIResponse[[]printingapp.DocumentTypeResponse]
// @Security     BearerAuth
// @Router       /documents/types [get]
func (h *DocumentHandler) GetDocumentTypes(c *gin.Context) {
	h.Success(c, h.documentService.GetDocumentTypes())
}

// ServeArchived godoc
// @ID           serveArchivedDocument
// @Summary      Serve an archived PDF
// @Description  Streams a previously rendered PDF from the archive
// @Tags         documents
// @Produce      application/pdf
// @Param        year path string true "Year"
// @Param        month path string true "Month"
// @Param        filename path string true "Filename"
// @Success      200 {file} binary "PDF file"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{year}/{month}/{filename} [get]
func (h *DocumentHandler) ServeArchived(c *gin.Context) {
	year := c.Param("year")
	month := c.Param("month")
	filename := c.Param("filename")

	// Strict path component validation keeps traversal attempts out of the archive
	if !archiveYearPattern.MatchString(year) {
		h.BadRequest(c, "Invalid year format")
		return
	}
	if !archiveMonthPattern.MatchString(month) {
		h.BadRequest(c, "Invalid month format")
		return
	}
	if !archiveFilePattern.MatchString(filename) {
		h.BadRequest(c, "Invalid filename format")
		return
	}

	path := year + "/" + month + "/" + filename

	file, err := h.documentService.OpenArchived(c.Request.Context(), path)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", printingapp.PDFContentType)
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)

	if _, err := io.Copy(c.Writer, file); err != nil {
		h.InternalError(c, "Failed to serve PDF file")
		return
	}
}

// DocumentRoutes creates the route group for document endpoints
func DocumentRoutes(handler *DocumentHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("documents", "/documents")
	group.Use(authMiddleware)

	group.POST("/render", handler.Render)
	group.POST("/preview", handler.Preview)
	group.GET("/templates", handler.ListTemplates)
	group.GET("/types", handler.GetDocumentTypes)
	group.GET("/:year/:month/:filename", handler.ServeArchived)

	return group
}

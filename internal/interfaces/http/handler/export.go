package handler

import (
	"net/http"
	"strings"

	feedapp "github.com/dms/backend/internal/application/feed"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExportHandler handles marketplace feed export endpoints
type ExportHandler struct {
	BaseHandler
	exportService *feedapp.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *feedapp.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// ListSchemas godoc
// @ID           listExportSchemas
// @Summary      List available export schemas
// @Tags         exports
// @Produce      json
// @Success      200 {object} APIResponse[[]string]
// @Security     BearerAuth
// @Router       /exports/schemas [get]
func (h *ExportHandler) ListSchemas(c *gin.Context) {
	h.Success(c, h.exportService.Schemas())
}

// Download godoc
// @ID           downloadExport
// @Summary      Download a marketplace feed
// @Description  Streams a CSV feed of active vehicles for the given schema. An optional ids parameter restricts the export to specific vehicles.
// @Tags         exports
// @Produce      text/csv
// @Param        schema path string true "Schema code" Enums(mobile, autoscout)
// @Param        ids query string false "Comma-separated vehicle IDs"
// @Success      200 {file} binary "CSV feed"
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exports/{schema} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	schema := c.Param("schema")

	var ids []uuid.UUID
	if raw := c.Query("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				h.BadRequest(c, "Invalid vehicle ID in ids parameter")
				return
			}
			ids = append(ids, id)
		}
	}

	export, err := h.exportService.ExportVehicles(c.Request.Context(), schema, ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// ExportRoutes creates the route group for feed export endpoints
func ExportRoutes(handler *ExportHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("exports", "/exports")
	group.Use(authMiddleware)

	group.GET("/schemas", handler.ListSchemas)
	group.GET("/:schema", handler.Download)

	return group
}

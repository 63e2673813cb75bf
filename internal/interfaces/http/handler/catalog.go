package handler

import (
	catalogapp "github.com/dms/backend/internal/application/catalog"
	partnerapp "github.com/dms/backend/internal/application/partner"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// CatalogHandler handles the public vehicle catalog endpoints.
// These routes are unauthenticated and expose only sales-side data.
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
	leadService    *partnerapp.LeadService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.CatalogService, leadService *partnerapp.LeadService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		leadService:    leadService,
	}
}

// ListVehicles godoc
// @ID           listCatalogVehicles
// @Summary      List published vehicles
// @Description  Paginated public listing of ACTIVE vehicles. Responses are served from cache when available.
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[catalogapp.CatalogListResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /catalog/vehicles [get]
func (h *CatalogHandler) ListVehicles(c *gin.Context) {
	var req catalogapp.ListCatalogRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.ListVehicles(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetVehicle godoc
// @ID           getCatalogVehicle
// @Summary      Get a published vehicle by slug
// @Description  Returns the public detail view of an ACTIVE or RESERVED vehicle
// @Tags         catalog
// @Produce      json
// @Param        slug path string true "Vehicle slug"
// @Success      200 {object} APIResponse[catalogapp.CatalogVehicleResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/vehicles/{slug} [get]
func (h *CatalogHandler) GetVehicle(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		h.BadRequest(c, "Vehicle slug is required")
		return
	}

	result, err := h.catalogService.GetVehicle(c.Request.Context(), slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CreateInquiry godoc
// @ID           createCatalogInquiry
// @Summary      Submit a vehicle inquiry
// @Description  Creates a lead from a public catalog inquiry. Requires at least an email or a phone number.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateLeadRequest true "Inquiry data"
// @Success      201 {object} APIResponse[partnerapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /catalog/inquiries [post]
func (h *CatalogHandler) CreateInquiry(c *gin.Context) {
	var req partnerapp.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.leadService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// CatalogRoutes creates the route group for public catalog endpoints.
// The rate limiter guards the unauthenticated inquiry intake.
func CatalogRoutes(handler *CatalogHandler, rateLimiter gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("catalog", "/catalog")

	group.GET("/vehicles", handler.ListVehicles)
	group.GET("/vehicles/:slug", handler.GetVehicle)
	if rateLimiter != nil {
		group.POST("/inquiries", rateLimiter, handler.CreateInquiry)
	} else {
		group.POST("/inquiries", handler.CreateInquiry)
	}

	return group
}

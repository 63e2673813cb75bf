package handler

import (
	"context"

	partnerapp "github.com/dms/backend/internal/application/partner"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadHandler handles lead API endpoints
type LeadHandler struct {
	BaseHandler
	leadService *partnerapp.LeadService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *partnerapp.LeadService) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
	}
}

// Get godoc
// @ID           getLead
// @Summary      Get lead by ID
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.LeadResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id} [get]
func (h *LeadHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	result, err := h.leadService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listLeads
// @Summary      List leads
// @Tags         leads
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "Filter by status" Enums(NEW, CONTACTED, COMPLETED, DISCARDED)
// @Success      200 {object} APIResponse[[]partnerapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	req := partnerapp.LeadListFilter{
		Page:     1,
		PageSize: 20,
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	items, total, err := h.leadService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// MarkContacted godoc
// @ID           markLeadContacted
// @Summary      Mark a lead as contacted
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.LeadResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/contact [post]
func (h *LeadHandler) MarkContacted(c *gin.Context) {
	h.transition(c, h.leadService.MarkContacted)
}

// Discard godoc
// @ID           discardLead
// @Summary      Discard a lead
// @Description  Close a lead without converting it to a customer
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.LeadResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/discard [post]
func (h *LeadHandler) Discard(c *gin.Context) {
	h.transition(c, h.leadService.Discard)
}

// Convert godoc
// @ID           convertLead
// @Summary      Convert a lead into a customer
// @Description  Creates a customer from the lead contact data and closes the lead. Converting an already converted lead returns the existing customer.
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.ConvertLeadResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/convert [post]
func (h *LeadHandler) Convert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	result, err := h.leadService.Convert(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *LeadHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*partnerapp.LeadResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	result, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// LeadRoutes creates the route group for back-office lead endpoints
func LeadRoutes(handler *LeadHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("leads", "/leads")
	group.Use(authMiddleware)

	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("/:id/contact", handler.MarkContacted)
	group.POST("/:id/discard", handler.Discard)
	group.POST("/:id/convert", handler.Convert)

	return group
}

package handler

import (
	"context"

	tradeapp "github.com/dms/backend/internal/application/trade"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles contract API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *tradeapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *tradeapp.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
	}
}

// Create godoc
// @ID           createContract
// @Summary      Create a contract
// @Description  Create a purchase or acquisition contract in DRAFT status
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateContractRequest true "Contract data"
// @Success      201 {object} APIResponse[tradeapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req tradeapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.contractService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get godoc
// @ID           getContract
// @Summary      Get contract by ID
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.ContractResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id} [get]
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	result, err := h.contractService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listContracts
// @Summary      List contracts
// @Tags         contracts
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "Filter by status" Enums(DRAFT, ACTIVE, COMPLETED, CANCELLED)
// @Param        type query string false "Filter by type" Enums(PURCHASE, ACQUISITION)
// @Param        customer_id query string false "Filter by customer" format(uuid)
// @Success      200 {object} APIResponse[[]tradeapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	req := tradeapp.ContractListFilter{
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

	items, total, err := h.contractService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateContract
// @Summary      Update a draft contract
// @Description  Update pricing, deposit, delivery date or notes of a DRAFT contract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body tradeapp.UpdateContractRequest true "Fields to update"
// @Success      200 {object} APIResponse[tradeapp.ContractResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req tradeapp.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.contractService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Activate godoc
// @ID           activateContract
// @Summary      Activate a contract
// @Description  Activating a purchase contract reserves the vehicle and promotes the customer to buyer in the same transaction
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.ContractResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/activate [post]
func (h *ContractHandler) Activate(c *gin.Context) {
	h.transition(c, h.contractService.Activate)
}

// Complete godoc
// @ID           completeContract
// @Summary      Complete a contract
// @Description  Completing a purchase contract marks the vehicle as sold
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.ContractResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/complete [post]
func (h *ContractHandler) Complete(c *gin.Context) {
	h.transition(c, h.contractService.Complete)
}

// Cancel godoc
// @ID           cancelContract
// @Summary      Cancel a contract
// @Description  Cancelling an active purchase contract releases the reserved vehicle back to ACTIVE
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body tradeapp.CancelContractRequest false "Cancellation reason"
// @Success      200 {object} APIResponse[tradeapp.ContractResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /contracts/{id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req tradeapp.CancelContractRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.contractService.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *ContractHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*tradeapp.ContractResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	result, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ContractRoutes creates the route group for contract endpoints
func ContractRoutes(handler *ContractHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("contracts", "/contracts")
	group.Use(authMiddleware)

	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.POST("/:id/activate", handler.Activate)
	group.POST("/:id/complete", handler.Complete)
	group.POST("/:id/cancel", handler.Cancel)

	return group
}

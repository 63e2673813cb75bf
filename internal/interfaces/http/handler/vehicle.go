package handler

import (
	"context"

	inventoryapp "github.com/dms/backend/internal/application/inventory"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VehicleHandler handles vehicle stock API endpoints
type VehicleHandler struct {
	BaseHandler
	vehicleService *inventoryapp.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler
func NewVehicleHandler(vehicleService *inventoryapp.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
	}
}

// Create godoc
// @ID           createVehicle
// @Summary      Create a vehicle
// @Description  Create a new vehicle in DRAFT status with an allocated stock number
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateVehicleRequest true "Vehicle data"
// @Success      201 {object} APIResponse[inventoryapp.VehicleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vehicles [post]
func (h *VehicleHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.vehicleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get godoc
// @ID           getVehicle
// @Summary      Get vehicle by ID
// @Tags         vehicles
// @Produce      json
// @Param        id path string true "Vehicle ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.VehicleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vehicles/{id} [get]
func (h *VehicleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vehicle ID format")
		return
	}

	result, err := h.vehicleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listVehicles
// @Summary      List vehicles
// @Description  Paginated vehicle list with status, make and text search filters
// @Tags         vehicles
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "Filter by status" Enums(DRAFT, ACTIVE, RESERVED, SOLD)
// @Param        make query string false "Filter by make"
// @Param        search query string false "Search in make, model, VIN and slug"
// @Success      200 {object} APIResponse[[]inventoryapp.VehicleListResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vehicles [get]
func (h *VehicleHandler) List(c *gin.Context) {
	req := inventoryapp.VehicleListFilter{
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

	items, total, err := h.vehicleService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateVehicle
// @Summary      Update vehicle listing data
// @Description  Partial update of listing fields. Price changes on RESERVED or SOLD vehicles are rejected.
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        id path string true "Vehicle ID" format(uuid)
// @Param        request body inventoryapp.UpdateVehicleRequest true "Fields to update"
// @Success      200 {object} APIResponse[inventoryapp.VehicleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vehicles/{id} [put]
func (h *VehicleHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vehicle ID format")
		return
	}

	var req inventoryapp.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.vehicleService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Activate godoc
// @ID           activateVehicle
// @Summary      Publish a vehicle
// @Description  Move a DRAFT vehicle to ACTIVE so it appears in the public catalog
// @Tags         vehicles
// @Produce      json
// @Param        id path string true "Vehicle ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.VehicleResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vehicles/{id}/activate [post]
func (h *VehicleHandler) Activate(c *gin.Context) {
	h.transition(c, h.vehicleService.Activate)
}

// Withdraw godoc
// @ID           withdrawVehicle
// @Summary      Withdraw a vehicle
// @Description  Move an ACTIVE vehicle back to DRAFT, removing it from the public catalog
// @Tags         vehicles
// @Produce      json
// @Param        id path string true "Vehicle ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.VehicleResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vehicles/{id}/withdraw [post]
func (h *VehicleHandler) Withdraw(c *gin.Context) {
	h.transition(c, h.vehicleService.Withdraw)
}

// Delete godoc
// @ID           deleteVehicle
// @Summary      Delete a vehicle
// @Description  Delete a vehicle that has no contract referencing it
// @Tags         vehicles
// @Param        id path string true "Vehicle ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vehicle ID format")
		return
	}

	if err := h.vehicleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *VehicleHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*inventoryapp.VehicleResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vehicle ID format")
		return
	}

	result, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// VehicleRoutes creates the route group for vehicle endpoints
func VehicleRoutes(handler *VehicleHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("vehicles", "/vehicles")
	group.Use(authMiddleware)

	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/activate", handler.Activate)
	group.POST("/:id/withdraw", handler.Withdraw)

	return group
}

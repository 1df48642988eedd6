package handler

import (
	"net/http"

	"flourmill/internal/middleware"
	"flourmill/internal/service"
	"flourmill/pkg/pagination"
	"flourmill/pkg/response"

	"github.com/gin-gonic/gin"
)

type WarehouseHandler struct {
	warehouseService service.WarehouseService
}

func NewWarehouseHandler(warehouseService service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

func (h *WarehouseHandler) RegisterRoutes(router *gin.RouterGroup) {
	warehouses := router.Group("/api/warehouses")
	{
		warehouses.GET("", middleware.RequirePermission("warehouse.read"), h.ListWarehouses)
		warehouses.GET("/:id", middleware.RequirePermission("warehouse.read"), h.GetWarehouseByID)
		warehouses.POST("", middleware.RequirePermission("warehouse.create"), h.CreateWarehouse)
		warehouses.PUT("/:id", middleware.RequirePermission("warehouse.update"), h.UpdateWarehouse)
		warehouses.DELETE("/:id", middleware.RequirePermission("warehouse.delete"), h.DeleteWarehouse)
		warehouses.POST("/:id/stock", middleware.RequirePermission("inventory.update"), h.AdjustStock)
		warehouses.GET("/:id/movements", middleware.RequirePermission("warehouse.read"), h.ListMovements)
	}
}

// CreateWarehouse handles POST /api/warehouses
// @Summary      Create warehouse
// @Description  Registers a new flour storage warehouse
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateWarehouseRequest  true  "Create Warehouse Payload"
// @Success      201      {object}  response.Response{data=service.WarehouseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req service.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	warehouse, err := h.warehouseService.CreateWarehouse(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, warehouse))
}

// ListWarehouses handles GET /api/warehouses
// @Summary      List warehouses
// @Tags         warehouses
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) ListWarehouses(c *gin.Context) {
	params := pagination.Parse(c)

	warehouses, total, err := h.warehouseService.ListWarehouses(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch warehouses"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, warehouses, total, params.Page, params.Limit))
}

// GetWarehouseByID handles GET /api/warehouses/:id
// @Summary      Get warehouse by ID
// @Tags         warehouses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Warehouse ID"
// @Success      200  {object}  response.Response{data=service.WarehouseResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) GetWarehouseByID(c *gin.Context) {
	warehouse, err := h.warehouseService.GetWarehouseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, warehouse))
}

// UpdateWarehouse handles PUT /api/warehouses/:id
// @Summary      Update warehouse
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Warehouse ID"
// @Param        payload  body      service.UpdateWarehouseRequest  true  "Update Warehouse Payload"
// @Success      200      {object}  response.Response{data=service.WarehouseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/warehouses/{id} [put]
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	var req service.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	warehouse, err := h.warehouseService.UpdateWarehouse(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, warehouse))
}

// DeleteWarehouse handles DELETE /api/warehouses/:id
// @Summary      Delete warehouse
// @Description  Removes an empty warehouse. Warehouses still holding stock cannot be deleted.
// @Tags         warehouses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Warehouse ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/warehouses/{id} [delete]
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	if err := h.warehouseService.DeleteWarehouse(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Warehouse deleted successfully"))
}

// AdjustStock handles POST /api/warehouses/:id/stock
// @Summary      Adjust warehouse stock
// @Description  Records a manual stock movement (in or out) against a warehouse
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Warehouse ID"
// @Param        payload  body      service.AdjustStockRequest  true  "Stock Adjustment Payload"
// @Success      200      {object}  response.Response{data=service.WarehouseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/warehouses/{id}/stock [post]
func (h *WarehouseHandler) AdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	warehouse, err := h.warehouseService.AdjustStock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, warehouse))
}

// ListMovements handles GET /api/warehouses/:id/movements
// @Summary      List stock movements
// @Description  Retrieves the stock movement ledger for a warehouse, newest first
// @Tags         warehouses
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Warehouse ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/warehouses/{id}/movements [get]
func (h *WarehouseHandler) ListMovements(c *gin.Context) {
	params := pagination.Parse(c)

	movements, total, err := h.warehouseService.ListMovements(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch stock movements"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, movements, total, params.Page, params.Limit))
}

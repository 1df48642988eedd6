package handler

import (
	"net/http"

	"flourmill/internal/middleware"
	"flourmill/internal/service"
	"flourmill/pkg/pagination"
	"flourmill/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchases")
	{
		purchases.GET("", middleware.RequirePermission("purchase.read"), h.ListPurchases)
		purchases.GET("/summary", middleware.RequirePermission("reports.view"), h.Summary)
		purchases.GET("/:id", middleware.RequirePermission("purchase.read"), h.GetPurchaseByID)
		purchases.POST("", middleware.RequirePermission("purchase.create"), h.CreatePurchase)
		purchases.PUT("/:id", middleware.RequirePermission("purchase.update"), h.UpdatePurchase)
		purchases.POST("/:id/payments", middleware.RequirePermission("purchase.update"), h.RecordPayment)
		purchases.DELETE("/:id", middleware.RequirePermission("purchase.delete"), h.DeletePurchase)
	}
}

// requestingUserID pulls the authenticated user's UUID out of the gin context.
func requestingUserID(c *gin.Context) *uuid.UUID {
	raw, exists := c.Get("userID")
	if !exists {
		return nil
	}
	idStr, ok := raw.(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	return &id
}

// CreatePurchase handles POST /api/purchases
// @Summary      Create purchase order
// @Description  Creates a wheat purchase order, receives the stock into the target warehouse
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePurchaseRequest  true  "Create Purchase Payload"
// @Success      201      {object}  response.Response{data=model.Purchase}
// @Failure      400      {object}  response.Response
// @Router       /api/purchases [post]
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), requestingUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// ListPurchases handles GET /api/purchases
// @Summary      List purchase orders
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Number of items per page (default 20)"
// @Param        payment_status  query     string  false  "Filter by payment status (PENDING, PARTIAL, PAID)"
// @Success      200             {object}  response.Response{data=object}
// @Failure      500             {object}  response.Response
// @Router       /api/purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	params := pagination.Parse(c)
	paymentStatus := c.Query("payment_status")

	purchases, total, err := h.purchaseService.ListPurchases(c.Request.Context(), params.Page, params.Limit, paymentStatus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch purchases"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, purchases, total, params.Page, params.Limit))
}

// GetPurchaseByID handles GET /api/purchases/:id
// @Summary      Get purchase order by ID
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase ID"
// @Success      200  {object}  response.Response{data=model.Purchase}
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetPurchaseByID(c *gin.Context) {
	purchase, err := h.purchaseService.GetPurchaseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// UpdatePurchase handles PUT /api/purchases/:id
// @Summary      Update purchase order
// @Description  Rewrites the line items of a purchase that has not been fully paid
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Purchase ID"
// @Param        payload  body      service.UpdatePurchaseRequest  true  "Update Purchase Payload"
// @Success      200      {object}  response.Response{data=model.Purchase}
// @Failure      400      {object}  response.Response
// @Router       /api/purchases/{id} [put]
func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	var req service.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	purchase, err := h.purchaseService.UpdatePurchase(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// RecordPayment handles POST /api/purchases/:id/payments
// @Summary      Record a payment
// @Description  Applies a payment against a purchase order and recomputes its payment status
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Purchase ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=model.Purchase}
// @Failure      400      {object}  response.Response
// @Router       /api/purchases/{id}/payments [post]
func (h *PurchaseHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// DeletePurchase handles DELETE /api/purchases/:id
// @Summary      Delete purchase order
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/purchases/{id} [delete]
func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	if err := h.purchaseService.DeletePurchase(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Purchase deleted successfully"))
}

// Summary handles GET /api/purchases/summary
// @Summary      Purchase totals report
// @Description  Aggregated purchase totals overall, by payment status, and by supplier
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.PurchaseSummary}
// @Failure      500  {object}  response.Response
// @Router       /api/purchases/summary [get]
func (h *PurchaseHandler) Summary(c *gin.Context) {
	summary, err := h.purchaseService.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to build purchase summary"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

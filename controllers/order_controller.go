package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amirfaris/storefront-backend/services"
)

// OrderController exposes the admin fulfillment endpoints.
type OrderController struct {
	orderService *services.OrderService
	logger       *zap.Logger
}

// NewOrderController creates a new OrderController.
func NewOrderController(svc *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: svc, logger: logger}
}

// ListOrders handles GET /admin/orders
func (oc *OrderController) ListOrders(c *gin.Context) {
	page, limit := parsePaginationParams(c)
	status := c.Query("status")

	resp, svcErr := oc.orderService.ListOrders(c.Request.Context(), status, page, limit)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetOrder handles GET /admin/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, svcErr := oc.orderService.GetOrder(c.Request.Context(), orderID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /admin/orders. The request binds only the
// allow-listed fields; any extra payload fields never reach the update.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.UpdateOrderStatus(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, order)
}

// parsePaginationParams extracts and validates page/limit query params.
func parsePaginationParams(c *gin.Context) (int, int) {
	const maxLimit = 100
	pageInt, limitInt := 1, 10
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		if l > maxLimit {
			l = maxLimit
		}
		limitInt = l
	}
	return pageInt, limitInt
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shutterpress/shutterpress-api/services"
)

// UpdateOrderStatusRequest represents the request body for an order status update
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentStatusRequest represents the request body for forcing an
// order's payment status
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// AdminListOrders handles GET /api/v1/admin/orders - lists all orders with
// filters, search and aggregate stats
func AdminListOrders(c *gin.Context) {
	page, limit := parsePageParams(c)
	filters := services.AdminOrderFilters{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		ServiceType:   c.Query("service_type"),
		Search:        c.Query("search"),
	}

	orderService := newOrderService()
	orders, pagination, err := orderService.ListAllOrders(filters, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	stats, err := orderService.GetOrderStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       orders,
		"pagination": pagination,
		"stats":      stats,
	})
}

// AdminGetOrderStats handles GET /api/v1/admin/orders/stats
func AdminGetOrderStats(c *gin.Context) {
	stats, err := newOrderService().GetOrderStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// AdminGetOrder handles GET /api/v1/admin/orders/:id
func AdminGetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := newOrderService().GetOrder(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// AdminUpdateOrderStatus handles PATCH /api/v1/admin/orders/:id/status
func AdminUpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := newOrderService().UpdateStatus(orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// AdminUpdatePaymentStatus handles PATCH /api/v1/admin/orders/:id/payment-status
func AdminUpdatePaymentStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := newPaymentService().AdminSetPaymentStatus(orderID, req.PaymentStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// AdminUpdateOrderFields handles PATCH /api/v1/admin/orders/:id - applies an
// allow-listed subset of field updates
func AdminUpdateOrderFields(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := newOrderService().UpdateOrderFields(orderID, fields)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// AdminDeleteOrder handles DELETE /api/v1/admin/orders/:id - removes an
// order and its linked payments
func AdminDeleteOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := newOrderService().DeleteOrder(orderID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shutterpress/shutterpress-api/models"
	"github.com/shutterpress/shutterpress-api/services"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	ServiceType     string              `json:"service_type" binding:"required"`
	ServiceName     string              `json:"service_name"`
	SelectedOptions map[string]string   `json:"selected_options"`
	OrderDetails    models.OrderDetails `json:"order_details" binding:"required"`
	InputMethod     string              `json:"input_method"`
	Files           []models.OrderFile  `json:"files"`
	TotalPrice      *float64            `json:"total_price"`
}

// CreateOrder handles POST /api/v1/orders - creates a new order
func CreateOrder(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
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

	orderService := newOrderService()

	// The storefront sends the quoted total; compute it server-side
	// when the client leaves it out.
	totalPrice := 0.0
	if req.TotalPrice != nil {
		totalPrice = *req.TotalPrice
	} else {
		computed, err := orderService.Pricing().ComputePrice(req.ServiceType, req.SelectedOptions)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		totalPrice = computed
	}

	order, err := orderService.CreateOrder(services.CreateOrderInput{
		CustomerID:      user.ID,
		ServiceType:     req.ServiceType,
		ServiceName:     req.ServiceName,
		SelectedOptions: req.SelectedOptions,
		OrderDetails:    req.OrderDetails,
		InputMethod:     req.InputMethod,
		Files:           req.Files,
		TotalPrice:      totalPrice,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists the customer's orders
func ListOrders(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	page, limit := parsePageParams(c)
	filters := services.OrderFilters{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
	}

	orders, pagination, err := newOrderService().ListOrdersForCustomer(user.ID, filters, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       orders,
		"pagination": pagination,
	})
}

// GetOrder handles GET /api/v1/orders/:id - fetches one of the customer's orders
func GetOrder(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := newOrderService().GetOrderForCustomer(orderID, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListPendingPayment handles GET /api/v1/orders/pending-payment - lists
// orders still inside their pay-later window, annotated with time remaining
func ListPendingPayment(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	page, limit := parsePageParams(c)
	orders, pagination, err := newOrderService().ListPendingPayable(user.ID, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       orders,
		"pagination": pagination,
	})
}

// ExtendPayLater handles POST /api/v1/orders/:id/pay-later - restarts the
// pay-later window on a pending order
func ExtendPayLater(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := newOrderService().ExtendForLater(orderID, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ResumeOrder handles POST /api/v1/orders/:id/resume - readies a pending
// order for another payment attempt, renewing a lapsed window
func ResumeOrder(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := newOrderService().PrepareResume(orderID, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

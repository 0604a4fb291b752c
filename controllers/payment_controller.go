package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shutterpress/shutterpress-api/services"
)

// InitializePaymentRequest represents the request body for opening a checkout
type InitializePaymentRequest struct {
	OrderID  uint   `json:"order_id" binding:"required"`
	Scenario string `json:"scenario"`
}

// VerifyPaymentRequest represents the request body for verifying a transaction
type VerifyPaymentRequest struct {
	TxRef    string `json:"tx_ref" binding:"required"`
	Scenario string `json:"scenario"`
}

// InitializePayment handles POST /api/v1/payments/initialize - opens a
// checkout session for one of the customer's orders
func InitializePayment(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	var req InitializePaymentRequest
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

	if req.Scenario == "" {
		req.Scenario = services.ScenarioTestSuccess
	}

	result, err := newPaymentService().Initialize(req.OrderID, user.ID, req.Scenario)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// VerifyPayment handles POST /api/v1/payments/verify - settles a payment
// attempt and reconciles the order from the outcome
func VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
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

	if req.Scenario == "" {
		req.Scenario = services.ScenarioSuccess
	}

	result, err := newPaymentService().Verify(req.TxRef, req.Scenario)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetPaymentStatus handles GET /api/v1/payments/order/:id - returns the most
// recent payment attempt for one of the customer's orders
func GetPaymentStatus(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := newPaymentService().GetStatus(orderID, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payment,
	})
}

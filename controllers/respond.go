package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shutterpress/shutterpress-api/config"
	"github.com/shutterpress/shutterpress-api/middleware"
	"github.com/shutterpress/shutterpress-api/models"
	"github.com/shutterpress/shutterpress-api/services"
)

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service sentinel errors onto the error envelope
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrAlreadyPaid):
		respondError(c, http.StatusConflict, "ALREADY_PAID", err.Error())
	case errors.Is(err, services.ErrInvalidState):
		respondError(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, services.ErrGatewayDeclined):
		respondError(c, http.StatusPaymentRequired, "PAYMENT_DECLINED", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Operation failed")
	}
}

// requireCurrentUser resolves the authenticated principal to a local user
// row, writing the error envelope itself when that fails.
func requireCurrentUser(c *gin.Context) (*models.User, bool) {
	user, err := middleware.CurrentUser(c, config.GetDB())
	if err != nil {
		var authErr *middleware.AuthError
		if errors.As(err, &authErr) {
			status := http.StatusUnauthorized
			if authErr.Code == "USER_NOT_FOUND" {
				status = http.StatusNotFound
			}
			respondError(c, status, authErr.Code, authErr.Message)
		} else {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user profile")
		}
		return nil, false
	}
	return user, true
}

// parseIDParam parses a numeric URL parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

// parsePageParams reads page/limit query parameters with defaults
func parsePageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}

// newOrderService builds the order service from the running configuration
func newOrderService() *services.OrderService {
	cfg := config.GetConfig()
	pricing := services.DefaultPricingConfig()
	pricing.Strict = cfg.StrictPricing
	return services.NewOrderService(config.GetDB(), pricing, cfg.PayLaterWindow)
}

// newPaymentService builds the payment service with the sandbox gateway
func newPaymentService() *services.PaymentService {
	cfg := config.GetConfig()
	return services.NewPaymentService(config.GetDB(), services.NewSandboxGateway(), cfg.DefaultCurrency)
}

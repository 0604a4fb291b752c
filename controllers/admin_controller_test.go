package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/shutterpress/shutterpress-api/config"
	"github.com/shutterpress/shutterpress-api/middleware"
	"github.com/shutterpress/shutterpress-api/models"
)

// setupAdminRouter mounts the admin routes behind the real admin gate so the
// role check is exercised alongside each handler.
func setupAdminRouter(auth0ID string) *gin.Engine {
	router := setupTestRouter()
	admin := router.Group("/api/v1/admin")
	admin.Use(mockAuthMiddleware(auth0ID))
	admin.Use(middleware.RequireAdmin(config.GetDB))
	{
		admin.GET("/orders", AdminListOrders)
		admin.GET("/orders/stats", AdminGetOrderStats)
		admin.GET("/orders/:id", AdminGetOrder)
		admin.PATCH("/orders/:id", AdminUpdateOrderFields)
		admin.PATCH("/orders/:id/status", AdminUpdateOrderStatus)
		admin.PATCH("/orders/:id/payment-status", AdminUpdatePaymentStatus)
		admin.DELETE("/orders/:id", AdminDeleteOrder)
	}
	return router
}

func seedAdminOrders(t *testing.T, db *gorm.DB, customerID uint) []models.Order {
	expiry := time.Now().Add(24 * time.Hour)
	orders := []models.Order{
		{
			CustomerID:    customerID,
			ServiceType:   models.ServiceTypePrinting,
			ServiceName:   "Flyer Printing",
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			TotalPrice:    60,
			PaymentExpiry: &expiry,
			OrderDetails: models.OrderDetails{
				CustomerName: "Morgan Rivera",
				Email:        "morgan@example.com",
				Address:      "4 Print Row",
			},
		},
		{
			CustomerID:    customerID,
			ServiceType:   models.ServiceTypePhoto,
			ServiceName:   "Event Shoot",
			Status:        models.OrderStatusInProgress,
			PaymentStatus: models.PaymentStatusPaid,
			TotalPrice:    250,
			OrderDetails: models.OrderDetails{
				CustomerName: "Alex Chen",
				Email:        "alex@example.com",
				Address:      "9 Gallery Way",
			},
		},
	}
	for i := range orders {
		if err := db.Create(&orders[i]).Error; err != nil {
			t.Fatalf("Failed to create order: %v", err)
		}
	}
	return orders
}

func TestAdminListOrders(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-list", "adminlist@example.com", "admin")
	seedAdminOrders(t, db, admin.ID)
	router := setupAdminRouter("auth0|admin-list")

	w, response := performJSON(t, router, "GET", "/api/v1/admin/orders", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)

	stats := response["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["pending_count"])
	assert.Equal(t, float64(1), stats["paid_count"])
	assert.Equal(t, 250.0, stats["total_revenue"])
}

func TestAdminListOrdersSearch(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-search", "adminsearch@example.com", "admin")
	seedAdminOrders(t, db, admin.ID)
	router := setupAdminRouter("auth0|admin-search")

	w, response := performJSON(t, router, "GET", "/api/v1/admin/orders?search=Rivera", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	entry := data[0].(map[string]interface{})
	details := entry["order_details"].(map[string]interface{})
	assert.Equal(t, "Morgan Rivera", details["customer_name"])
}

func TestAdminRoutesForbiddenForCustomer(t *testing.T) {
	db := setupControllerTestDB(t)
	createUser(t, db, "auth0|admin-nope", "nope@example.com", "customer")
	router := setupAdminRouter("auth0|admin-nope")

	w, response := performJSON(t, router, "GET", "/api/v1/admin/orders", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(response))
}

func TestAdminGetOrderStats(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-stats", "adminstats@example.com", "admin")
	seedAdminOrders(t, db, admin.ID)
	router := setupAdminRouter("auth0|admin-stats")

	w, response := performJSON(t, router, "GET", "/api/v1/admin/orders/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["pending_count"])
	assert.Equal(t, 250.0, data["total_revenue"])
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-status", "adminstatus@example.com", "admin")
	orders := seedAdminOrders(t, db, admin.ID)
	router := setupAdminRouter("auth0|admin-status")

	w, response := performJSON(t, router, "PATCH",
		fmt.Sprintf("/api/v1/admin/orders/%d/status", orders[0].ID),
		map[string]interface{}{"status": "completed"})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
}

func TestAdminUpdateOrderStatusInvalid(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-badstatus", "badstatus@example.com", "admin")
	orders := seedAdminOrders(t, db, admin.ID)
	router := setupAdminRouter("auth0|admin-badstatus")

	w, response := performJSON(t, router, "PATCH",
		fmt.Sprintf("/api/v1/admin/orders/%d/status", orders[0].ID),
		map[string]interface{}{"status": "shipped"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(response))
}

func TestAdminUpdatePaymentStatus(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-paystatus", "paystatus@example.com", "admin")
	orders := seedAdminOrders(t, db, admin.ID)
	router := setupAdminRouter("auth0|admin-paystatus")

	w, response := performJSON(t, router, "PATCH",
		fmt.Sprintf("/api/v1/admin/orders/%d/payment-status", orders[0].ID),
		map[string]interface{}{"payment_status": "paid"})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "paid", data["payment_status"])

	// Marking an order paid with no linked attempt synthesizes a manual one.
	var payment models.Payment
	if err := db.Where("order_id = ?", orders[0].ID).First(&payment).Error; err != nil {
		t.Fatalf("Manual payment record should exist: %v", err)
	}
	assert.Equal(t, models.PaymentAttemptCompleted, payment.Status)
	assert.Equal(t, "manual", payment.PaymentMethod)
}

func TestAdminUpdateOrderFields(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-fields", "fields@example.com", "admin")
	orders := seedAdminOrders(t, db, admin.ID)
	router := setupAdminRouter("auth0|admin-fields")

	w, response := performJSON(t, router, "PATCH",
		fmt.Sprintf("/api/v1/admin/orders/%d", orders[0].ID),
		map[string]interface{}{"service_name": "Rush Flyer Printing"})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Rush Flyer Printing", data["service_name"])
}

func TestAdminUpdateOrderFieldsRejectsUnknown(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-badfields", "badfields@example.com", "admin")
	orders := seedAdminOrders(t, db, admin.ID)
	router := setupAdminRouter("auth0|admin-badfields")

	w, response := performJSON(t, router, "PATCH",
		fmt.Sprintf("/api/v1/admin/orders/%d", orders[0].ID),
		map[string]interface{}{"total_price": 1.0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(response))
}

func TestAdminDeleteOrder(t *testing.T) {
	db := setupControllerTestDB(t)
	admin := createUser(t, db, "auth0|admin-delete", "delete@example.com", "admin")
	orders := seedAdminOrders(t, db, admin.ID)
	payment := models.Payment{
		OrderID:    orders[0].ID,
		CustomerID: admin.ID,
		Amount:     60,
		TxRef:      "SPS-delete-1",
		Status:     models.PaymentAttemptPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("Failed to create payment: %v", err)
	}
	router := setupAdminRouter("auth0|admin-delete")

	w, response := performJSON(t, router, "DELETE",
		fmt.Sprintf("/api/v1/admin/orders/%d", orders[0].ID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, response["success"].(bool))

	var orderCount, paymentCount int64
	db.Model(&models.Order{}).Where("id = ?", orders[0].ID).Count(&orderCount)
	db.Model(&models.Payment{}).Where("order_id = ?", orders[0].ID).Count(&paymentCount)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, int64(0), paymentCount)
}

func TestAdminGetOrderNotFound(t *testing.T) {
	db := setupControllerTestDB(t)
	createUser(t, db, "auth0|admin-missing", "missing@example.com", "admin")
	router := setupAdminRouter("auth0|admin-missing")

	w, response := performJSON(t, router, "GET", "/api/v1/admin/orders/9999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(response))
}

package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shutterpress/shutterpress-api/config"
	"github.com/shutterpress/shutterpress-api/controllers"
	"github.com/shutterpress/shutterpress-api/middleware"
	"github.com/shutterpress/shutterpress-api/models"
	"github.com/shutterpress/shutterpress-api/tests/testutil"
)

// OrderPaymentAcceptanceTestSuite runs customer-facing scenarios against a
// live test server over real HTTP.
type OrderPaymentAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
}

// SetupSuite runs once before all tests
func (suite *OrderPaymentAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	os.Setenv("GO_ENV", "test")
	os.Setenv("AUTH0_DOMAIN", "test.auth0.com")
	os.Setenv("AUTH0_AUDIENCE", "https://api.test.com")

	// Setup database
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(&models.User{}, &models.Order{}, &models.Payment{})
	suite.NoError(err)

	config.SetDB(db)
	config.SetConfig(&config.Config{
		GoEnv:           "test",
		PayLaterWindow:  24 * time.Hour,
		DefaultCurrency: "USD",
	})

	// Create test server
	router := suite.createRouter()
	suite.server = httptest.NewServer(router)
}

// TearDownSuite runs once after all tests
func (suite *OrderPaymentAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// SetupTest runs before each test
func (suite *OrderPaymentAcceptanceTestSuite) SetupTest() {
	// Clean up database before each test
	suite.db.Exec("DELETE FROM payments")
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM users")

	users := []models.User{
		{Auth0ID: "auth0|customer", Name: "Casey Customer", Email: "casey@test.com", Role: "customer"},
		{Auth0ID: "auth0|admin", Name: "Avery Admin", Email: "avery@test.com", Role: "admin"},
	}
	for i := range users {
		suite.NoError(suite.db.Create(&users[i]).Error)
	}
}

// createRouter creates the application routes for acceptance testing
func (suite *OrderPaymentAcceptanceTestSuite) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	customerAuth := testutil.MockAuthMiddleware("auth0|customer", "customer")
	adminAuth := testutil.MockAuthMiddleware("auth0|admin", "admin")

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", customerAuth, controllers.CreateOrder)
		v1.GET("/orders", customerAuth, controllers.ListOrders)
		v1.GET("/orders/pending-payment", customerAuth, controllers.ListPendingPayment)
		v1.GET("/orders/:id", customerAuth, controllers.GetOrder)
		v1.POST("/orders/:id/pay-later", customerAuth, controllers.ExtendPayLater)
		v1.POST("/orders/:id/resume", customerAuth, controllers.ResumeOrder)

		v1.POST("/payments/initialize", customerAuth, controllers.InitializePayment)
		v1.POST("/payments/verify", customerAuth, controllers.VerifyPayment)
		v1.GET("/payments/order/:id", customerAuth, controllers.GetPaymentStatus)

		admin := v1.Group("/admin")
		admin.Use(adminAuth, middleware.RequireAdmin(config.GetDB))
		{
			admin.GET("/orders", controllers.AdminListOrders)
			admin.GET("/orders/stats", controllers.AdminGetOrderStats)
		}
	}

	return router
}

// makeRequest is a helper to make HTTP requests against the live server
func (suite *OrderPaymentAcceptanceTestSuite) makeRequest(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyJSON, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyJSON)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req, err := http.NewRequest(method, suite.server.URL+path, bodyReader)
	suite.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	suite.NoError(err)
	defer resp.Body.Close()

	var response map[string]interface{}
	suite.NoError(json.NewDecoder(resp.Body).Decode(&response))
	return resp, response
}

// newOrderBody builds a well-formed order request for a photo session
func (suite *OrderPaymentAcceptanceTestSuite) newOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"service_type": "photo",
		"service_name": "Portrait Session",
		"selected_options": map[string]string{
			"photoType": "portrait",
			"duration":  "oneHour",
		},
		"order_details": map[string]interface{}{
			"customer_name": "Casey Customer",
			"email":         "casey@test.com",
			"address":       "7 Shutter Street",
		},
	}
}

// TestScenario_OrderAndPayImmediately: a customer places an order and pays
// for it right away
func (suite *OrderPaymentAcceptanceTestSuite) TestScenario_OrderAndPayImmediately() {
	// Place the order
	resp, response := suite.makeRequest(http.MethodPost, "/api/v1/orders", suite.newOrderBody())
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	order := response["data"].(map[string]interface{})
	orderID := order["id"].(float64)
	assert.Equal(suite.T(), 120.0, order["total_price"], "Portrait session for one hour should cost the base price")

	// Open a checkout
	resp, response = suite.makeRequest(http.MethodPost, "/api/v1/payments/initialize", map[string]interface{}{
		"order_id": orderID,
	})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	txRef := response["data"].(map[string]interface{})["tx_ref"].(string)

	// Complete the sandbox checkout
	resp, response = suite.makeRequest(http.MethodPost, "/api/v1/payments/verify", map[string]interface{}{
		"tx_ref": txRef,
	})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	reconciled := response["data"].(map[string]interface{})["order"].(map[string]interface{})
	assert.Equal(suite.T(), "paid", reconciled["payment_status"])
	assert.Equal(suite.T(), "in-progress", reconciled["status"])
}

// TestScenario_DeferThenResume: a customer defers payment, comes back later,
// and completes the purchase
func (suite *OrderPaymentAcceptanceTestSuite) TestScenario_DeferThenResume() {
	resp, response := suite.makeRequest(http.MethodPost, "/api/v1/orders", suite.newOrderBody())
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	orderID := response["data"].(map[string]interface{})["id"].(float64)

	// Defer: restart the pay-later window
	resp, _ = suite.makeRequest(http.MethodPost, fmt.Sprintf("/api/v1/orders/%v/pay-later", orderID), nil)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	// Come back: the order shows up in the pending-payment list with time left
	resp, response = suite.makeRequest(http.MethodGet, "/api/v1/orders/pending-payment", nil)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	pending := response["data"].([]interface{})
	assert.Len(suite.T(), pending, 1)
	assert.Greater(suite.T(), pending[0].(map[string]interface{})["time_remaining_seconds"].(float64), 0.0)

	// Resume readies the order for payment
	resp, _ = suite.makeRequest(http.MethodPost, fmt.Sprintf("/api/v1/orders/%v/resume", orderID), nil)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	// Pay
	resp, response = suite.makeRequest(http.MethodPost, "/api/v1/payments/initialize", map[string]interface{}{
		"order_id": orderID,
	})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	txRef := response["data"].(map[string]interface{})["tx_ref"].(string)

	resp, response = suite.makeRequest(http.MethodPost, "/api/v1/payments/verify", map[string]interface{}{
		"tx_ref": txRef,
	})
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	payment := response["data"].(map[string]interface{})["payment"].(map[string]interface{})
	assert.Equal(suite.T(), "completed", payment["status"])
}

// TestScenario_AdminReviewsRevenue: after a sale, the studio owner checks the
// dashboard numbers
func (suite *OrderPaymentAcceptanceTestSuite) TestScenario_AdminReviewsRevenue() {
	// A customer buys a session
	_, response := suite.makeRequest(http.MethodPost, "/api/v1/orders", suite.newOrderBody())
	orderID := response["data"].(map[string]interface{})["id"].(float64)

	_, response = suite.makeRequest(http.MethodPost, "/api/v1/payments/initialize", map[string]interface{}{
		"order_id": orderID,
	})
	txRef := response["data"].(map[string]interface{})["tx_ref"].(string)
	suite.makeRequest(http.MethodPost, "/api/v1/payments/verify", map[string]interface{}{"tx_ref": txRef})

	// Another order stays unpaid
	suite.makeRequest(http.MethodPost, "/api/v1/orders", suite.newOrderBody())

	resp, response := suite.makeRequest(http.MethodGet, "/api/v1/admin/orders/stats", nil)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	stats := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(1), stats["pending_count"])
	assert.Equal(suite.T(), float64(1), stats["paid_count"])
	assert.Equal(suite.T(), 120.0, stats["total_revenue"])

	// Both orders are visible in the admin list
	resp, response = suite.makeRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Len(suite.T(), response["data"].([]interface{}), 2)
}

// TestOrderPaymentAcceptanceTestSuite runs the acceptance suite
func TestOrderPaymentAcceptanceTestSuite(t *testing.T) {
	testutil.RequireTestEnvironmentOrSkip(t)
	suite.Run(t, new(OrderPaymentAcceptanceTestSuite))
}

package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shutterpress/shutterpress-api/config"
	"github.com/shutterpress/shutterpress-api/models"
)

// setupControllerTestDB wires an in-memory sqlite database and a test
// configuration into the globals the controllers read.
func setupControllerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.Payment{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	config.SetConfig(&config.Config{
		GoEnv:           "test",
		PayLaterWindow:  24 * time.Hour,
		DefaultCurrency: "USD",
	})

	return db
}

// setupTestRouter creates a bare router in test mode
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware simulates a validated JWT for the given Auth0 subject
func mockAuthMiddleware(auth0ID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Next()
	}
}

// createUser seeds a user row
func createUser(t *testing.T, db *gorm.DB, auth0ID, email, role string) *models.User {
	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Test User",
		Email:   email,
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

// performJSON runs a JSON request against the router and decodes the
// response envelope
func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response should be valid JSON: %v (body: %s)", err, w.Body.String())
	}

	return w, response
}

// errorCode extracts the error code from a response envelope
func errorCode(response map[string]interface{}) string {
	errData, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errData["code"].(string)
	return code
}

// validOrderBody is a well-formed order creation request
func validOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"service_type": "printing",
		"service_name": "T-Shirt Printing",
		"selected_options": map[string]string{
			"printingType": "tshirts",
			"quantity":     "5",
		},
		"order_details": map[string]interface{}{
			"customer_name": "Jamie Doe",
			"email":         "jamie@example.com",
			"address":       "12 Studio Lane",
		},
		"input_method": "describe",
		"total_price":  75.0,
	}
}

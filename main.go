package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shutterpress/shutterpress-api/config"
	"github.com/shutterpress/shutterpress-api/controllers"
	"github.com/shutterpress/shutterpress-api/middleware"
	"github.com/shutterpress/shutterpress-api/models"
	"github.com/shutterpress/shutterpress-api/services"
)

func main() {
	log.Println("Starting ShutterPress Studio API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.Order{}, &models.Payment{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize attachment storage; the API still runs without it, uploads
	// just report storage unavailable.
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Printf("Failed to initialize S3 service, uploads disabled: %v", err)
		} else {
			services.InitAttachmentService(s3Service)
			log.Println("Attachment storage initialized")
		}
	} else {
		log.Println("AWS_S3_BUCKET not set, uploads disabled")
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the full application router
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := v1.Group("")
	authenticated.Use(middleware.EnsureValidToken(cfg))
	{
		// User profiles
		authenticated.POST("/users", controllers.CreateUser)
		authenticated.GET("/users/me", controllers.GetCurrentUser)

		// Orders
		authenticated.POST("/orders", controllers.CreateOrder)
		authenticated.GET("/orders", controllers.ListOrders)
		authenticated.GET("/orders/pending-payment", controllers.ListPendingPayment)
		authenticated.GET("/orders/:id", controllers.GetOrder)
		authenticated.POST("/orders/:id/pay-later", controllers.ExtendPayLater)
		authenticated.POST("/orders/:id/resume", controllers.ResumeOrder)
		authenticated.POST("/orders/:id/files", controllers.UploadOrderFile)
		authenticated.GET("/orders/:id/files", controllers.ListOrderFiles)

		// Payments
		authenticated.POST("/payments/initialize", controllers.InitializePayment)
		authenticated.POST("/payments/verify", controllers.VerifyPayment)
		authenticated.GET("/payments/order/:id", controllers.GetPaymentStatus)

		// Admin
		admin := authenticated.Group("/admin")
		admin.Use(middleware.RequireAdmin(config.GetDB))
		{
			admin.GET("/orders", controllers.AdminListOrders)
			admin.GET("/orders/stats", controllers.AdminGetOrderStats)
			admin.GET("/orders/:id", controllers.AdminGetOrder)
			admin.PATCH("/orders/:id/status", controllers.AdminUpdateOrderStatus)
			admin.PATCH("/orders/:id/payment-status", controllers.AdminUpdatePaymentStatus)
			admin.PATCH("/orders/:id", controllers.AdminUpdateOrderFields)
			admin.DELETE("/orders/:id", controllers.AdminDeleteOrder)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ShutterPress Studio API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database not initialized",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}

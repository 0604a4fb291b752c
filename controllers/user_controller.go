package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shutterpress/shutterpress-api/config"
	"github.com/shutterpress/shutterpress-api/middleware"
	"github.com/shutterpress/shutterpress-api/models"
	"github.com/shutterpress/shutterpress-api/services"
)

// CreateUser handles POST /api/v1/users - creates a user profile from Auth0 userinfo
// This endpoint requires authentication and fetches user data from Auth0's /userinfo endpoint
func CreateUser(c *gin.Context) {
	// Get the Auth0 user ID from the validated JWT
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	// Get the access token to call Auth0's /userinfo endpoint
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	// Fetch user info from Auth0
	cfg := config.GetConfig()
	auth0Service := services.NewAuth0Service(cfg)
	userInfo, err := auth0Service.GetUserInfo(accessToken)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondError(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	// Get role from custom claims (if present)
	role := "customer" // default role
	if claims, err := middleware.GetClaims(c); err == nil {
		if customClaims, ok := claims.CustomClaims.(*middleware.CustomClaims); ok && customClaims.Role != "" {
			role = customClaims.Role
		}
	}

	db := config.GetDB()

	// Idempotent: a repeat call returns the existing profile
	var existing models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    existing,
		})
		return
	}

	user := models.User{
		Auth0ID: auth0ID,
		Name:    userInfo.Name,
		Email:   userInfo.Email,
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user profile")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetCurrentUser handles GET /api/v1/users/me - returns the caller's profile
func GetCurrentUser(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shutterpress/shutterpress-api/config"
	"github.com/shutterpress/shutterpress-api/models"
	"github.com/shutterpress/shutterpress-api/services"
	"github.com/shutterpress/shutterpress-api/utils"
)

// UploadOrderFile handles POST /api/v1/orders/:id/files - attaches a customer
// reference file to an order. The bytes go to S3; the order row only records
// metadata.
func UploadOrderFile(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("id = ? AND customer_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "No file provided in 'file' form field")
		return
	}

	attachmentService := services.GetAttachmentService()
	if attachmentService == nil {
		respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "File storage is not configured")
		return
	}

	orderFile, err := attachmentService.UploadAttachment(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		respondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to store file")
		return
	}

	order.Files = append(order.Files, *orderFile)
	if err := db.Model(&order).Update("files", order.Files).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record file on order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    orderFile,
	})
}

// ListOrderFiles handles GET /api/v1/orders/:id/files - lists an order's
// attachments with download URLs
func ListOrderFiles(c *gin.Context) {
	user, ok := requireCurrentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("id = ? AND customer_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	attachmentService := services.GetAttachmentService()

	type fileWithURL struct {
		models.OrderFile
		URL string `json:"url,omitempty"`
	}

	files := make([]fileWithURL, 0, len(order.Files))
	for _, f := range order.Files {
		entry := fileWithURL{OrderFile: f}
		if attachmentService != nil && f.S3Key != "" {
			if url, err := attachmentService.GetAttachmentURL(f.S3Key); err == nil {
				entry.URL = url
			}
		}
		files = append(files, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    files,
	})
}

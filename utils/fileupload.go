package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxAttachmentSize is 25MB in bytes; print-ready files run large
	MaxAttachmentSize = 25 * 1024 * 1024
)

// AllowedAttachmentFormats are the file extensions accepted for customer
// reference files (artwork, photos, print-ready documents).
var AllowedAttachmentFormats = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
	".svg":  true,
	".tiff": true,
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateAttachment validates an uploaded reference file's format and size
func ValidateAttachment(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxAttachmentSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxAttachmentSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !AllowedAttachmentFormats[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("File format %s is not supported", ext),
		}
	}

	return nil
}

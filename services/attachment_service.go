package services

import (
	"fmt"
	"mime/multipart"

	"github.com/shutterpress/shutterpress-api/models"
	"github.com/shutterpress/shutterpress-api/utils"
)

// attachmentKeyPrefix is where customer reference files live in the bucket.
const attachmentKeyPrefix = "orders/attachments"

// AttachmentService handles customer reference files attached to orders:
// validation, storage, and download URLs. Only metadata is written to the
// order row.
type AttachmentService interface {
	// UploadAttachment validates and stores a reference file, returning
	// its metadata.
	UploadAttachment(fileHeader *multipart.FileHeader) (*models.OrderFile, error)

	// GetAttachmentURL generates a URL for downloading a stored attachment
	GetAttachmentURL(s3Key string) (string, error)

	// DeleteAttachment removes an attachment from storage
	DeleteAttachment(s3Key string) error
}

// S3AttachmentService implements AttachmentService using S3 for storage
type S3AttachmentService struct {
	s3Service S3Interface
}

var attachmentServiceInstance AttachmentService

// InitAttachmentService initializes the attachment service with S3 backend
func InitAttachmentService(s3Service S3Interface) AttachmentService {
	attachmentServiceInstance = &S3AttachmentService{
		s3Service: s3Service,
	}
	return attachmentServiceInstance
}

// GetAttachmentService returns the initialized attachment service instance
func GetAttachmentService() AttachmentService {
	return attachmentServiceInstance
}

// SetAttachmentService sets the attachment service instance (primarily for testing)
func SetAttachmentService(service AttachmentService) {
	attachmentServiceInstance = service
}

// UploadAttachment validates the file and stores it under the attachments prefix
func (s *S3AttachmentService) UploadAttachment(fileHeader *multipart.FileHeader) (*models.OrderFile, error) {
	if err := utils.ValidateAttachment(fileHeader); err != nil {
		return nil, err
	}

	s3Key, err := s.s3Service.UploadFile(fileHeader, attachmentKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	return &models.OrderFile{
		Name:  fileHeader.Filename,
		Size:  fileHeader.Size,
		Type:  fileHeader.Header.Get("Content-Type"),
		S3Key: s3Key,
	}, nil
}

// GetAttachmentURL generates a presigned download URL for the attachment
func (s *S3AttachmentService) GetAttachmentURL(s3Key string) (string, error) {
	return s.s3Service.GetPresignedURL(s3Key)
}

// DeleteAttachment removes the attachment from S3
func (s *S3AttachmentService) DeleteAttachment(s3Key string) error {
	return s.s3Service.DeleteFile(s3Key)
}

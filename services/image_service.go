package services

import (
	"context"
	"fmt"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/utils"
)

// ImageService resolves portfolio image keys. Images are uploaded out of band;
// this service only verifies keys and signs URLs for them.
type ImageService interface {
	// VerifyImage checks that key is well formed and the object exists
	VerifyImage(ctx context.Context, key string) error

	// GetImageURL generates a URL for accessing an uploaded image
	GetImageURL(ctx context.Context, key string) (string, error)
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

var imageServiceInstance ImageService

// InitImageService initializes the image service with S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = &S3ImageService{
		s3Service: s3Service,
	}
	return imageServiceInstance
}

// GetImageService returns the initialized image service instance, nil when S3 is not configured
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

func (s *S3ImageService) VerifyImage(ctx context.Context, key string) error {
	if err := utils.ValidateImageKey(key); err != nil {
		return err
	}

	exists, err := s.s3Service.ObjectExists(ctx, key)
	if err != nil {
		return apperrors.Unavailable("Image storage is unavailable", err)
	}
	if !exists {
		return apperrors.Validation("IMAGE_NOT_FOUND", "No uploaded image exists for this key")
	}
	return nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

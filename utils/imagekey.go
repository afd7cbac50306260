package utils

import (
	"fmt"
	"path"
	"strings"

	"github.com/ducali/ducali-api/apperrors"
)

const (
	// PortfolioKeyPrefix is where portfolio images live in the bucket
	PortfolioKeyPrefix = "portfolio/"
	// MaxImageKeyLength bounds object keys accepted from clients
	MaxImageKeyLength = 512
)

// AllowedImageFormats are the file extensions accepted for portfolio images
var AllowedImageFormats = []string{".png", ".jpg", ".jpeg", ".webp"}

// ValidateImageKey checks an object key supplied for a portfolio image.
// Images are uploaded out of band; the API only stores and signs keys.
func ValidateImageKey(key string) error {
	if key == "" {
		return apperrors.Validation("INVALID_IMAGE_KEY", "Image key is required")
	}
	if len(key) > MaxImageKeyLength {
		return apperrors.Validation("INVALID_IMAGE_KEY", fmt.Sprintf("Image key exceeds %d characters", MaxImageKeyLength))
	}
	if !strings.HasPrefix(key, PortfolioKeyPrefix) || path.Clean(key) != key {
		return apperrors.Validation("INVALID_IMAGE_KEY", fmt.Sprintf("Image key must be a clean path under %s", PortfolioKeyPrefix))
	}

	ext := strings.ToLower(path.Ext(key))
	for _, allowed := range AllowedImageFormats {
		if ext == allowed {
			return nil
		}
	}
	return apperrors.Validation("INVALID_FILE_FORMAT",
		fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedImageFormats, ", ")))
}

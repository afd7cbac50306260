package services

import (
	"context"
	"sync"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	images map[string]bool
	mu     sync.RWMutex
}

// NewMockImageService creates a mock image service that knows keys
func NewMockImageService(keys ...string) *MockImageService {
	m := &MockImageService{images: make(map[string]bool)}
	for _, key := range keys {
		m.images[key] = true
	}
	return m
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// AddImage pretends an image was uploaded
func (m *MockImageService) AddImage(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[key] = true
}

func (m *MockImageService) VerifyImage(ctx context.Context, key string) error {
	if err := utils.ValidateImageKey(key); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.images[key] {
		return apperrors.Validation("IMAGE_NOT_FOUND", "No uploaded image exists for this key")
	}
	return nil
}

func (m *MockImageService) GetImageURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return "https://mock-s3.example.com/" + key, nil
}

// ImageExists checks if an image exists in the mock storage
func (m *MockImageService) ImageExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.images[key]
}

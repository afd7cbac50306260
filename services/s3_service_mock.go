package services

import (
	"context"
	"fmt"
	"sync"
)

// MockS3Service is a mock implementation of S3Service for testing
type MockS3Service struct {
	objects map[string]bool
	mu      sync.RWMutex
	// Err, when set, fails every call
	Err error
}

// NewMockS3Service creates a new mock S3 service holding keys
func NewMockS3Service(keys ...string) *MockS3Service {
	m := &MockS3Service{objects: make(map[string]bool)}
	for _, key := range keys {
		m.objects[key] = true
	}
	return m
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// PutObject pretends an object was uploaded out of band
func (m *MockS3Service) PutObject(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = true
}

func (m *MockS3Service) GetPresignedURL(ctx context.Context, s3Key string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if s3Key == "" {
		return "", nil
	}
	return fmt.Sprintf("https://mock-bucket.s3.amazonaws.com/%s?X-Amz-Expires=3600&X-Amz-Signature=mock", s3Key), nil
}

func (m *MockS3Service) ObjectExists(ctx context.Context, s3Key string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[s3Key], nil
}

package services

import (
	"context"
	"sync"
)

// SentNotification is one call recorded by MockNotifier
type SentNotification struct {
	UserID  uint
	Kind    string
	Payload map[string]interface{}
}

// MockNotifier records notifications instead of delivering them
type MockNotifier struct {
	mu   sync.Mutex
	sent []SentNotification
	// Err, when set, is returned from every Notify after recording the call
	Err error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SetAsMockForTesting sets this mock as the global notifier instance for testing
func (m *MockNotifier) SetAsMockForTesting() {
	SetNotifier(m)
}

func (m *MockNotifier) Notify(ctx context.Context, userID uint, kind string, payload map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentNotification{UserID: userID, Kind: kind, Payload: payload})
	return m.Err
}

func (m *MockNotifier) Name() string { return "mock" }
func (m *MockNotifier) Close() error { return nil }

// Sent returns a copy of the recorded notifications
func (m *MockNotifier) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentNotification(nil), m.sent...)
}

// SentTo returns the kinds delivered to userID, in order
func (m *MockNotifier) SentTo(userID uint) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kinds []string
	for _, n := range m.sent {
		if n.UserID == userID {
			kinds = append(kinds, n.Kind)
		}
	}
	return kinds
}

// Clear forgets every recorded notification
func (m *MockNotifier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

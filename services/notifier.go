package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/logger"
	"github.com/ducali/ducali-api/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier delivers a notification to one user. Delivery is best effort:
// callers log and count failures and never roll back on them.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind string, payload map[string]interface{}) error
	Name() string
	Close() error
}

// Envelope is the wire form shared by every broker notifier
type Envelope struct {
	EventID string                 `json:"event_id"`
	UserID  uint                   `json:"user_id"`
	Kind    string                 `json:"kind"`
	Payload map[string]interface{} `json:"payload"`
	SentAt  time.Time              `json:"sent_at"`
}

const eventIDKey = "event_id"

// NewEnvelope wraps a notification, reusing payload["event_id"] when the fanout already assigned one
func NewEnvelope(userID uint, kind string, payload map[string]interface{}) Envelope {
	eventID, _ := payload[eventIDKey].(string)
	if eventID == "" {
		eventID = uuid.NewString()
	}
	return Envelope{EventID: eventID, UserID: userID, Kind: kind, Payload: payload, SentAt: time.Now().UTC()}
}

func (e Envelope) marshal() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return body, nil
}

// LogNotifier writes notifications to the application log
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(ctx context.Context, userID uint, kind string, payload map[string]interface{}) error {
	env := NewEnvelope(userID, kind, payload)
	logger.L().Info("notification",
		zap.String("event_id", env.EventID),
		zap.Uint("user_id", userID),
		zap.String("kind", kind),
		zap.Any("payload", payload))
	return nil
}

func (n *LogNotifier) Name() string { return config.NotifierLog }
func (n *LogNotifier) Close() error { return nil }

// StoreNotifier writes notifications to the in-app inbox table
type StoreNotifier struct {
	db *gorm.DB
}

func NewStoreNotifier(db *gorm.DB) *StoreNotifier {
	return &StoreNotifier{db: db}
}

func (n *StoreNotifier) Notify(ctx context.Context, userID uint, kind string, payload map[string]interface{}) error {
	env := NewEnvelope(userID, kind, payload)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	record := InboxRecord(env, body)
	if err := n.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (n *StoreNotifier) Name() string { return "inbox" }
func (n *StoreNotifier) Close() error { return nil }

// FanoutNotifier sends every notification to all of its notifiers under one event id
type FanoutNotifier struct {
	notifiers []Notifier
}

func NewFanoutNotifier(notifiers ...Notifier) *FanoutNotifier {
	return &FanoutNotifier{notifiers: notifiers}
}

// Notify delivers to every notifier concurrently and joins their errors
func (f *FanoutNotifier) Notify(ctx context.Context, userID uint, kind string, payload map[string]interface{}) error {
	stamped := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		stamped[k] = v
	}
	if _, ok := stamped[eventIDKey]; !ok {
		stamped[eventIDKey] = uuid.NewString()
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, n := range f.notifiers {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()
			err := n.Notify(ctx, userID, kind, stamped)
			outcome := "sent"
			if err != nil {
				outcome = "failed"
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
				mu.Unlock()
			}
			metrics.Notifications.WithLabelValues(n.Name(), outcome).Inc()
		}(n)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (f *FanoutNotifier) Name() string { return "fanout" }

func (f *FanoutNotifier) Close() error {
	var errs []error
	for _, n := range f.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

var (
	notifierMu       sync.RWMutex
	notifierInstance Notifier = NewLogNotifier()
)

// InitNotifier builds the configured broker notifier, fanned out with the in-app inbox
func InitNotifier(cfg *config.Config, db *gorm.DB) (Notifier, error) {
	var broker Notifier
	switch cfg.NotifierDriver {
	case config.NotifierLog, "":
		broker = NewLogNotifier()
	case config.NotifierRedis:
		n, err := NewRedisNotifier(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		broker = n
	case config.NotifierKafka:
		broker = NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
	case config.NotifierAMQP:
		n, err := NewAMQPNotifier(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		broker = n
	default:
		return nil, fmt.Errorf("unsupported notifier driver %q", cfg.NotifierDriver)
	}

	notifier := NewFanoutNotifier(NewStoreNotifier(db), broker)
	SetNotifier(notifier)
	return notifier, nil
}

// GetNotifier returns the process notifier
func GetNotifier() Notifier {
	notifierMu.RLock()
	defer notifierMu.RUnlock()
	return notifierInstance
}

// SetNotifier sets the process notifier (primarily for testing)
func SetNotifier(n Notifier) {
	notifierMu.Lock()
	defer notifierMu.Unlock()
	notifierInstance = n
}

package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ducali/ducali-api/logger"
	"go.uber.org/zap"
)

// ReadRetry controls how store reads are retried. Writes are never retried.
type ReadRetry struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultReadRetry is three attempts with roughly 50ms, 100ms backoff between them
var DefaultReadRetry = ReadRetry{Attempts: 3, BaseDelay: 50 * time.Millisecond}

func (r ReadRetry) policy(ctx context.Context) backoff.BackOff {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.BaseDelay
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

func (r ReadRetry) do(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := fn()
		if err != nil && !transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, r.policy(ctx), func(err error, wait time.Duration) {
		logger.L().Warn("store read failed, retrying",
			zap.String("op", op), zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
	})
}

// transient reports connection-level failures that a fresh attempt may clear
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"bad connection",
		"i/o timeout",
		"too many connections",
		"database is locked",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

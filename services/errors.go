package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ducali/ducali-api/apperrors"
	"gorm.io/gorm"
)

// dbError maps a gorm error onto an application error, using notFound for missing rows
func dbError(err error, op string, notFound *apperrors.Error) error {
	var appErr *apperrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Unavailable("Request timed out, please retry", err)
	default:
		return apperrors.Internal(fmt.Sprintf("Failed to %s", op), err)
	}
}

// isUniqueViolation reports a duplicate key error (works with PostgreSQL, MySQL and SQLite)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}

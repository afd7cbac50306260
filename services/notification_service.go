package services

import (
	"context"
	"time"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InboxRecord converts an envelope and its encoded payload into an inbox row
func InboxRecord(env Envelope, payload []byte) models.Notification {
	return models.Notification{
		EventID: env.EventID,
		UserID:  env.UserID,
		Kind:    env.Kind,
		Payload: datatypes.JSON(payload),
	}
}

// NotificationService reads and acknowledges a user's in-app inbox
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List pages through userID's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, page, limit int) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "count notifications", nil)
	}

	var notifications []models.Notification
	err := query.
		Order("created_at DESC, id DESC").
		Offset(utils.Offset(page, limit)).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, dbError(err, "list notifications", nil)
	}
	return notifications, total, nil
}

// MarkRead stamps readAt on one of userID's notifications. Marking twice keeps the first time.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) (models.Notification, error) {
	var notification models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		return models.Notification{}, dbError(err, "find notification", apperrors.NotFound("NOTIFICATION_NOT_FOUND", "Notification not found"))
	}
	if notification.ReadAt != nil {
		return notification, nil
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&notification).Update("read_at", now).Error; err != nil {
		return models.Notification{}, dbError(err, "mark notification read", nil)
	}
	notification.ReadAt = &now
	return notification, nil
}

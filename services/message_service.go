package services

import (
	"context"
	"strings"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/lifecycle"
	"github.com/ducali/ducali-api/models"
	"gorm.io/gorm"
)

// MaxMessageLength bounds a single message body
const MaxMessageLength = 5000

// MessageService manages the append-only conversation attached to an order
type MessageService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewMessageService(db *gorm.DB, notifier Notifier) *MessageService {
	return &MessageService{db: db, notifier: notifier}
}

func (s *MessageService) partyOrder(ctx context.Context, actor lifecycle.Actor, orderID uint, allowAdmin bool) (models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return models.Order{}, dbError(err, "find order", apperrors.NotFound("ORDER_NOT_FOUND", "Order not found"))
	}
	if order.IsParty(actor.UserID) || (allowAdmin && actor.Role == models.RoleAdmin) {
		return order, nil
	}
	return models.Order{}, apperrors.Forbidden("FORBIDDEN", "You do not have permission to access messages for this order")
}

// Send appends a message from actor to the other party on the order
func (s *MessageService) Send(ctx context.Context, actor lifecycle.Actor, orderID uint, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, apperrors.Validation("VALIDATION_ERROR", "Message content is required")
	}
	if len(content) > MaxMessageLength {
		return models.Message{}, apperrors.Validation("VALIDATION_ERROR", "Message content is too long")
	}

	order, err := s.partyOrder(ctx, actor, orderID, false)
	if err != nil {
		return models.Message{}, err
	}

	message := models.Message{
		OrderID:    order.ID,
		SenderID:   actor.UserID,
		ReceiverID: order.Counterparty(actor.UserID),
		Content:    content,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return models.Message{}, dbError(err, "create message", nil)
	}
	if err := s.db.WithContext(ctx).Preload("Sender").First(&message, message.ID).Error; err != nil {
		return models.Message{}, dbError(err, "load message", nil)
	}

	deliver(ctx, s.notifier, string(lifecycle.KindMessageReceived), []uint{message.ReceiverID}, map[string]interface{}{
		"order_id":   order.ID,
		"message_id": message.ID,
		"sender_id":  actor.UserID,
	})
	return message, nil
}

// List returns the order's messages oldest first. Admins may read any conversation.
func (s *MessageService) List(ctx context.Context, actor lifecycle.Actor, orderID uint) ([]models.Message, error) {
	if _, err := s.partyOrder(ctx, actor, orderID, true); err != nil {
		return nil, err
	}

	var messages []models.Message
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, dbError(err, "list messages", nil)
	}
	return messages, nil
}

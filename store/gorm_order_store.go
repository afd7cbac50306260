package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/models"
	"gorm.io/gorm"
)

// GormOrderStore keeps orders in the relational database
type GormOrderStore struct {
	db    *gorm.DB
	retry ReadRetry
	now   func() time.Time
}

// NewGormOrderStore creates an order store over db
func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db, retry: DefaultReadRetry, now: time.Now}
}

// WithReadRetry replaces the read retry policy
func (s *GormOrderStore) WithReadRetry(r ReadRetry) *GormOrderStore {
	s.retry = r
	return s
}

func (s *GormOrderStore) Create(ctx context.Context, order *models.Order) error {
	if order.Version == 0 {
		order.Version = 1
	}
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return translate(err, "create order")
	}
	return nil
}

func (s *GormOrderStore) Get(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := s.retry.do(ctx, "get order", func() error {
		return s.db.WithContext(ctx).
			Preload("Customer").
			Preload("Artisan").
			First(&order, id).Error
	})
	if err != nil {
		return models.Order{}, translate(err, "get order")
	}
	order.Status = order.Status.Canonical()
	return order, nil
}

// Update writes every mutable column of next if the row still has expectedVersion
func (s *GormOrderStore) Update(ctx context.Context, next models.Order, expectedVersion int) (models.Order, error) {
	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", next.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":               next.Status,
			"quoted_price":         next.QuotedPrice,
			"quote_timeline":       next.QuoteTimeline,
			"estimated_completion": next.EstimatedCompletion,
			"quote_notes":          next.QuoteNotes,
			"quote_revision":       next.QuoteRevision,
			"change_request":       next.ChangeRequest,
			"final_price":          next.FinalPrice,
			"progress_percentage":  next.ProgressPercentage,
			"dispute_reason":       next.DisputeReason,
			"resolution_note":      next.ResolutionNote,
			"accepted_at":          next.AcceptedAt,
			"started_at":           next.StartedAt,
			"completed_at":         next.CompletedAt,
			"cancelled_at":         next.CancelledAt,
			"disputed_at":          next.DisputedAt,
			"version":              expectedVersion + 1,
			"updated_at":           now,
		})
	if result.Error != nil {
		return models.Order{}, translate(result.Error, "update order")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", next.ID).Count(&count).Error; err != nil {
			return models.Order{}, translate(err, "update order")
		}
		if count == 0 {
			return models.Order{}, orderNotFound(next.ID)
		}
		return models.Order{}, versionConflict(next.ID)
	}

	next.Version = expectedVersion + 1
	next.UpdatedAt = now
	return next, nil
}

func (s *GormOrderStore) ListByCustomer(ctx context.Context, customerID uint, page, limit int) ([]models.Order, int64, error) {
	return s.Search(ctx, OrderFilter{CustomerID: customerID, Page: page, Limit: limit})
}

func (s *GormOrderStore) ListByArtisan(ctx context.Context, artisanID uint, page, limit int) ([]models.Order, int64, error) {
	return s.Search(ctx, OrderFilter{ArtisanID: artisanID, Page: page, Limit: limit})
}

// Search lists orders matching every set field of filter, newest first
func (s *GormOrderStore) Search(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	filter = filter.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ArtisanID != 0 {
		query = query.Where("artisan_id = ?", filter.ArtisanID)
	}
	if filter.PartyID != 0 {
		query = query.Where("customer_id = ? OR artisan_id = ?", filter.PartyID, filter.PartyID)
	}
	if filter.Status != "" {
		statuses := []models.OrderStatus{filter.Status.Canonical()}
		if filter.Status.Canonical() == models.StatusQuoteSent {
			statuses = append(statuses, models.StatusPendingReview)
		}
		query = query.Where("status IN ?", statuses)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var (
		total  int64
		orders []models.Order
	)
	err := s.retry.do(ctx, "list orders", func() error {
		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return err
		}
		return query.Session(&gorm.Session{}).
			Preload("Customer").
			Preload("Artisan").
			Order("created_at DESC, id DESC").
			Offset(filter.Offset()).
			Limit(filter.Limit).
			Find(&orders).Error
	})
	if err != nil {
		return nil, 0, translate(err, "list orders")
	}

	for i := range orders {
		orders[i].Status = orders[i].Status.Canonical()
	}
	return orders, total, nil
}

func orderNotFound(id uint) error {
	return apperrors.NotFound("ORDER_NOT_FOUND", fmt.Sprintf("Order %d not found", id))
}

func versionConflict(id uint) error {
	return apperrors.Conflict("VERSION_CONFLICT", fmt.Sprintf("Order %d was modified by another request, reload and retry", id))
}

// translate maps database errors onto application errors
func translate(err error, op string) error {
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound("ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Unavailable("Request timed out, please retry", err)
	case transient(err):
		return apperrors.Unavailable(fmt.Sprintf("Failed to %s", op), err)
	default:
		return apperrors.Internal(fmt.Sprintf("Failed to %s", op), err)
	}
}

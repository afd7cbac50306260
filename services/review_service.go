package services

import (
	"context"
	"strings"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/lifecycle"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/utils"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReviewService creates reviews of completed orders and records helpful votes
type ReviewService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewReviewService(db *gorm.DB, notifier Notifier) *ReviewService {
	return &ReviewService{db: db, notifier: notifier}
}

// Create stores the customer's single review of a completed order
func (s *ReviewService) Create(ctx context.Context, actor lifecycle.Actor, orderID uint, rating int, comment string) (models.Review, error) {
	if rating < MinRating || rating > MaxRating {
		return models.Review{}, apperrors.Validation("INVALID_RATING", "Rating must be between 1 and 5")
	}

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		return models.Review{}, dbError(err, "find order", apperrors.NotFound("ORDER_NOT_FOUND", "Order not found"))
	}
	if actor.Role != models.RoleCustomer || order.CustomerID != actor.UserID {
		return models.Review{}, apperrors.Forbidden("FORBIDDEN", "Only the customer on this order can review it")
	}
	if order.Status.Canonical() != models.StatusCompleted {
		return models.Review{}, apperrors.InvalidState("INVALID_STATE", "Only completed orders can be reviewed")
	}

	review := models.Review{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		ArtisanID:  order.ArtisanID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		if isUniqueViolation(err) {
			return models.Review{}, apperrors.Conflict("REVIEW_EXISTS", "This order has already been reviewed")
		}
		return models.Review{}, dbError(err, "create review", nil)
	}

	deliver(ctx, s.notifier, string(lifecycle.KindReviewPosted), []uint{order.ArtisanID}, map[string]interface{}{
		"order_id":  order.ID,
		"review_id": review.ID,
		"rating":    rating,
	})
	return review, nil
}

// ListForArtisan pages through an artisan's reviews, most helpful first
func (s *ReviewService) ListForArtisan(ctx context.Context, artisanID uint, page, limit int) ([]models.Review, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Review{}).Where("artisan_id = ?", artisanID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "count reviews", nil)
	}

	var reviews []models.Review
	err := query.
		Preload("Customer").
		Order("helpful_count DESC, created_at DESC").
		Offset(utils.Offset(page, limit)).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, dbError(err, "list reviews", nil)
	}
	return reviews, total, nil
}

// MarkHelpful records userID's helpful vote and bumps the review's counter.
// Authors cannot vote on their own review and each user votes once.
func (s *ReviewService) MarkHelpful(ctx context.Context, actor lifecycle.Actor, reviewID uint) (models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, reviewID).Error; err != nil {
			return dbError(err, "find review", apperrors.NotFound("REVIEW_NOT_FOUND", "Review not found"))
		}
		if review.CustomerID == actor.UserID {
			return apperrors.Forbidden("FORBIDDEN", "You cannot mark your own review as helpful")
		}

		vote := models.ReviewHelpfulVote{ReviewID: review.ID, UserID: actor.UserID}
		if err := tx.Create(&vote).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict("ALREADY_VOTED", "You already marked this review as helpful")
			}
			return dbError(err, "record vote", nil)
		}

		if err := tx.Model(&review).UpdateColumn("helpful_count", gorm.Expr("helpful_count + 1")).Error; err != nil {
			return dbError(err, "update review", nil)
		}
		return tx.First(&review, reviewID).Error
	})
	if err != nil {
		return models.Review{}, dbError(err, "mark review helpful", nil)
	}
	return review, nil
}

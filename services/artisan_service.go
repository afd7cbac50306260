package services

import (
	"context"
	"math"
	"strings"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/lifecycle"
	"github.com/ducali/ducali-api/models"
	"gorm.io/gorm"
)

// ArtisanSummary is an artisan's public card: profile plus stats derived from orders and reviews
type ArtisanSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Category string `json:"category"`
	Location string `json:"location"`
	Skills   string `json:"skills"`
	Featured bool   `json:"featured"`
	models.ArtisanStats
}

// ArtisanDetail is the full storefront returned by GET /artisans/:id
type ArtisanDetail struct {
	ArtisanSummary
	Services  []models.ServiceOffering `json:"services"`
	Portfolio []models.PortfolioItem   `json:"portfolio"`
}

// ProfileInput is what an artisan may edit on their own storefront
type ProfileInput struct {
	Bio      *string
	Category *string
	Location *string
	Skills   *string
}

// ArtisanService reads storefronts and computes artisan aggregates
type ArtisanService struct {
	db     *gorm.DB
	images ImageService
}

// NewArtisanService creates an artisan service. images may be nil when S3 is not configured.
func NewArtisanService(db *gorm.DB, images ImageService) *ArtisanService {
	return &ArtisanService{db: db, images: images}
}

// Stats derives rating, review count and order counts for each artisan id.
// Cancelled orders are not counted in totalOrders.
func (s *ArtisanService) Stats(ctx context.Context, artisanIDs []uint) (map[uint]models.ArtisanStats, error) {
	stats := make(map[uint]models.ArtisanStats, len(artisanIDs))
	if len(artisanIDs) == 0 {
		return stats, nil
	}

	var reviewRows []struct {
		ArtisanID uint
		Rating    float64
		Reviews   int64
	}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("artisan_id, AVG(rating) AS rating, COUNT(*) AS reviews").
		Where("artisan_id IN ?", artisanIDs).
		Group("artisan_id").
		Scan(&reviewRows).Error
	if err != nil {
		return nil, dbError(err, "aggregate reviews", nil)
	}

	var orderRows []struct {
		ArtisanID uint
		Total     int64
		Completed int64
	}
	err = s.db.WithContext(ctx).Model(&models.Order{}).
		Select("artisan_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed", models.StatusCompleted).
		Where("artisan_id IN ? AND status <> ?", artisanIDs, models.StatusCancelled).
		Group("artisan_id").
		Scan(&orderRows).Error
	if err != nil {
		return nil, dbError(err, "aggregate orders", nil)
	}

	for _, row := range reviewRows {
		st := stats[row.ArtisanID]
		st.Rating = math.Round(row.Rating*100) / 100
		st.ReviewCount = row.Reviews
		stats[row.ArtisanID] = st
	}
	for _, row := range orderRows {
		st := stats[row.ArtisanID]
		st.TotalOrders = row.Total
		st.CompletedOrders = row.Completed
		stats[row.ArtisanID] = st
	}
	return stats, nil
}

// Get returns an artisan's storefront with services and portfolio
func (s *ArtisanService) Get(ctx context.Context, artisanID uint) (ArtisanDetail, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ? AND role = ?", artisanID, models.RoleArtisan).First(&user).Error; err != nil {
		return ArtisanDetail{}, dbError(err, "find artisan", apperrors.NotFound("ARTISAN_NOT_FOUND", "Artisan not found"))
	}

	var profile models.ArtisanProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", artisanID).Limit(1).Find(&profile).Error
	if err != nil {
		return ArtisanDetail{}, dbError(err, "load profile", nil)
	}

	stats, err := s.Stats(ctx, []uint{artisanID})
	if err != nil {
		return ArtisanDetail{}, err
	}

	detail := ArtisanDetail{
		ArtisanSummary: ArtisanSummary{
			ID:           user.ID,
			Name:         user.Name,
			Bio:          profile.Bio,
			Category:     profile.Category,
			Location:     profile.Location,
			Skills:       profile.Skills,
			Featured:     profile.Featured,
			ArtisanStats: stats[artisanID],
		},
		Services:  []models.ServiceOffering{},
		Portfolio: []models.PortfolioItem{},
	}

	if err := s.db.WithContext(ctx).Where("artisan_id = ?", artisanID).Order("id ASC").Find(&detail.Services).Error; err != nil {
		return ArtisanDetail{}, dbError(err, "load services", nil)
	}
	counts, err := serviceOrderCounts(ctx, s.db, serviceIDs(detail.Services))
	if err != nil {
		return ArtisanDetail{}, err
	}
	for i := range detail.Services {
		detail.Services[i].OrderCount = counts[detail.Services[i].ID]
	}

	err = s.db.WithContext(ctx).
		Where("artisan_id = ?", artisanID).
		Order("featured DESC, view_count DESC, id ASC").
		Find(&detail.Portfolio).Error
	if err != nil {
		return ArtisanDetail{}, dbError(err, "load portfolio", nil)
	}
	signImages(ctx, s.images, detail.Portfolio)

	return detail, nil
}

// UpsertProfile creates or edits the calling artisan's storefront
func (s *ArtisanService) UpsertProfile(ctx context.Context, actor lifecycle.Actor, input ProfileInput) (models.ArtisanProfile, error) {
	if actor.Role != models.RoleArtisan {
		return models.ArtisanProfile{}, apperrors.Forbidden("FORBIDDEN", "Only artisans have a storefront profile")
	}

	var profile models.ArtisanProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", actor.UserID).Limit(1).Find(&profile).Error
	if err != nil {
		return models.ArtisanProfile{}, dbError(err, "load profile", nil)
	}

	profile.UserID = actor.UserID
	if input.Bio != nil {
		profile.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Category != nil {
		profile.Category = strings.ToLower(strings.TrimSpace(*input.Category))
	}
	if input.Location != nil {
		profile.Location = strings.TrimSpace(*input.Location)
	}
	if input.Skills != nil {
		profile.Skills = strings.TrimSpace(*input.Skills)
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return models.ArtisanProfile{}, dbError(err, "save profile", nil)
	}
	return profile, nil
}

func serviceIDs(offerings []models.ServiceOffering) []uint {
	ids := make([]uint, len(offerings))
	for i, o := range offerings {
		ids[i] = o.ID
	}
	return ids
}

// serviceOrderCounts counts the non-cancelled orders placed against each listing
func serviceOrderCounts(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		ServiceID uint
		Orders    int64
	}
	err := db.WithContext(ctx).Model(&models.Order{}).
		Select("service_id, COUNT(*) AS orders").
		Where("service_id IN ? AND status <> ?", ids, models.StatusCancelled).
		Group("service_id").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "count service orders", nil)
	}
	for _, row := range rows {
		counts[row.ServiceID] = row.Orders
	}
	return counts, nil
}

package services

import (
	"context"
	"strings"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/lifecycle"
	"github.com/ducali/ducali-api/logger"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceInput describes a new service listing
type ServiceInput struct {
	Title       string
	Description string
	Category    string
	BasePrice   decimal.Decimal
}

// PortfolioInput describes a new portfolio piece
type PortfolioInput struct {
	Title       string
	Description string
	Category    string
	ImageKey    *string
	Featured    bool
}

// CatalogService manages artisans' service listings and portfolio pieces
type CatalogService struct {
	db     *gorm.DB
	images ImageService
}

// NewCatalogService creates a catalog service. images may be nil when S3 is not configured.
func NewCatalogService(db *gorm.DB, images ImageService) *CatalogService {
	return &CatalogService{db: db, images: images}
}

// CreateService adds a listing for the calling artisan
func (s *CatalogService) CreateService(ctx context.Context, actor lifecycle.Actor, input ServiceInput) (models.ServiceOffering, error) {
	if actor.Role != models.RoleArtisan {
		return models.ServiceOffering{}, apperrors.Forbidden("FORBIDDEN", "Only artisans can list services")
	}
	if strings.TrimSpace(input.Title) == "" {
		return models.ServiceOffering{}, apperrors.Validation("VALIDATION_ERROR", "Title is required")
	}
	if input.BasePrice.IsNegative() {
		return models.ServiceOffering{}, apperrors.Validation("INVALID_PRICE", "Base price must not be negative")
	}

	offering := models.ServiceOffering{
		ArtisanID:   actor.UserID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		BasePrice:   input.BasePrice,
	}
	if err := s.db.WithContext(ctx).Create(&offering).Error; err != nil {
		return models.ServiceOffering{}, dbError(err, "create service", nil)
	}
	return offering, nil
}

// CreatePortfolioItem adds a showcase piece for the calling artisan
func (s *CatalogService) CreatePortfolioItem(ctx context.Context, actor lifecycle.Actor, input PortfolioInput) (models.PortfolioItem, error) {
	if actor.Role != models.RoleArtisan {
		return models.PortfolioItem{}, apperrors.Forbidden("FORBIDDEN", "Only artisans can add portfolio items")
	}
	if strings.TrimSpace(input.Title) == "" {
		return models.PortfolioItem{}, apperrors.Validation("VALIDATION_ERROR", "Title is required")
	}

	if input.ImageKey != nil {
		// without storage configured only the key's shape can be checked
		var err error
		if s.images != nil {
			err = s.images.VerifyImage(ctx, *input.ImageKey)
		} else {
			err = utils.ValidateImageKey(*input.ImageKey)
		}
		if err != nil {
			return models.PortfolioItem{}, err
		}
	}

	item := models.PortfolioItem{
		ArtisanID:   actor.UserID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		ImageKey:    input.ImageKey,
		Featured:    input.Featured,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return models.PortfolioItem{}, dbError(err, "create portfolio item", nil)
	}
	items := []models.PortfolioItem{item}
	signImages(ctx, s.images, items)
	return items[0], nil
}

// ViewPortfolioItem counts a view and returns the item with a signed image URL
func (s *CatalogService) ViewPortfolioItem(ctx context.Context, id uint) (models.PortfolioItem, error) {
	result := s.db.WithContext(ctx).
		Model(&models.PortfolioItem{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return models.PortfolioItem{}, dbError(result.Error, "count portfolio view", nil)
	}
	if result.RowsAffected == 0 {
		return models.PortfolioItem{}, apperrors.NotFound("PORTFOLIO_NOT_FOUND", "Portfolio item not found")
	}

	var item models.PortfolioItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return models.PortfolioItem{}, dbError(err, "load portfolio item", apperrors.NotFound("PORTFOLIO_NOT_FOUND", "Portfolio item not found"))
	}

	items := []models.PortfolioItem{item}
	signImages(ctx, s.images, items)
	return items[0], nil
}

// signImages fills ImageURL for items with an image key. Signing failures leave the URL empty.
func signImages(ctx context.Context, images ImageService, items []models.PortfolioItem) {
	if images == nil {
		return
	}
	for i := range items {
		if items[i].ImageKey == nil {
			continue
		}
		url, err := images.GetImageURL(ctx, *items[i].ImageKey)
		if err != nil {
			logger.L().Warn("failed to sign portfolio image", zap.Uint("portfolio_id", items[i].ID), zap.Error(err))
			continue
		}
		items[i].ImageURL = &url
	}
}

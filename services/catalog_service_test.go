package services

import (
	"context"
	"testing"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CreateService(t *testing.T) {
	db := testutil.NewTestDB(t)
	service := NewCatalogService(db, nil)
	ctx := context.Background()

	artisan := testutil.CreateArtisan(t, db, "auth0|artisan", "Avery Artisan", "ceramics", "Porto")
	customer := testutil.CreateUser(t, db, "auth0|customer", "Casey Customer", models.RoleCustomer)

	offering, err := service.CreateService(ctx, actorOf(artisan), ServiceInput{
		Title:     " Custom mug ",
		Category:  "Ceramics",
		BasePrice: decimal.RequireFromString("35.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Custom mug", offering.Title)
	assert.Equal(t, "ceramics", offering.Category)
	assert.Equal(t, artisan.ID, offering.ArtisanID)

	tests := []struct {
		name     string
		input    ServiceInput
		wantCode string
	}{
		{"missing title", ServiceInput{BasePrice: decimal.NewFromInt(10)}, "VALIDATION_ERROR"},
		{"negative price", ServiceInput{Title: "Bowl", BasePrice: decimal.NewFromInt(-1)}, "INVALID_PRICE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateService(ctx, actorOf(artisan), tt.input)
			assert.Equal(t, tt.wantCode, apperrors.From(err).Code)
		})
	}

	_, err = service.CreateService(ctx, actorOf(customer), ServiceInput{Title: "Bowl"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestCatalogService_CreatePortfolioItem(t *testing.T) {
	db := testutil.NewTestDB(t)
	images := NewMockImageService("portfolio/vase.png")
	service := NewCatalogService(db, images)
	ctx := context.Background()
	artisan := testutil.CreateArtisan(t, db, "auth0|artisan", "Avery Artisan", "ceramics", "Porto")

	key := "portfolio/vase.png"
	item, err := service.CreatePortfolioItem(ctx, actorOf(artisan), PortfolioInput{Title: "Blue vase", ImageKey: &key})
	require.NoError(t, err)
	require.NotNil(t, item.ImageURL)
	assert.Equal(t, "https://mock-s3.example.com/portfolio/vase.png", *item.ImageURL)

	missing := "portfolio/never-uploaded.png"
	_, err = service.CreatePortfolioItem(ctx, actorOf(artisan), PortfolioInput{Title: "Ghost", ImageKey: &missing})
	assert.Equal(t, "IMAGE_NOT_FOUND", apperrors.From(err).Code)

	wrongFormat := "portfolio/vase.gif"
	_, err = service.CreatePortfolioItem(ctx, actorOf(artisan), PortfolioInput{Title: "Gif", ImageKey: &wrongFormat})
	assert.Equal(t, "INVALID_FILE_FORMAT", apperrors.From(err).Code)

	noImage, err := service.CreatePortfolioItem(ctx, actorOf(artisan), PortfolioInput{Title: "Sketch only"})
	require.NoError(t, err)
	assert.Nil(t, noImage.ImageURL)
}

func TestCatalogService_CreatePortfolioItem_WithoutStorage(t *testing.T) {
	db := testutil.NewTestDB(t)
	service := NewCatalogService(db, nil)
	ctx := context.Background()
	artisan := testutil.CreateArtisan(t, db, "auth0|artisan", "Avery Artisan", "ceramics", "Porto")

	key := "portfolio/plate.jpg"
	item, err := service.CreatePortfolioItem(ctx, actorOf(artisan), PortfolioInput{Title: "Plate", ImageKey: &key})
	require.NoError(t, err)
	assert.Nil(t, item.ImageURL)

	outside := "../secrets/plate.jpg"
	_, err = service.CreatePortfolioItem(ctx, actorOf(artisan), PortfolioInput{Title: "Plate", ImageKey: &outside})
	assert.Equal(t, "INVALID_IMAGE_KEY", apperrors.From(err).Code)
}

func TestCatalogService_ViewPortfolioItem(t *testing.T) {
	db := testutil.NewTestDB(t)
	service := NewCatalogService(db, NewMockImageService("portfolio/bowl.webp"))
	ctx := context.Background()
	artisan := testutil.CreateArtisan(t, db, "auth0|artisan", "Avery Artisan", "ceramics", "Porto")

	key := "portfolio/bowl.webp"
	item, err := service.CreatePortfolioItem(ctx, actorOf(artisan), PortfolioInput{Title: "Bowl", ImageKey: &key})
	require.NoError(t, err)

	viewed, err := service.ViewPortfolioItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), viewed.ViewCount)
	require.NotNil(t, viewed.ImageURL)

	viewed, err = service.ViewPortfolioItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), viewed.ViewCount)

	_, err = service.ViewPortfolioItem(ctx, 9999)
	assert.Equal(t, "PORTFOLIO_NOT_FOUND", apperrors.From(err).Code)
}

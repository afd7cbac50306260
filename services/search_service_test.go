package services

import (
	"context"
	"testing"

	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type searchFixture struct {
	db      *gorm.DB
	service *SearchService
	potter  *models.User
	smith   *models.User
	weaver  *models.User
}

func newSearchFixture(t *testing.T) *searchFixture {
	db := testutil.NewTestDB(t)
	f := &searchFixture{
		db:      db,
		service: NewSearchService(db, NewMockImageService()),
		potter:  testutil.CreateArtisan(t, db, "auth0|potter", "Pat Potter", "ceramics", "Porto"),
		smith:   testutil.CreateArtisan(t, db, "auth0|smith", "Sasha Smith", "jewelry", "Lisbon"),
		weaver:  testutil.CreateArtisan(t, db, "auth0|weaver", "Wren Weaver", "textiles", "Porto"),
	}
	customer := testutil.CreateUser(t, db, "auth0|customer", "Casey Customer", models.RoleCustomer)

	createReview(t, db, testutil.CreateOrder(t, db, customer, f.smith, models.StatusCompleted), 5)
	createReview(t, db, testutil.CreateOrder(t, db, customer, f.potter, models.StatusCompleted), 4)
	testutil.CreateOrder(t, db, customer, f.potter, models.StatusCompleted)

	mug := models.ServiceOffering{ArtisanID: f.potter.ID, Title: "Custom mug", Category: "ceramics", BasePrice: decimal.NewFromInt(30)}
	vase := models.ServiceOffering{ArtisanID: f.potter.ID, Title: "Large vase", Category: "ceramics", BasePrice: decimal.NewFromInt(120)}
	ring := models.ServiceOffering{ArtisanID: f.smith.ID, Title: "Signet ring", Description: "Engraved custom crest", Category: "jewelry", BasePrice: decimal.NewFromInt(250)}
	for _, o := range []*models.ServiceOffering{&mug, &vase, &ring} {
		require.NoError(t, db.Create(o).Error)
	}
	order := testutil.CreateOrder(t, db, customer, f.potter, models.StatusQuoteRequested)
	require.NoError(t, db.Model(order).Update("service_id", vase.ID).Error)

	key := "portfolio/scarf.png"
	items := []models.PortfolioItem{
		{ArtisanID: f.weaver.ID, Title: "Wool scarf", Category: "textiles", ViewCount: 10},
		{ArtisanID: f.weaver.ID, Title: "Silk scarf", Category: "textiles", ViewCount: 50},
		{ArtisanID: f.potter.ID, Title: "Glazed custom bowl", Category: "ceramics", ViewCount: 5, Featured: true, ImageKey: &key},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}
	return f
}

func TestSearchService_EmptyQueryReturnsEverythingRanked(t *testing.T) {
	f := newSearchFixture(t)

	results, err := f.service.Search(context.Background(), SearchParams{})
	require.NoError(t, err)

	require.Len(t, results.Artisans.Items, 3)
	assert.Equal(t, f.smith.ID, results.Artisans.Items[0].ID, "highest rating first")
	assert.Equal(t, f.potter.ID, results.Artisans.Items[1].ID)
	assert.Equal(t, f.weaver.ID, results.Artisans.Items[2].ID)
	assert.Equal(t, int64(2), results.Artisans.Items[1].CompletedOrders)

	require.Len(t, results.Services.Items, 3)
	assert.Equal(t, "Large vase", results.Services.Items[0].Title, "most ordered first")
	assert.Equal(t, int64(1), results.Services.Items[0].OrderCount)
	assert.Equal(t, "Custom mug", results.Services.Items[1].Title, "ties broken by id")

	require.Len(t, results.Portfolio.Items, 3)
	assert.Equal(t, "Glazed custom bowl", results.Portfolio.Items[0].Title, "featured first")
	require.NotNil(t, results.Portfolio.Items[0].ImageURL)
	assert.Equal(t, "Silk scarf", results.Portfolio.Items[1].Title, "then by views")

	assert.Equal(t, int64(3), results.Artisans.Pagination.Total)
	assert.Equal(t, 1, results.Services.Pagination.TotalPages)
}

func TestSearchService_QueryIsCaseInsensitiveSubstring(t *testing.T) {
	f := newSearchFixture(t)

	results, err := f.service.Search(context.Background(), SearchParams{Query: "CUSTOM"})
	require.NoError(t, err)

	assert.Empty(t, results.Artisans.Items)
	titles := []string{}
	for _, s := range results.Services.Items {
		titles = append(titles, s.Title)
	}
	assert.ElementsMatch(t, []string{"Custom mug", "Signet ring"}, titles)
	require.Len(t, results.Portfolio.Items, 1)
	assert.Equal(t, "Glazed custom bowl", results.Portfolio.Items[0].Title)
}

func TestSearchService_Filters(t *testing.T) {
	f := newSearchFixture(t)
	ctx := context.Background()

	minRating := 4.5
	results, err := f.service.Search(ctx, SearchParams{MinRating: &minRating})
	require.NoError(t, err)
	require.Len(t, results.Artisans.Items, 1)
	assert.Equal(t, f.smith.ID, results.Artisans.Items[0].ID)

	maxPrice := decimal.NewFromInt(100)
	results, err = f.service.Search(ctx, SearchParams{MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, results.Services.Items, 1)
	assert.Equal(t, "Custom mug", results.Services.Items[0].Title)

	results, err = f.service.Search(ctx, SearchParams{Location: "porto"})
	require.NoError(t, err)
	assert.Len(t, results.Artisans.Items, 2)
	assert.Len(t, results.Services.Items, 2)
	assert.Len(t, results.Portfolio.Items, 3)

	results, err = f.service.Search(ctx, SearchParams{Category: "Textiles"})
	require.NoError(t, err)
	require.Len(t, results.Artisans.Items, 1)
	assert.Equal(t, f.weaver.ID, results.Artisans.Items[0].ID)
	assert.Empty(t, results.Services.Items)
	assert.Len(t, results.Portfolio.Items, 2)
}

func TestSearchService_PaginatesEachListSeparately(t *testing.T) {
	f := newSearchFixture(t)

	results, err := f.service.Search(context.Background(), SearchParams{Page: 2, Limit: 2})
	require.NoError(t, err)

	assert.Len(t, results.Artisans.Items, 1)
	assert.Len(t, results.Services.Items, 1)
	assert.Len(t, results.Portfolio.Items, 1)
	assert.Equal(t, 2, results.Artisans.Pagination.Page)
	assert.Equal(t, 2, results.Artisans.Pagination.TotalPages)

	results, err = f.service.Search(context.Background(), SearchParams{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.NotNil(t, results.Artisans.Items)
	assert.Empty(t, results.Artisans.Items)
}

func TestSearchService_WildcardsMatchLiterally(t *testing.T) {
	f := newSearchFixture(t)

	results, err := f.service.Search(context.Background(), SearchParams{Query: "%"})
	require.NoError(t, err)
	assert.Empty(t, results.Artisans.Items)
	assert.Empty(t, results.Services.Items)
	assert.Empty(t, results.Portfolio.Items)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%mug%", likePattern("mug"))
	assert.Equal(t, "%100!%!_off!!%", likePattern("100%_off!"))
}

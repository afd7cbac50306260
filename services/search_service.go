package services

import (
	"context"
	"sort"
	"strings"

	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// SearchParams are the marketplace browse filters. Empty fields do not filter.
type SearchParams struct {
	Query     string
	Category  string
	Location  string
	MinRating *float64
	MaxPrice  *decimal.Decimal
	Page      int
	Limit     int
}

// ArtisanResults is one page of matching artisans
type ArtisanResults struct {
	Items      []ArtisanSummary `json:"items"`
	Pagination utils.Pagination `json:"pagination"`
}

// ServiceResults is one page of matching service listings
type ServiceResults struct {
	Items      []models.ServiceOffering `json:"items"`
	Pagination utils.Pagination         `json:"pagination"`
}

// PortfolioResults is one page of matching portfolio pieces
type PortfolioResults struct {
	Items      []models.PortfolioItem `json:"items"`
	Pagination utils.Pagination       `json:"pagination"`
}

// SearchResults holds the three independently paginated result lists
type SearchResults struct {
	Artisans  ArtisanResults   `json:"artisans"`
	Services  ServiceResults   `json:"services"`
	Portfolio PortfolioResults `json:"portfolio"`
}

// SearchService runs the marketplace-wide search
type SearchService struct {
	db       *gorm.DB
	artisans *ArtisanService
	images   ImageService
}

// NewSearchService creates a search service. images may be nil when S3 is not configured.
func NewSearchService(db *gorm.DB, images ImageService) *SearchService {
	return &SearchService{db: db, artisans: NewArtisanService(db, images), images: images}
}

// Search runs the artisan, service and portfolio searches concurrently.
// The first failure cancels the others and is returned.
func (s *SearchService) Search(ctx context.Context, params SearchParams) (SearchResults, error) {
	params.Page, params.Limit = utils.NormalizePage(params.Page, params.Limit)
	params.Query = strings.ToLower(strings.TrimSpace(params.Query))
	params.Category = strings.ToLower(strings.TrimSpace(params.Category))
	params.Location = strings.ToLower(strings.TrimSpace(params.Location))

	var results SearchResults
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results.Artisans, err = s.searchArtisans(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		results.Services, err = s.searchServices(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		results.Portfolio, err = s.searchPortfolio(gctx, params)
		return err
	})
	if err := g.Wait(); err != nil {
		return SearchResults{}, err
	}
	return results, nil
}

type artisanRow struct {
	ID       uint
	Name     string
	Bio      *string
	Category *string
	Location *string
	Skills   *string
	Featured *bool
}

// searchArtisans filters on the profile in SQL, then ranks on derived stats in memory
func (s *SearchService) searchArtisans(ctx context.Context, params SearchParams) (ArtisanResults, error) {
	q := s.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.name, artisan_profiles.bio, artisan_profiles.category, " +
			"artisan_profiles.location, artisan_profiles.skills, artisan_profiles.featured").
		Joins("LEFT JOIN artisan_profiles ON artisan_profiles.user_id = users.id").
		Where("users.role = ? AND users.deleted_at IS NULL", models.RoleArtisan)

	if params.Query != "" {
		pattern := likePattern(params.Query)
		q = q.Where("LOWER(users.name) LIKE ? ESCAPE '!' OR LOWER(artisan_profiles.bio) LIKE ? ESCAPE '!' "+
			"OR LOWER(artisan_profiles.category) LIKE ? ESCAPE '!' OR LOWER(artisan_profiles.skills) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern, pattern)
	}
	if params.Category != "" {
		q = q.Where("LOWER(artisan_profiles.category) = ?", params.Category)
	}
	if params.Location != "" {
		q = q.Where("LOWER(artisan_profiles.location) LIKE ? ESCAPE '!'", likePattern(params.Location))
	}

	var rows []artisanRow
	if err := q.Scan(&rows).Error; err != nil {
		return ArtisanResults{}, dbError(err, "search artisans", nil)
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	stats, err := s.artisans.Stats(ctx, ids)
	if err != nil {
		return ArtisanResults{}, err
	}

	matches := make([]ArtisanSummary, 0, len(rows))
	for _, row := range rows {
		summary := row.summary(stats[row.ID])
		if params.MinRating != nil && summary.Rating < *params.MinRating {
			continue
		}
		matches = append(matches, summary)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.CompletedOrders != b.CompletedOrders {
			return a.CompletedOrders > b.CompletedOrders
		}
		return a.ID < b.ID
	})

	return ArtisanResults{
		Items:      page(matches, params.Page, params.Limit),
		Pagination: utils.NewPagination(params.Page, params.Limit, int64(len(matches))),
	}, nil
}

func (r artisanRow) summary(stats models.ArtisanStats) ArtisanSummary {
	summary := ArtisanSummary{ID: r.ID, Name: r.Name, ArtisanStats: stats}
	if r.Bio != nil {
		summary.Bio = *r.Bio
	}
	if r.Category != nil {
		summary.Category = *r.Category
	}
	if r.Location != nil {
		summary.Location = *r.Location
	}
	if r.Skills != nil {
		summary.Skills = *r.Skills
	}
	if r.Featured != nil {
		summary.Featured = *r.Featured
	}
	return summary
}

// searchServices ranks listings by how many orders they drew, so paging happens after counting
func (s *SearchService) searchServices(ctx context.Context, params SearchParams) (ServiceResults, error) {
	q := s.db.WithContext(ctx).
		Model(&models.ServiceOffering{}).
		Select("service_offerings.*").
		Joins("LEFT JOIN artisan_profiles ON artisan_profiles.user_id = service_offerings.artisan_id")

	if params.Query != "" {
		pattern := likePattern(params.Query)
		q = q.Where("LOWER(service_offerings.title) LIKE ? ESCAPE '!' OR LOWER(service_offerings.description) LIKE ? ESCAPE '!'",
			pattern, pattern)
	}
	if params.Category != "" {
		q = q.Where("LOWER(service_offerings.category) = ?", params.Category)
	}
	if params.Location != "" {
		q = q.Where("LOWER(artisan_profiles.location) LIKE ? ESCAPE '!'", likePattern(params.Location))
	}
	if params.MaxPrice != nil {
		q = q.Where("service_offerings.base_price <= ?", *params.MaxPrice)
	}

	var offerings []models.ServiceOffering
	if err := q.Find(&offerings).Error; err != nil {
		return ServiceResults{}, dbError(err, "search services", nil)
	}

	counts, err := serviceOrderCounts(ctx, s.db, serviceIDs(offerings))
	if err != nil {
		return ServiceResults{}, err
	}
	for i := range offerings {
		offerings[i].OrderCount = counts[offerings[i].ID]
	}
	sort.SliceStable(offerings, func(i, j int) bool {
		if offerings[i].OrderCount != offerings[j].OrderCount {
			return offerings[i].OrderCount > offerings[j].OrderCount
		}
		return offerings[i].ID < offerings[j].ID
	})

	return ServiceResults{
		Items:      page(offerings, params.Page, params.Limit),
		Pagination: utils.NewPagination(params.Page, params.Limit, int64(len(offerings))),
	}, nil
}

func (s *SearchService) searchPortfolio(ctx context.Context, params SearchParams) (PortfolioResults, error) {
	q := s.db.WithContext(ctx).
		Model(&models.PortfolioItem{}).
		Joins("LEFT JOIN artisan_profiles ON artisan_profiles.user_id = portfolio_items.artisan_id")

	if params.Query != "" {
		pattern := likePattern(params.Query)
		q = q.Where("LOWER(portfolio_items.title) LIKE ? ESCAPE '!' OR LOWER(portfolio_items.description) LIKE ? ESCAPE '!'",
			pattern, pattern)
	}
	if params.Category != "" {
		q = q.Where("LOWER(portfolio_items.category) = ?", params.Category)
	}
	if params.Location != "" {
		q = q.Where("LOWER(artisan_profiles.location) LIKE ? ESCAPE '!'", likePattern(params.Location))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return PortfolioResults{}, dbError(err, "count portfolio", nil)
	}

	items := []models.PortfolioItem{}
	err := q.Session(&gorm.Session{}).
		Select("portfolio_items.*").
		Order("portfolio_items.featured DESC, portfolio_items.view_count DESC, portfolio_items.id ASC").
		Offset(utils.Offset(params.Page, params.Limit)).
		Limit(params.Limit).
		Find(&items).Error
	if err != nil {
		return PortfolioResults{}, dbError(err, "search portfolio", nil)
	}
	signImages(ctx, s.images, items)

	return PortfolioResults{
		Items:      items,
		Pagination: utils.NewPagination(params.Page, params.Limit, total),
	}, nil
}

// likePattern wraps a lowered term for a substring LIKE, escaping wildcards with '!'
func likePattern(term string) string {
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(term)
	return "%" + escaped + "%"
}

func page[T any](items []T, pageNum, limit int) []T {
	start := utils.Offset(pageNum, limit)
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}


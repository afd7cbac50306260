// Package store persists orders with optimistic versioning.
package store

import (
	"context"

	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/utils"
)

// OrderFilter narrows an order listing. Zero fields do not filter.
type OrderFilter struct {
	CustomerID uint
	ArtisanID  uint
	// PartyID matches orders where the user is either the customer or the artisan
	PartyID uint
	Status  models.OrderStatus
	// Query is a case-insensitive substring of the description
	Query string
	Page  int
	Limit int
}

// Normalize applies paging defaults and bounds
func (f OrderFilter) Normalize() OrderFilter {
	f.Page, f.Limit = utils.NormalizePage(f.Page, f.Limit)
	return f
}

// Offset is the number of rows skipped before the requested page
func (f OrderFilter) Offset() int {
	return utils.Offset(f.Page, f.Limit)
}

// OrderStore is the persistence boundary for orders.
// Update is a compare-and-swap on Version: it fails with a VERSION_CONFLICT
// error when the stored version differs from expectedVersion.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id uint) (models.Order, error)
	Update(ctx context.Context, next models.Order, expectedVersion int) (models.Order, error)
	ListByCustomer(ctx context.Context, customerID uint, page, limit int) ([]models.Order, int64, error)
	ListByArtisan(ctx context.Context, artisanID uint, page, limit int) ([]models.Order, int64, error)
	Search(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
}

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ducali/ducali-api/models"
)

// MemoryOrderStore is an in-process OrderStore used by tests and local tooling
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[uint]models.Order
	nextID uint
	now    func() time.Time
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[uint]models.Order), now: time.Now}
}

func (s *MemoryOrderStore) Create(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return translate(err, "create order")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	order.ID = s.nextID
	if order.Version == 0 {
		order.Version = 1
	}
	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.ID] = *order
	return nil
}

func (s *MemoryOrderStore) Get(ctx context.Context, id uint) (models.Order, error) {
	if err := ctx.Err(); err != nil {
		return models.Order{}, translate(err, "get order")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, orderNotFound(id)
	}
	order.Status = order.Status.Canonical()
	return order, nil
}

func (s *MemoryOrderStore) Update(ctx context.Context, next models.Order, expectedVersion int) (models.Order, error) {
	if err := ctx.Err(); err != nil {
		return models.Order{}, translate(err, "update order")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.orders[next.ID]
	if !ok {
		return models.Order{}, orderNotFound(next.ID)
	}
	if current.Version != expectedVersion {
		return models.Order{}, versionConflict(next.ID)
	}

	next.CustomerID = current.CustomerID
	next.ArtisanID = current.ArtisanID
	next.CreatedAt = current.CreatedAt
	next.Version = expectedVersion + 1
	next.UpdatedAt = s.now()
	s.orders[next.ID] = next
	return next, nil
}

func (s *MemoryOrderStore) ListByCustomer(ctx context.Context, customerID uint, page, limit int) ([]models.Order, int64, error) {
	return s.Search(ctx, OrderFilter{CustomerID: customerID, Page: page, Limit: limit})
}

func (s *MemoryOrderStore) ListByArtisan(ctx context.Context, artisanID uint, page, limit int) ([]models.Order, int64, error) {
	return s.Search(ctx, OrderFilter{ArtisanID: artisanID, Page: page, Limit: limit})
}

func (s *MemoryOrderStore) Search(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, translate(err, "list orders")
	}
	filter = filter.Normalize()
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	s.mu.Lock()
	var matched []models.Order
	for _, order := range s.orders {
		if filter.CustomerID != 0 && order.CustomerID != filter.CustomerID {
			continue
		}
		if filter.ArtisanID != 0 && order.ArtisanID != filter.ArtisanID {
			continue
		}
		if filter.PartyID != 0 && !order.IsParty(filter.PartyID) {
			continue
		}
		if filter.Status != "" && order.Status.Canonical() != filter.Status.Canonical() {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(order.Description), q) {
			continue
		}
		order.Status = order.Status.Canonical()
		matched = append(matched, order)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

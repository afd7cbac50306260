package services

import (
	"context"
	"time"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/lifecycle"
	"github.com/ducali/ducali-api/logger"
	"github.com/ducali/ducali-api/metrics"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// notifyTimeout bounds delivery after commit, detached from the request deadline
const notifyTimeout = 5 * time.Second

// OrderService runs quote requests and lifecycle transitions against the order store
type OrderService struct {
	db       *gorm.DB
	orders   store.OrderStore
	notifier Notifier
	now      func() time.Time
}

// NewOrderService creates an order service. db is used for user and listing lookups only.
func NewOrderService(db *gorm.DB, orders store.OrderStore, notifier Notifier) *OrderService {
	return &OrderService{db: db, orders: orders, notifier: notifier, now: time.Now}
}

// RequestQuote opens a new order in QUOTE_REQUESTED
func (s *OrderService) RequestQuote(ctx context.Context, actor lifecycle.Actor, req lifecycle.QuoteRequest) (models.Order, error) {
	order, event, err := lifecycle.NewQuoteRequest(actor, req)
	if err != nil {
		return models.Order{}, err
	}

	var artisan models.User
	if err := s.db.WithContext(ctx).First(&artisan, req.ArtisanID).Error; err != nil {
		return models.Order{}, dbError(err, "find artisan", apperrors.NotFound("ARTISAN_NOT_FOUND", "Artisan not found"))
	}
	if artisan.Role != models.RoleArtisan {
		return models.Order{}, apperrors.Validation("INVALID_ARTISAN", "Quotes can only be requested from artisans")
	}

	if req.ServiceID != nil {
		var offering models.ServiceOffering
		if err := s.db.WithContext(ctx).First(&offering, *req.ServiceID).Error; err != nil {
			return models.Order{}, dbError(err, "find service", apperrors.NotFound("SERVICE_NOT_FOUND", "Service not found"))
		}
		if offering.ArtisanID != req.ArtisanID {
			return models.Order{}, apperrors.Validation("INVALID_SERVICE", "Service is not offered by this artisan")
		}
	}

	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, err
	}

	event.OrderID = order.ID
	event.Payload["order_id"] = order.ID
	s.announce(ctx, event)

	logger.L().Info("quote requested",
		zap.Uint("order_id", order.ID),
		zap.Uint("customer_id", order.CustomerID),
		zap.Uint("artisan_id", order.ArtisanID))
	return order, nil
}

// Get returns an order visible to actor: a party to it, or an admin
func (s *OrderService) Get(ctx context.Context, actor lifecycle.Actor, id uint) (models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if actor.Role != models.RoleAdmin && !order.IsParty(actor.UserID) {
		return models.Order{}, apperrors.Forbidden("FORBIDDEN", "You do not have permission to view this order")
	}
	return order, nil
}

// List returns the actor's orders: placed by a customer, assigned to an artisan, or all for an admin
func (s *OrderService) List(ctx context.Context, actor lifecycle.Actor, page, limit int) ([]models.Order, int64, error) {
	switch actor.Role {
	case models.RoleCustomer:
		return s.orders.ListByCustomer(ctx, actor.UserID, page, limit)
	case models.RoleArtisan:
		return s.orders.ListByArtisan(ctx, actor.UserID, page, limit)
	case models.RoleAdmin:
		return s.orders.Search(ctx, store.OrderFilter{Page: page, Limit: limit})
	}
	return nil, 0, apperrors.Forbidden("FORBIDDEN", "Unknown role")
}

// Search is the admin order search
func (s *OrderService) Search(ctx context.Context, actor lifecycle.Actor, filter store.OrderFilter) ([]models.Order, int64, error) {
	if actor.Role != models.RoleAdmin {
		return nil, 0, apperrors.Forbidden("FORBIDDEN", "Only admins can search all orders")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.Validation("INVALID_STATUS", "Unknown order status")
	}
	return s.orders.Search(ctx, filter)
}

// Transition applies cmd to order id. expectedVersion, when set, is the version the
// caller last read; otherwise the version loaded here is used. The store write is a
// compare-and-swap on that version, so a concurrent change yields VERSION_CONFLICT.
// Notifications go out only after the write commits.
func (s *OrderService) Transition(ctx context.Context, actor lifecycle.Actor, id uint, cmd lifecycle.Command, expectedVersion *int) (models.Order, error) {
	log := logger.L().With(
		zap.Uint("order_id", id),
		zap.String("transition", string(cmd.Transition)),
		zap.Uint("user_id", actor.UserID))

	current, err := s.orders.Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}

	version := current.Version
	if expectedVersion != nil {
		if *expectedVersion != current.Version {
			metrics.OrderTransitions.WithLabelValues(string(cmd.Transition), "conflict").Inc()
			return models.Order{}, apperrors.Conflict("VERSION_CONFLICT", "Order was modified by another request, reload and retry")
		}
		version = *expectedVersion
	}

	next, event, err := lifecycle.Apply(current, actor, cmd, s.now().UTC())
	if err != nil {
		metrics.OrderTransitions.WithLabelValues(string(cmd.Transition), "rejected").Inc()
		log.Info("transition rejected", zap.Error(err))
		return models.Order{}, err
	}

	saved, err := s.orders.Update(ctx, next, version)
	if err != nil {
		outcome := "error"
		if apperrors.IsKind(err, apperrors.KindConflict) {
			outcome = "conflict"
		}
		metrics.OrderTransitions.WithLabelValues(string(cmd.Transition), outcome).Inc()
		log.Warn("transition not stored", zap.Error(err))
		return models.Order{}, err
	}
	saved.Customer = current.Customer
	saved.Artisan = current.Artisan

	metrics.OrderTransitions.WithLabelValues(string(cmd.Transition), "ok").Inc()
	log.Info("order transitioned",
		zap.String("from", string(current.Status)),
		zap.String("to", string(saved.Status)),
		zap.Int("version", saved.Version))

	s.announce(ctx, event)
	return saved, nil
}

// announce delivers event to each recipient. Failures are logged, never returned.
func (s *OrderService) announce(ctx context.Context, event lifecycle.Event) {
	deliver(ctx, s.notifier, string(event.Kind), event.Recipients, event.Payload)
}

func deliver(ctx context.Context, notifier Notifier, kind string, recipients []uint, payload map[string]interface{}) {
	if notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	for _, userID := range recipients {
		if userID == 0 {
			continue
		}
		if err := notifier.Notify(ctx, userID, kind, payload); err != nil {
			logger.L().Warn("notification failed",
				zap.Uint("user_id", userID),
				zap.String("kind", kind),
				zap.Error(err))
		}
	}
}

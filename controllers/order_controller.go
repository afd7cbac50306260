package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/lifecycle"
	"github.com/ducali/ducali-api/models"
	"github.com/ducali/ducali-api/services"
	"github.com/ducali/ducali-api/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents the request body for a quote request
type CreateOrderRequest struct {
	ArtisanID           uint   `json:"artisan_id" binding:"required"`
	ServiceID           *uint  `json:"service_id"`
	Description         string `json:"description" binding:"required,max=5000"`
	BudgetRange         string `json:"budget_range" binding:"max=100"`
	TimelinePreference  string `json:"timeline_preference" binding:"max=100"`
	SpecialRequirements string `json:"special_requirements" binding:"max=5000"`
}

// UpdateOrderRequest carries a lifecycle action and the inputs it needs.
// Version, when sent, must match the order's current version.
type UpdateOrderRequest struct {
	Action              string           `json:"action" binding:"required"`
	Version             *int             `json:"version"`
	Price               *decimal.Decimal `json:"price"`
	Timeline            string           `json:"timeline" binding:"max=100"`
	EstimatedCompletion *time.Time       `json:"estimated_completion"`
	Notes               string           `json:"notes" binding:"max=5000"`
	ProgressPercentage  *int             `json:"progress_percentage"`
	FinalPrice          *decimal.Decimal `json:"final_price"`
	Reason              string           `json:"reason" binding:"max=5000"`
	Resolution          string           `json:"resolution"`
}

// CancelOrderRequest is the optional body of DELETE /orders/:id
type CancelOrderRequest struct {
	Version *int `json:"version"`
}

func orderService() *services.OrderService {
	db := config.GetDB()
	return services.NewOrderService(db, store.NewGormOrderStore(db), services.GetNotifier())
}

// CreateOrder handles POST /api/v1/orders - a customer requests a quote from an artisan
func CreateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := orderService().RequestQuote(c.Request.Context(), actor, lifecycle.QuoteRequest{
		ArtisanID:           req.ArtisanID,
		ServiceID:           req.ServiceID,
		Description:         req.Description,
		BudgetRange:         req.BudgetRange,
		TimelinePreference:  req.TimelinePreference,
		SpecialRequirements: req.SpecialRequirements,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders - the caller's orders, newest first
func ListOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	orders, total, err := orderService().List(c.Request.Context(), actor, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, orders, page, limit, total)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := orderService().Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id - applies one lifecycle action
func UpdateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cmd := lifecycle.Command{
		Transition:          lifecycle.Transition(req.Action),
		Price:               req.Price,
		Timeline:            req.Timeline,
		EstimatedCompletion: req.EstimatedCompletion,
		Notes:               req.Notes,
		Progress:            req.ProgressPercentage,
		FinalPrice:          req.FinalPrice,
		Reason:              req.Reason,
		Resolution:          models.OrderStatus(req.Resolution),
	}

	order, err := orderService().Transition(c.Request.Context(), actor, id, cmd, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// CancelOrder handles DELETE /api/v1/orders/:id - cancels, the order row is kept
func CancelOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	order, err := orderService().Transition(c.Request.Context(), actor, id, lifecycle.Command{Transition: lifecycle.Cancel}, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// SearchOrders handles GET /api/v1/admin/orders - admin search by status, party and description
func SearchOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	filter := store.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Query:  c.Query("q"),
	}
	for param, target := range map[string]*uint{"customer_id": &filter.CustomerID, "artisan_id": &filter.ArtisanID} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, apperrors.Validation("INVALID_REQUEST", "Invalid "+param))
			return
		}
		*target = uint(id)
	}
	filter.Page, filter.Limit = pageParams(c)

	orders, total, err := orderService().Search(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, orders, filter.Page, filter.Limit, total)
}

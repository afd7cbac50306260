package lifecycle

import (
	"strings"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/models"
)

// QuoteRequest is what a customer submits to open an order with an artisan
type QuoteRequest struct {
	ArtisanID           uint
	ServiceID           *uint
	Description         string
	BudgetRange         string
	TimelinePreference  string
	SpecialRequirements string
}

// NewQuoteRequest builds the initial QUOTE_REQUESTED order. No price is set yet.
func NewQuoteRequest(actor Actor, req QuoteRequest) (models.Order, Event, error) {
	if actor.Role != models.RoleCustomer {
		return models.Order{}, Event{}, apperrors.Forbidden("FORBIDDEN", "Only customers can request quotes")
	}
	if req.ArtisanID == 0 {
		return models.Order{}, Event{}, apperrors.Validation("VALIDATION_ERROR", "Artisan is required")
	}
	if req.ArtisanID == actor.UserID {
		return models.Order{}, Event{}, apperrors.Validation("VALIDATION_ERROR", "Cannot request a quote from yourself")
	}
	if strings.TrimSpace(req.Description) == "" {
		return models.Order{}, Event{}, apperrors.Validation("VALIDATION_ERROR", "Project description is required")
	}

	order := models.Order{
		CustomerID:          actor.UserID,
		ArtisanID:           req.ArtisanID,
		ServiceID:           req.ServiceID,
		Description:         strings.TrimSpace(req.Description),
		BudgetRange:         req.BudgetRange,
		TimelinePreference:  req.TimelinePreference,
		SpecialRequirements: req.SpecialRequirements,
		Status:              models.StatusQuoteRequested,
		Version:             1,
	}

	event := Event{
		Kind:       KindQuoteRequested,
		Recipients: []uint{req.ArtisanID},
		Payload: map[string]interface{}{
			"status":              string(models.StatusQuoteRequested),
			"budget_range":        req.BudgetRange,
			"timeline_preference": req.TimelinePreference,
		},
	}
	return order, event, nil
}

package lifecycle

import (
	"fmt"
	"time"

	"github.com/ducali/ducali-api/apperrors"
	"github.com/ducali/ducali-api/models"
	"github.com/shopspring/decimal"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// Apply validates cmd against order and actor and returns the next order value and the event to announce.
// The input order is never modified. On error the returned order is the zero value.
func Apply(order models.Order, actor Actor, cmd Command, now time.Time) (models.Order, Event, error) {
	r, ok := rules[cmd.Transition]
	if !ok {
		return models.Order{}, Event{}, apperrors.Validation("UNKNOWN_ACTION", fmt.Sprintf("Unknown order action %q", cmd.Transition))
	}

	if err := authorize(order, actor, r.party, cmd.Transition); err != nil {
		return models.Order{}, Event{}, err
	}

	current := order.Status.Canonical()
	if !current.Valid() {
		return models.Order{}, Event{}, apperrors.InvalidState("INVALID_STATE", fmt.Sprintf("Order has unknown status %q", order.Status))
	}
	if !contains(r.from, current) {
		return models.Order{}, Event{}, stateError(cmd.Transition, current)
	}

	next := order
	next.Status = current
	event := Event{OrderID: order.ID, Payload: map[string]interface{}{"order_id": order.ID}}

	switch cmd.Transition {
	case SendQuote:
		if cmd.Price == nil {
			return models.Order{}, Event{}, apperrors.Validation("VALIDATION_ERROR", "Quoted price is required")
		}
		if err := nonNegative("Quoted price", cmd.Price); err != nil {
			return models.Order{}, Event{}, err
		}
		price := *cmd.Price
		next.QuotedPrice = &price
		next.QuoteTimeline = cmd.Timeline
		next.EstimatedCompletion = cmd.EstimatedCompletion
		next.QuoteNotes = cmd.Notes
		next.QuoteRevision = order.QuoteRevision + 1
		event.Kind = KindQuoteSent
		event.Recipients = []uint{order.CustomerID}
		event.Payload["quoted_price"] = price.String()
		event.Payload["timeline"] = cmd.Timeline

	case AcceptQuote:
		stampOnce(&next.AcceptedAt, now)
		stampOnce(&next.StartedAt, now)
		next.ProgressPercentage = MinProgress
		event.Kind = KindQuoteAccepted
		event.Recipients = []uint{order.ArtisanID}

	case RequestChanges:
		next.QuotedPrice = nil
		next.QuoteTimeline = ""
		next.EstimatedCompletion = nil
		next.QuoteNotes = ""
		next.ChangeRequest = cmd.Notes
		event.Kind = KindChangesRequested
		event.Recipients = []uint{order.ArtisanID}
		event.Payload["notes"] = cmd.Notes

	case StartWork:
		stampOnce(&next.StartedAt, now)
		next.ProgressPercentage = MinProgress
		event.Kind = KindWorkStarted
		event.Recipients = []uint{order.CustomerID}

	case UpdateProgress:
		if cmd.Progress == nil {
			return models.Order{}, Event{}, apperrors.Validation("VALIDATION_ERROR", "Progress percentage is required")
		}
		progress := *cmd.Progress
		if progress < MinProgress || progress > MaxProgress {
			return models.Order{}, Event{}, apperrors.Validation("INVALID_PROGRESS",
				fmt.Sprintf("Progress percentage must be between %d and %d", MinProgress, MaxProgress))
		}
		if progress < order.ProgressPercentage {
			return models.Order{}, Event{}, apperrors.Validation("INVALID_PROGRESS",
				fmt.Sprintf("Progress percentage cannot decrease from %d to %d", order.ProgressPercentage, progress))
		}
		next.ProgressPercentage = progress
		event.Kind = KindProgressUpdated
		event.Recipients = []uint{order.CustomerID}
		event.Payload["progress_percentage"] = progress

	case Complete:
		if err := complete(&next, cmd.FinalPrice, now); err != nil {
			return models.Order{}, Event{}, err
		}
		event.Kind = KindOrderCompleted
		event.Recipients = []uint{order.CustomerID}

	case Cancel:
		stampOnce(&next.CancelledAt, now)
		event.Kind = KindOrderCancelled
		event.Recipients = []uint{order.ArtisanID}

	case Dispute:
		if cmd.Reason == "" {
			return models.Order{}, Event{}, apperrors.Validation("VALIDATION_ERROR", "A reason is required to open a dispute")
		}
		stampOnce(&next.DisputedAt, now)
		next.DisputeReason = cmd.Reason
		event.Kind = KindOrderDisputed
		event.Recipients = []uint{order.Counterparty(actor.UserID)}
		event.Payload["reason"] = cmd.Reason

	case ResolveDispute:
		switch cmd.Resolution {
		case models.StatusCompleted:
			if err := complete(&next, cmd.FinalPrice, now); err != nil {
				return models.Order{}, Event{}, err
			}
		case models.StatusCancelled:
			stampOnce(&next.CancelledAt, now)
		default:
			return models.Order{}, Event{}, apperrors.Validation("VALIDATION_ERROR", "Resolution must be COMPLETED or CANCELLED")
		}
		next.ResolutionNote = cmd.Notes
		event.Kind = KindDisputeResolved
		event.Recipients = []uint{order.CustomerID, order.ArtisanID}
		event.Payload["resolution"] = string(cmd.Resolution)

	default:
		return models.Order{}, Event{}, apperrors.Internal(fmt.Sprintf("transition %q has no handler", cmd.Transition), nil)
	}

	if r.to != "" {
		next.Status = r.to
	} else {
		next.Status = cmd.Resolution
	}
	event.Payload["status"] = string(next.Status)

	return next, event, nil
}

func authorize(order models.Order, actor Actor, party Party, t Transition) error {
	var allowed bool
	switch party {
	case PartyCustomer:
		allowed = actor.Role == models.RoleCustomer && order.CustomerID == actor.UserID
	case PartyArtisan:
		allowed = actor.Role == models.RoleArtisan && order.ArtisanID == actor.UserID
	case PartyEither:
		allowed = (actor.Role == models.RoleCustomer || actor.Role == models.RoleArtisan) && order.IsParty(actor.UserID)
	case PartyAdmin:
		allowed = actor.Role == models.RoleAdmin
	}

	if !allowed {
		if party == PartyAdmin {
			return apperrors.Forbidden("FORBIDDEN", fmt.Sprintf("Only an admin can %s", humanize(t)))
		}
		return apperrors.Forbidden("FORBIDDEN", fmt.Sprintf("Only the %s on this order can %s", party, humanize(t)))
	}
	return nil
}

func stateError(t Transition, current models.OrderStatus) error {
	if t == Cancel {
		switch current {
		case models.StatusCancelled:
			return apperrors.InvalidState("INVALID_STATE", "Order is already cancelled")
		case models.StatusCompleted:
			return apperrors.InvalidState("INVALID_STATE", "Cannot cancel order that has been completed")
		default:
			return apperrors.InvalidState("INVALID_STATE", "Cannot cancel order that has been accepted or is in progress")
		}
	}
	return apperrors.InvalidState("INVALID_STATE", fmt.Sprintf("Cannot %s while order is %s", humanize(t), current))
}

func complete(next *models.Order, finalPrice *decimal.Decimal, now time.Time) error {
	if finalPrice != nil {
		if err := nonNegative("Final price", finalPrice); err != nil {
			return err
		}
		price := *finalPrice
		next.FinalPrice = &price
	} else if next.FinalPrice == nil && next.QuotedPrice != nil {
		price := *next.QuotedPrice
		next.FinalPrice = &price
	}
	stampOnce(&next.CompletedAt, now)
	next.ProgressPercentage = MaxProgress
	return nil
}

func nonNegative(field string, amount *decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.Validation("INVALID_PRICE", field+" must not be negative")
	}
	return nil
}

// stampOnce sets a transition timestamp unless it was already set
func stampOnce(field **time.Time, now time.Time) {
	if *field != nil {
		return
	}
	t := now
	*field = &t
}

func contains(states []models.OrderStatus, s models.OrderStatus) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}

func humanize(t Transition) string {
	switch t {
	case SendQuote:
		return "send a quote"
	case AcceptQuote:
		return "accept a quote"
	case RequestChanges:
		return "request quote changes"
	case StartWork:
		return "start work"
	case UpdateProgress:
		return "update progress"
	case Complete:
		return "mark the order complete"
	case Cancel:
		return "cancel the order"
	case Dispute:
		return "open a dispute"
	case ResolveDispute:
		return "resolve a dispute"
	}
	return string(t)
}

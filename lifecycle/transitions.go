// Package lifecycle validates and applies order state transitions.
// It is pure: no storage, no notification delivery, no clock of its own.
package lifecycle

import (
	"time"

	"github.com/ducali/ducali-api/models"
	"github.com/shopspring/decimal"
)

// Transition names a lifecycle action
type Transition string

const (
	SendQuote      Transition = "send_quote"
	AcceptQuote    Transition = "accept_quote"
	RequestChanges Transition = "request_changes"
	StartWork      Transition = "start_work"
	UpdateProgress Transition = "update_progress"
	Complete       Transition = "complete"
	Cancel         Transition = "cancel"
	Dispute        Transition = "dispute"
	ResolveDispute Transition = "resolve_dispute"
)

// Transitions lists every lifecycle action
var Transitions = []Transition{
	SendQuote, AcceptQuote, RequestChanges, StartWork, UpdateProgress,
	Complete, Cancel, Dispute, ResolveDispute,
}

// Party is who may fire a transition
type Party int

const (
	PartyCustomer Party = iota // the customer named on the order
	PartyArtisan               // the artisan named on the order
	PartyEither                // customer or artisan on the order
	PartyAdmin                 // any admin
)

func (p Party) String() string {
	switch p {
	case PartyCustomer:
		return "customer"
	case PartyArtisan:
		return "artisan"
	case PartyEither:
		return "customer or artisan"
	case PartyAdmin:
		return "admin"
	}
	return "unknown"
}

type rule struct {
	party Party
	from  []models.OrderStatus
	// to is empty when the target depends on the command (resolve_dispute)
	to models.OrderStatus
}

var rules = map[Transition]rule{
	SendQuote:      {party: PartyArtisan, from: []models.OrderStatus{models.StatusQuoteRequested}, to: models.StatusQuoteSent},
	AcceptQuote:    {party: PartyCustomer, from: []models.OrderStatus{models.StatusQuoteSent}, to: models.StatusInProgress},
	RequestChanges: {party: PartyCustomer, from: []models.OrderStatus{models.StatusQuoteSent}, to: models.StatusQuoteRequested},
	StartWork:      {party: PartyArtisan, from: []models.OrderStatus{models.StatusQuoteAccepted}, to: models.StatusInProgress},
	UpdateProgress: {party: PartyArtisan, from: []models.OrderStatus{models.StatusInProgress}, to: models.StatusInProgress},
	Complete:       {party: PartyArtisan, from: []models.OrderStatus{models.StatusInProgress}, to: models.StatusCompleted},
	Cancel:         {party: PartyCustomer, from: []models.OrderStatus{models.StatusQuoteRequested, models.StatusQuoteSent}, to: models.StatusCancelled},
	Dispute:        {party: PartyEither, from: []models.OrderStatus{models.StatusInProgress}, to: models.StatusDisputed},
	ResolveDispute: {party: PartyAdmin, from: []models.OrderStatus{models.StatusDisputed}},
}

// AllowedFrom returns the states a transition may start from
func AllowedFrom(t Transition) []models.OrderStatus {
	r, ok := rules[t]
	if !ok {
		return nil
	}
	return append([]models.OrderStatus(nil), r.from...)
}

// Actor is the authenticated principal attempting a transition
type Actor struct {
	UserID uint
	Role   models.Role
}

// Command carries a transition and its inputs. Fields a transition does not use are ignored.
type Command struct {
	Transition          Transition
	Price               *decimal.Decimal
	Timeline            string
	EstimatedCompletion *time.Time
	Notes               string
	Progress            *int
	FinalPrice          *decimal.Decimal
	Reason              string
	Resolution          models.OrderStatus
}

// EventKind names a notification-worthy order event
type EventKind string

const (
	KindQuoteRequested   EventKind = "order.quote_requested"
	KindQuoteSent        EventKind = "order.quote_sent"
	KindQuoteAccepted    EventKind = "order.quote_accepted"
	KindChangesRequested EventKind = "order.changes_requested"
	KindWorkStarted      EventKind = "order.work_started"
	KindProgressUpdated  EventKind = "order.progress_updated"
	KindOrderCompleted   EventKind = "order.completed"
	KindOrderCancelled   EventKind = "order.cancelled"
	KindOrderDisputed    EventKind = "order.disputed"
	KindDisputeResolved  EventKind = "order.dispute_resolved"
	KindReviewPosted     EventKind = "review.posted"
	KindMessageReceived  EventKind = "message.received"
)

// Event describes what happened and who must hear about it
type Event struct {
	Kind       EventKind
	OrderID    uint
	Recipients []uint
	Payload    map[string]interface{}
}

package models

// OrderStatus is the closed set of order lifecycle states
type OrderStatus string

const (
	StatusQuoteRequested OrderStatus = "QUOTE_REQUESTED"
	StatusQuoteSent      OrderStatus = "QUOTE_SENT"
	StatusQuoteAccepted  OrderStatus = "QUOTE_ACCEPTED"
	StatusInProgress     OrderStatus = "IN_PROGRESS"
	StatusPendingReview  OrderStatus = "PENDING_REVIEW" // legacy alias of QUOTE_SENT, never written
	StatusCompleted      OrderStatus = "COMPLETED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusDisputed       OrderStatus = "DISPUTED"
)

// Statuses lists every known status
var Statuses = []OrderStatus{
	StatusQuoteRequested,
	StatusQuoteSent,
	StatusQuoteAccepted,
	StatusInProgress,
	StatusPendingReview,
	StatusCompleted,
	StatusCancelled,
	StatusDisputed,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusQuoteRequested, StatusQuoteSent, StatusQuoteAccepted, StatusInProgress,
		StatusPendingReview, StatusCompleted, StatusCancelled, StatusDisputed:
		return true
	}
	return false
}

// Canonical folds the PENDING_REVIEW alias into QUOTE_SENT
func (s OrderStatus) Canonical() OrderStatus {
	if s == StatusPendingReview {
		return StatusQuoteSent
	}
	return s
}

// IsTerminal reports whether no further transition can leave s
func (s OrderStatus) IsTerminal() bool {
	switch s.Canonical() {
	case StatusCompleted, StatusCancelled:
		return true
	case StatusQuoteRequested, StatusQuoteSent, StatusQuoteAccepted, StatusInProgress, StatusDisputed:
		return false
	}
	return false
}

// Label is the customer-facing name of a status
func (s OrderStatus) Label() string {
	switch s.Canonical() {
	case StatusQuoteRequested:
		return "Quote requested"
	case StatusQuoteSent:
		return "Pending review"
	case StatusQuoteAccepted:
		return "Quote accepted"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusDisputed:
		return "Disputed"
	}
	return string(s)
}

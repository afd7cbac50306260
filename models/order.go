package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a single custom-work engagement between one customer and one artisan.
// Orders are never deleted, only moved into a terminal status.
type Order struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	CustomerID          uint             `gorm:"not null;index" json:"customer_id"`
	Customer            *User            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ArtisanID           uint             `gorm:"not null;index" json:"artisan_id"`
	Artisan             *User            `gorm:"foreignKey:ArtisanID" json:"artisan,omitempty"`
	ServiceID           *uint            `gorm:"index" json:"service_id,omitempty"`                                       // listing the request was made from
	Description         string           `gorm:"type:text;not null" json:"description"`
	BudgetRange         string           `json:"budget_range"`
	TimelinePreference  string           `json:"timeline_preference"`
	SpecialRequirements string           `gorm:"type:text" json:"special_requirements"`
	Status              OrderStatus      `gorm:"type:varchar(32);not null;index;default:'QUOTE_REQUESTED'" json:"status"`
	QuotedPrice         *decimal.Decimal `gorm:"type:decimal(12,2)" json:"quoted_price"`
	QuoteTimeline       string           `json:"quote_timeline"`
	EstimatedCompletion *time.Time       `json:"estimated_completion"`
	QuoteNotes          string           `gorm:"type:text" json:"quote_notes"`
	QuoteRevision       int              `gorm:"not null;default:0" json:"quote_revision"`
	ChangeRequest       string           `gorm:"type:text" json:"change_request"`
	FinalPrice          *decimal.Decimal `gorm:"type:decimal(12,2)" json:"final_price"`
	ProgressPercentage  int              `gorm:"not null;default:0" json:"progress_percentage"`
	DisputeReason       string           `gorm:"type:text" json:"dispute_reason,omitempty"`
	ResolutionNote      string           `gorm:"type:text" json:"resolution_note,omitempty"`
	AcceptedAt          *time.Time       `json:"accepted_at"`
	StartedAt           *time.Time       `json:"started_at"`
	CompletedAt         *time.Time       `json:"completed_at"`
	CancelledAt         *time.Time       `json:"cancelled_at"`
	DisputedAt          *time.Time       `json:"disputed_at"`
	Version             int              `gorm:"not null;default:1" json:"version"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsParty reports whether userID is the order's customer or artisan
func (o *Order) IsParty(userID uint) bool {
	return o.CustomerID == userID || o.ArtisanID == userID
}

// Counterparty returns the other party of the order, or 0 when userID is not a party
func (o *Order) Counterparty(userID uint) uint {
	switch userID {
	case o.CustomerID:
		return o.ArtisanID
	case o.ArtisanID:
		return o.CustomerID
	}
	return 0
}

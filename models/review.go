package models

import "time"

// Review is a customer's rating of a completed order. Only HelpfulCount changes after creation.
type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	CustomerID   uint      `gorm:"not null;index" json:"customer_id"`
	Customer     *User     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ArtisanID    uint      `gorm:"not null;index" json:"artisan_id"`
	Rating       int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment      string    `gorm:"type:text" json:"comment"`
	HelpfulCount int       `gorm:"not null;default:0" json:"helpful_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// ReviewHelpfulVote records that a user marked a review helpful
type ReviewHelpfulVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReviewID  uint      `gorm:"not null;uniqueIndex:idx_review_voter" json:"review_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_voter" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the ReviewHelpfulVote model
func (ReviewHelpfulVote) TableName() string {
	return "review_helpful_votes"
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArtisanProfile holds the descriptive part of an artisan's storefront.
// Rating and order counts are derived from orders and reviews, see ArtisanStats.
type ArtisanProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Category  string    `gorm:"index" json:"category"`
	Location  string    `gorm:"index" json:"location"`
	Skills    string    `json:"skills"`
	Featured  bool      `gorm:"not null;default:false" json:"featured"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ArtisanProfile model
func (ArtisanProfile) TableName() string {
	return "artisan_profiles"
}

// ArtisanStats are the aggregates computed on read from orders and reviews
type ArtisanStats struct {
	Rating          float64 `json:"rating"`
	ReviewCount     int64   `json:"review_count"`
	TotalOrders     int64   `json:"total_orders"`
	CompletedOrders int64   `json:"completed_orders"`
}

// ServiceOffering is a priced listing an artisan offers
type ServiceOffering struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ArtisanID   uint            `gorm:"not null;index" json:"artisan_id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"index" json:"category"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	OrderCount  int64           `gorm:"-" json:"order_count"`                          // computed from orders
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the ServiceOffering model
func (ServiceOffering) TableName() string {
	return "service_offerings"
}

// PortfolioItem is a showcase piece of an artisan's past work
type PortfolioItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ArtisanID   uint      `gorm:"not null;index" json:"artisan_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"index" json:"category"`
	ImageKey    *string   `json:"image_key"`                              // S3 object key, uploaded out of band
	ImageURL    *string   `gorm:"-" json:"image_url,omitempty"`           // computed field, presigned URL for image
	Featured    bool      `gorm:"not null;default:false" json:"featured"`
	ViewCount   int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the PortfolioItem model
func (PortfolioItem) TableName() string {
	return "portfolio_items"
}

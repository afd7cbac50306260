package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an in-app inbox entry announcing an order event
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	EventID   string         `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Kind      string         `gorm:"size:64;not null" json:"kind"`
	Payload   datatypes.JSON `json:"payload"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

package notification

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RecipientType identifies which side of a booking a notification targets.
type RecipientType string

const (
	RecipientClient  RecipientType = "client"
	RecipientPartner RecipientType = "partner"
)

// TypeTaskStatusUpdate is the notification type written on every task transition.
const TypeTaskStatusUpdate = "task_status_update"

// Notification is one row per recipient per task transition. Write-only
// from the tracker's perspective; delivery is someone else's problem.
type Notification struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	Type          string        `gorm:"type:varchar(50);not null;index" json:"type"`
	RecipientID   uint          `gorm:"not null;index" json:"recipient_id"`
	RecipientType RecipientType `gorm:"size:10;not null" json:"recipient_type"`

	Title   string  `gorm:"type:varchar(255);not null" json:"title"`
	Message string  `gorm:"type:text;not null" json:"message"`
	Data    Payload `gorm:"type:json" json:"data"`

	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// Payload references the task, booking and status a notification is about.
type Payload struct {
	BookingID    uint   `json:"booking_id"`
	TaskID       string `json:"task_id"`
	Status       string `json:"status"`
	ProviderName string `json:"provider_name"`
}

// Scan implements the Scanner interface for database deserialization
func (p *Payload) Scan(value interface{}) error {
	if value == nil {
		*p = Payload{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported type for Payload")
	}
}

// Value implements the driver Valuer interface for database serialization
func (p Payload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

package task

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"task-tracking/models/user"
)

// ProviderTask is the unit of work assigned to a fulfillment provider.
// It is created once when a booking is assigned and afterwards mutated
// only through the taskflow state machine.
type ProviderTask struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	TrackingCode string `gorm:"type:varchar(24);uniqueIndex" json:"tracking_code"`

	// Foreign key for provider relationship (the assigned actor)
	ProviderID uint      `gorm:"not null;index" json:"provider_id"`
	Provider   user.User `gorm:"foreignKey:ProviderID" json:"provider"`

	// Exactly one task exists per booking.
	BookingID uint `gorm:"not null;uniqueIndex" json:"booking_id"`

	ServiceType ServiceType `gorm:"size:20;not null" json:"service_type"`
	Status      TaskStatus  `gorm:"size:30;not null;index" json:"status"`

	// Descriptive fields, read-only to the state machine.
	PickupAddress   string      `gorm:"type:text;not null" json:"pickup_address"`
	DeliveryAddress string      `gorm:"type:text;not null" json:"delivery_address"`
	ClientName      string      `gorm:"type:varchar(255);not null" json:"client_name"`
	ClientPhone     string      `gorm:"type:varchar(20);not null" json:"client_phone"`
	SpecialRequest  *string     `gorm:"type:text" json:"special_request,omitempty"`
	AdditionalStops StringSlice `gorm:"type:json" json:"additional_stops,omitempty"`

	Price            float64 `gorm:"type:decimal(10,2)" json:"price"`
	ProviderEarnings float64 `gorm:"type:decimal(10,2)" json:"provider_earnings"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the ProviderTask model
func (ProviderTask) TableName() string {
	return "provider_tasks"
}

// StringSlice stores a slice of strings in a JSON column.
type StringSlice []string

// Scan implements the Scanner interface for database deserialization
func (ss *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*ss = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ss)
	case string:
		return json.Unmarshal([]byte(v), ss)
	default:
		return errors.New("unsupported type for StringSlice")
	}
}

// Value implements the driver Valuer interface for database serialization
func (ss StringSlice) Value() (driver.Value, error) {
	if ss == nil {
		return nil, nil
	}
	return json.Marshal(ss)
}

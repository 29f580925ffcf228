package booking

import (
	"time"

	"task-tracking/models/user"
)

// Booking is the commercial record a provider task fulfills. The tracker
// does not own this entity: it only projects the task's status onto
// TrackingStatus (and Status) on every transition. Two copies of "is this
// job done" exist on purpose; the tracker keeps them aligned.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for client relationship (who booked the service)
	ClientID uint      `gorm:"not null;index" json:"client_id"`
	Client   user.User `gorm:"foreignKey:ClientID" json:"client"`

	// Foreign key for partner relationship (who created the booking)
	PartnerID uint      `gorm:"not null;index" json:"partner_id"`
	Partner   user.User `gorm:"foreignKey:PartnerID" json:"partner"`

	ServiceName string    `gorm:"type:varchar(255);not null" json:"service_name"`
	Address     string    `gorm:"type:text;not null" json:"address"`
	BookingDate time.Time `gorm:"" json:"booking_date"`
	Amount      float64   `gorm:"type:decimal(10,2)" json:"amount"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`

	// Status shares the task's fine-grained vocabulary once a task exists;
	// before assignment it holds "confirmed".
	Status         string `gorm:"type:varchar(30);not null" json:"status"`
	TrackingStatus string `gorm:"type:varchar(30);index" json:"tracking_status"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// StatusConfirmed is the booking status before a task has been assigned.
const StatusConfirmed = "confirmed"

package taskflow

import (
	"errors"
	"time"

	"task-tracking/models/booking"
	"task-tracking/models/task"

	"gorm.io/gorm"
)

// syncBooking projects the task's new status onto the linked booking and
// returns the booking row. TrackingStatus mirrors the task status verbatim;
// Status carries the same label, which for "completed" is the booking's own
// terminal status. The bookings of this platform share the task's
// fine-grained status vocabulary.
func syncBooking(tx *gorm.DB, bookingID uint, newStatus task.TaskStatus) (*booking.Booking, error) {
	var b booking.Booking
	if err := tx.First(&b, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	now := time.Now()
	if err := tx.Model(&b).Updates(map[string]interface{}{
		"tracking_status": string(newStatus),
		"status":          string(newStatus),
		"updated_at":      now,
	}).Error; err != nil {
		return nil, err
	}

	b.TrackingStatus = string(newStatus)
	b.Status = string(newStatus)
	b.UpdatedAt = now
	return &b, nil
}

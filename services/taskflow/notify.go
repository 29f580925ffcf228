package taskflow

import (
	"fmt"

	"task-tracking/models/booking"
	"task-tracking/models/notification"
	"task-tracking/models/task"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fanOutNotifications writes exactly two notification rows for the
// transition, one addressed to the booking's client and one to the partner
// who created it. Returns the new notification ids.
func fanOutNotifications(tx *gorm.DB, b *booking.Booking, t *task.ProviderTask, newStatus task.TaskStatus, providerName string) ([]string, error) {
	payload := notification.Payload{
		BookingID:    b.ID,
		TaskID:       t.ID,
		Status:       string(newStatus),
		ProviderName: providerName,
	}

	rows := []notification.Notification{
		{
			ID:            uuid.NewString(),
			Type:          notification.TypeTaskStatusUpdate,
			RecipientID:   b.ClientID,
			RecipientType: notification.RecipientClient,
			Title:         "Booking update",
			Message:       fmt.Sprintf("%s is %s on your %s booking", providerName, newStatus.Label(), b.ServiceName),
			Data:          payload,
		},
		{
			ID:            uuid.NewString(),
			Type:          notification.TypeTaskStatusUpdate,
			RecipientID:   b.PartnerID,
			RecipientType: notification.RecipientPartner,
			Title:         "Task status update",
			Message:       fmt.Sprintf("Task %s for booking #%d is now %s", t.TrackingCode, b.ID, newStatus.Label()),
			Data:          payload,
		},
	}

	ids := make([]string, 0, len(rows))
	for i := range rows {
		if err := tx.Create(&rows[i]).Error; err != nil {
			return nil, err
		}
		ids = append(ids, rows[i].ID)
	}

	return ids, nil
}

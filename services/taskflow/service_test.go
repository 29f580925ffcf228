package taskflow

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"task-tracking/constants"
	"task-tracking/database"
	bookingModel "task-tracking/models/booking"
	notificationModel "task-tracking/models/notification"
	"task-tracking/models/task"
	userModel "task-tracking/models/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db       *gorm.DB
	flow     *Service
	provider userModel.User
	client   userModel.User
	partner  userModel.User
	booking  bookingModel.Booking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{db: setupDB(t)}
	f.flow = NewService(f.db)

	f.provider = f.seedUser(t, "paulo.provider", "Paulo Reyes", constants.PermProviderFull)
	f.client = f.seedUser(t, "carla.client", "Carla Santos", constants.PermClientFull)
	f.partner = f.seedUser(t, "pedro.partner", "Pedro Lim", constants.PermPartnerFull)

	f.booking = bookingModel.Booking{
		ClientID:    f.client.ID,
		PartnerID:   f.partner.ID,
		ServiceName: "Furniture moving",
		Address:     "12 Mabini St, Quezon City",
		BookingDate: time.Now(),
		Amount:      2500,
		Status:      bookingModel.StatusConfirmed,
	}
	require.NoError(t, f.db.Create(&f.booking).Error)

	return f
}

var phoneSeq int

func (f *fixture) seedUser(t *testing.T, username, legalName, perm string) userModel.User {
	t.Helper()

	phoneSeq++
	u := userModel.User{
		Uuid:        uuid.NewString(),
		Username:    username + "-" + uuid.NewString()[:8],
		LegalName:   legalName,
		Phone:       fmt.Sprintf("0917%07d", phoneSeq),
		Permissions: userModel.StringSlice{perm},
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

// seedTask creates a task directly in the given state with one initial
// history entry, mimicking what Assign plus earlier transitions produce.
func (f *fixture) seedTask(t *testing.T, status task.TaskStatus) task.ProviderTask {
	t.Helper()

	tk := task.ProviderTask{
		ID:               uuid.NewString(),
		TrackingCode:     strings.ToUpper(uuid.NewString()[:12]),
		ProviderID:       f.provider.ID,
		BookingID:        f.booking.ID,
		ServiceType:      task.ServiceTypeMoving,
		Status:           status,
		PickupAddress:    "12 Mabini St, Quezon City",
		DeliveryAddress:  "88 Rizal Ave, Makati",
		ClientName:       f.client.LegalName,
		ClientPhone:      f.client.Phone,
		Price:            2500,
		ProviderEarnings: 2000,
	}
	require.NoError(t, f.db.Create(&tk).Error)

	ev := NewStatusEvent(tk.ID, status, nil, nil, "seed")
	require.NoError(t, f.db.Create(&ev).Error)
	return tk
}

func (f *fixture) historyCount(t *testing.T, taskID string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, f.db.Model(&task.TaskStatusEvent{}).
		Where("task_id = ?", taskID).Count(&count).Error)
	return count
}

func (f *fixture) notifications(t *testing.T) []notificationModel.Notification {
	t.Helper()

	var rows []notificationModel.Notification
	require.NoError(t, f.db.Order("created_at ASC, id ASC").Find(&rows).Error)
	return rows
}

func (f *fixture) reloadTask(t *testing.T, id string) task.ProviderTask {
	t.Helper()

	var tk task.ProviderTask
	require.NoError(t, f.db.First(&tk, "id = ?", id).Error)
	return tk
}

func TestTransitionAllValidEdges(t *testing.T) {
	edges := []struct{ from, to task.TaskStatus }{
		{task.TaskStatusAssigned, task.TaskStatusAccepted},
		{task.TaskStatusAssigned, task.TaskStatusFailed},
		{task.TaskStatusAccepted, task.TaskStatusEnRoutePickup},
		{task.TaskStatusAccepted, task.TaskStatusFailed},
		{task.TaskStatusEnRoutePickup, task.TaskStatusPickedUp},
		{task.TaskStatusEnRoutePickup, task.TaskStatusFailed},
		{task.TaskStatusPickedUp, task.TaskStatusEnRouteDelivery},
		{task.TaskStatusPickedUp, task.TaskStatusFailed},
		{task.TaskStatusEnRouteDelivery, task.TaskStatusDelivered},
		{task.TaskStatusEnRouteDelivery, task.TaskStatusFailed},
		{task.TaskStatusDelivered, task.TaskStatusCompleted},
	}

	for _, edge := range edges {
		t.Run(fmt.Sprintf("%s_to_%s", edge.from, edge.to), func(t *testing.T) {
			f := newFixture(t)
			tk := f.seedTask(t, edge.from)

			result, err := f.flow.Transition(context.Background(), TransitionRequest{
				TaskID:    tk.ID,
				ActorID:   f.provider.ID,
				NewStatus: edge.to,
			})
			require.NoError(t, err)
			assert.Equal(t, edge.to, result.Task.Status)

			stored := f.reloadTask(t, tk.ID)
			assert.Equal(t, edge.to, stored.Status)
			assert.EqualValues(t, 2, f.historyCount(t, tk.ID))

			history, err := f.flow.History(context.Background(), tk.ID)
			require.NoError(t, err)
			assert.Equal(t, edge.to, history[len(history)-1].Status)

			var b bookingModel.Booking
			require.NoError(t, f.db.First(&b, "id = ?", f.booking.ID).Error)
			assert.Equal(t, string(edge.to), b.TrackingStatus)
			assert.Equal(t, string(edge.to), b.Status)
		})
	}
}

func TestTransitionIllegalEdgesLeaveTaskUnchanged(t *testing.T) {
	illegal := []struct{ from, to task.TaskStatus }{
		{task.TaskStatusAssigned, task.TaskStatusPickedUp},
		{task.TaskStatusAssigned, task.TaskStatusDelivered},
		{task.TaskStatusAccepted, task.TaskStatusDelivered},
		{task.TaskStatusEnRoutePickup, task.TaskStatusEnRouteDelivery},
		{task.TaskStatusDelivered, task.TaskStatusFailed},
		{task.TaskStatusAccepted, task.TaskStatusAssigned},
	}

	for _, edge := range illegal {
		t.Run(fmt.Sprintf("%s_to_%s", edge.from, edge.to), func(t *testing.T) {
			f := newFixture(t)
			tk := f.seedTask(t, edge.from)

			_, err := f.flow.Transition(context.Background(), TransitionRequest{
				TaskID:    tk.ID,
				ActorID:   f.provider.ID,
				NewStatus: edge.to,
			})
			require.ErrorIs(t, err, ErrIllegalTransition)

			stored := f.reloadTask(t, tk.ID)
			assert.Equal(t, edge.from, stored.Status)
			assert.EqualValues(t, 1, f.historyCount(t, tk.ID))
			assert.Empty(t, f.notifications(t))
		})
	}
}

func TestTerminalTasksRejectAllTransitions(t *testing.T) {
	for _, terminal := range []task.TaskStatus{task.TaskStatusCompleted, task.TaskStatusFailed} {
		for _, target := range task.GetAllTaskStatuses() {
			t.Run(fmt.Sprintf("%s_to_%s", terminal, target), func(t *testing.T) {
				f := newFixture(t)
				tk := f.seedTask(t, terminal)

				_, err := f.flow.Transition(context.Background(), TransitionRequest{
					TaskID:    tk.ID,
					ActorID:   f.provider.ID,
					NewStatus: target,
				})
				require.ErrorIs(t, err, ErrIllegalTransition)
				assert.Equal(t, terminal, f.reloadTask(t, tk.ID).Status)
			})
		}
	}
}

func TestTransitionUnauthorizedActorWritesNothing(t *testing.T) {
	f := newFixture(t)
	tk := f.seedTask(t, task.TaskStatusAssigned)
	other := f.seedUser(t, "bob.other", "Bob Cruz", constants.PermProviderFull)

	_, err := f.flow.Transition(context.Background(), TransitionRequest{
		TaskID:    tk.ID,
		ActorID:   other.ID,
		NewStatus: task.TaskStatusAccepted,
	})
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, task.TaskStatusAssigned, f.reloadTask(t, tk.ID).Status)
	assert.EqualValues(t, 1, f.historyCount(t, tk.ID))
	assert.Empty(t, f.notifications(t))

	var b bookingModel.Booking
	require.NoError(t, f.db.First(&b, "id = ?", f.booking.ID).Error)
	assert.Equal(t, bookingModel.StatusConfirmed, b.Status)
}

func TestTransitionTaskNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.flow.Transition(context.Background(), TransitionRequest{
		TaskID:    uuid.NewString(),
		ActorID:   f.provider.ID,
		NewStatus: task.TaskStatusAccepted,
	})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTransitionUnknownStatusIsIllegal(t *testing.T) {
	f := newFixture(t)
	tk := f.seedTask(t, task.TaskStatusAssigned)

	_, err := f.flow.Transition(context.Background(), TransitionRequest{
		TaskID:    tk.ID,
		ActorID:   f.provider.ID,
		NewStatus: task.TaskStatus("teleported"),
	})
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestCompletionSyncsBookingToCompleted(t *testing.T) {
	f := newFixture(t)
	tk := f.seedTask(t, task.TaskStatusDelivered)

	_, err := f.flow.Transition(context.Background(), TransitionRequest{
		TaskID:    tk.ID,
		ActorID:   f.provider.ID,
		NewStatus: task.TaskStatusCompleted,
	})
	require.NoError(t, err)

	var b bookingModel.Booking
	require.NoError(t, f.db.First(&b, "id = ?", f.booking.ID).Error)
	assert.Equal(t, "completed", b.Status)
	assert.Equal(t, "completed", b.TrackingStatus)
}

func TestTransitionMissingBookingRollsBackTaskWrite(t *testing.T) {
	f := newFixture(t)
	tk := f.seedTask(t, task.TaskStatusAssigned)

	// Point the task at a booking that does not exist.
	require.NoError(t, f.db.Model(&task.ProviderTask{}).
		Where("id = ?", tk.ID).Update("booking_id", 999999).Error)

	_, err := f.flow.Transition(context.Background(), TransitionRequest{
		TaskID:    tk.ID,
		ActorID:   f.provider.ID,
		NewStatus: task.TaskStatusAccepted,
	})
	require.ErrorIs(t, err, ErrBookingNotFound)

	// The task write happened inside the same transaction, so it must
	// have been rolled back along with the history entry.
	assert.Equal(t, task.TaskStatusAssigned, f.reloadTask(t, tk.ID).Status)
	assert.EqualValues(t, 1, f.historyCount(t, tk.ID))
	assert.Empty(t, f.notifications(t))
}

func TestDuplicateTransitionRequestFailsSecondTime(t *testing.T) {
	f := newFixture(t)
	tk := f.seedTask(t, task.TaskStatusAssigned)

	req := TransitionRequest{
		TaskID:    tk.ID,
		ActorID:   f.provider.ID,
		NewStatus: task.TaskStatusAccepted,
	}

	_, err := f.flow.Transition(context.Background(), req)
	require.NoError(t, err)

	// A retried or double-clicked request re-validates against the fresh
	// state and is rejected instead of appending a second history entry.
	_, err = f.flow.Transition(context.Background(), req)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.EqualValues(t, 2, f.historyCount(t, tk.ID))
}

func TestNotificationFanOutWritesClientAndPartnerRows(t *testing.T) {
	f := newFixture(t)
	tk := f.seedTask(t, task.TaskStatusAssigned)

	result, err := f.flow.Transition(context.Background(), TransitionRequest{
		TaskID:    tk.ID,
		ActorID:   f.provider.ID,
		NewStatus: task.TaskStatusAccepted,
	})
	require.NoError(t, err)
	assert.Len(t, result.NotificationIDs, 2)

	rows := f.notifications(t)
	require.Len(t, rows, 2)

	byType := map[notificationModel.RecipientType]notificationModel.Notification{}
	for _, row := range rows {
		byType[row.RecipientType] = row
	}

	clientRow, ok := byType[notificationModel.RecipientClient]
	require.True(t, ok)
	partnerRow, ok := byType[notificationModel.RecipientPartner]
	require.True(t, ok)

	assert.Equal(t, f.client.ID, clientRow.RecipientID)
	assert.Equal(t, f.partner.ID, partnerRow.RecipientID)

	for _, row := range []notificationModel.Notification{clientRow, partnerRow} {
		assert.Equal(t, notificationModel.TypeTaskStatusUpdate, row.Type)
		assert.False(t, row.Read)
		assert.Equal(t, tk.ID, row.Data.TaskID)
		assert.Equal(t, f.booking.ID, row.Data.BookingID)
		assert.Equal(t, "accepted", row.Data.Status)
		assert.Equal(t, f.provider.LegalName, row.Data.ProviderName)
	}
}

func TestHistoryGrowsByOnePerTransitionAcrossFullLifecycle(t *testing.T) {
	f := newFixture(t)
	tk := f.seedTask(t, task.TaskStatusAssigned)

	chain := []task.TaskStatus{
		task.TaskStatusAccepted,
		task.TaskStatusEnRoutePickup,
		task.TaskStatusPickedUp,
		task.TaskStatusEnRouteDelivery,
		task.TaskStatusDelivered,
		task.TaskStatusCompleted,
	}

	for i, next := range chain {
		_, err := f.flow.Transition(context.Background(), TransitionRequest{
			TaskID:    tk.ID,
			ActorID:   f.provider.ID,
			NewStatus: next,
		})
		require.NoError(t, err)
		assert.EqualValues(t, i+2, f.historyCount(t, tk.ID))
	}

	history, err := f.flow.History(context.Background(), tk.ID)
	require.NoError(t, err)
	require.Len(t, history, len(chain)+1)

	for i := 1; i < len(history); i++ {
		assert.Equal(t, chain[i-1], history[i].Status)
		assert.False(t, history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}
	assert.Equal(t, task.TaskStatusCompleted, history[len(history)-1].Status)
}

func TestAssignCreatesTaskWithInitialHistory(t *testing.T) {
	f := newFixture(t)

	tk, err := f.flow.Assign(context.Background(), AssignRequest{
		BookingID:        f.booking.ID,
		ProviderID:       f.provider.ID,
		ServiceType:      task.ServiceTypeDelivery,
		PickupAddress:    "12 Mabini St, Quezon City",
		DeliveryAddress:  "88 Rizal Ave, Makati",
		ClientName:       f.client.LegalName,
		ClientPhone:      f.client.Phone,
		Price:            800,
		ProviderEarnings: 640,
		CreatedBy:        fmt.Sprintf("%d", f.partner.ID),
	})
	require.NoError(t, err)

	assert.Equal(t, task.TaskStatusAssigned, tk.Status)
	assert.Len(t, tk.TrackingCode, 12)
	assert.NotEmpty(t, tk.ID)

	history, err := f.flow.History(context.Background(), tk.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, task.TaskStatusAssigned, history[0].Status)
	assert.Equal(t, "Status updated to assigned", history[0].Note)

	var b bookingModel.Booking
	require.NoError(t, f.db.First(&b, "id = ?", f.booking.ID).Error)
	assert.Equal(t, "assigned", b.TrackingStatus)

	// Exactly one task per booking.
	_, err = f.flow.Assign(context.Background(), AssignRequest{
		BookingID:       f.booking.ID,
		ProviderID:      f.provider.ID,
		ServiceType:     task.ServiceTypeDelivery,
		PickupAddress:   "12 Mabini St, Quezon City",
		DeliveryAddress: "88 Rizal Ave, Makati",
		ClientName:      f.client.LegalName,
		ClientPhone:     f.client.Phone,
	})
	require.ErrorIs(t, err, ErrTaskExists)
}

package taskflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"task-tracking/models/booking"
	"task-tracking/models/task"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"gorm.io/gorm"
)

// Service drives the task lifecycle state machine. It is stateless between
// calls: every operation reads current state, decides, and writes inside a
// single database transaction, so a failure at any step leaves no partial
// application behind.
type Service struct {
	db          *gorm.DB
	newTracking func() string
}

// Tracking codes avoid lookalike characters so providers can read them
// out over the phone.
const trackingAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func NewService(db *gorm.DB) *Service {
	gen, err := nanoid.CustomASCII(trackingAlphabet, 12)
	if err != nil {
		// Only reachable with a bad alphabet or length constant.
		panic(fmt.Sprintf("taskflow: tracking code generator: %v", err))
	}
	return &Service{db: db, newTracking: gen}
}

// TransitionRequest carries the inputs of one status transition. The task id
// and target status are explicit parameters; nothing is taken from ambient
// state.
type TransitionRequest struct {
	TaskID    string
	ActorID   uint
	NewStatus task.TaskStatus
	Note      *string
	Location  *string
}

// TransitionResult reports what a committed transition wrote.
type TransitionResult struct {
	Task            task.ProviderTask
	Event           task.TaskStatusEvent
	Booking         booking.Booking
	NotificationIDs []string
}

// Transition moves a task to newStatus: validates actor and edge, appends
// the history event, mirrors the status onto the linked booking and fans
// out notifications to client and partner. All writes commit atomically.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	if !req.NewStatus.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, req.NewStatus)
	}

	var result TransitionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t task.ProviderTask
		if err := tx.Preload("Provider").First(&t, "id = ?", req.TaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if t.ProviderID != req.ActorID {
			return ErrUnauthorized
		}

		if !task.CanTransition(t.Status, req.NewStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, t.Status, req.NewStatus)
		}

		// Guarded write: the expected current status is a precondition, so
		// two concurrent transitions cannot both succeed from the same state.
		res := tx.Model(&task.ProviderTask{}).
			Where("id = ? AND status = ?", t.ID, t.Status).
			Updates(map[string]interface{}{
				"status":     string(req.NewStatus),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		event := NewStatusEvent(t.ID, req.NewStatus, req.Note, req.Location,
			strconv.FormatUint(uint64(req.ActorID), 10))
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		b, err := syncBooking(tx, t.BookingID, req.NewStatus)
		if err != nil {
			return err
		}

		ids, err := fanOutNotifications(tx, b, &t, req.NewStatus, t.Provider.LegalName)
		if err != nil {
			return err
		}

		t.Status = req.NewStatus
		t.UpdatedAt = event.CreatedAt
		result = TransitionResult{Task: t, Event: event, Booking: *b, NotificationIDs: ids}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// AssignRequest carries the inputs for creating a provider task from a
// confirmed booking.
type AssignRequest struct {
	BookingID        uint
	ProviderID       uint
	ServiceType      task.ServiceType
	PickupAddress    string
	DeliveryAddress  string
	ClientName       string
	ClientPhone      string
	SpecialRequest   *string
	AdditionalStops  []string
	Price            float64
	ProviderEarnings float64
	CreatedBy        string
}

// Assign creates the provider task for a booking in the assigned state with
// its initial history entry, and stamps the booking's tracking status.
// Exactly one task may exist per booking.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (*task.ProviderTask, error) {
	t := task.ProviderTask{
		ID:               uuid.NewString(),
		TrackingCode:     s.newTracking(),
		ProviderID:       req.ProviderID,
		BookingID:        req.BookingID,
		ServiceType:      req.ServiceType,
		Status:           task.TaskStatusAssigned,
		PickupAddress:    req.PickupAddress,
		DeliveryAddress:  req.DeliveryAddress,
		ClientName:       req.ClientName,
		ClientPhone:      req.ClientPhone,
		SpecialRequest:   req.SpecialRequest,
		AdditionalStops:  task.StringSlice(req.AdditionalStops),
		Price:            req.Price,
		ProviderEarnings: req.ProviderEarnings,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b booking.Booking
		if err := tx.First(&b, "id = ?", req.BookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&task.ProviderTask{}).
			Where("booking_id = ?", req.BookingID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTaskExists
		}

		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		event := NewStatusEvent(t.ID, task.TaskStatusAssigned, nil, nil, req.CreatedBy)
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return tx.Model(&b).Updates(map[string]interface{}{
			"tracking_status": string(task.TaskStatusAssigned),
			"updated_at":      time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// History returns the task's status history in append order.
func (s *Service) History(ctx context.Context, taskID string) ([]task.TaskStatusEvent, error) {
	var events []task.TaskStatusEvent
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

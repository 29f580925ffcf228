package task

import (
	"fmt"

	taskModel "task-tracking/models/task"
)

// UpdateTaskStatusRequest is the body of POST /api/task/update-status.
type UpdateTaskStatusRequest struct {
	TaskID   string  `json:"task_id" validate:"required"`
	Status   string  `json:"status" validate:"required"`
	Note     *string `json:"note,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Validate validates the UpdateTaskStatusRequest fields
func (r *UpdateTaskStatusRequest) Validate() error {
	if r.TaskID == "" {
		return fmt.Errorf("task_id is required")
	}

	if r.Status == "" {
		return fmt.Errorf("status is required")
	}

	if !taskModel.TaskStatus(r.Status).IsValid() {
		return fmt.Errorf("status must be one of the task lifecycle statuses")
	}

	return nil
}

// ListTasksRequest is the body of POST /api/task/list.
type ListTasksRequest struct {
	Status *string `json:"status,omitempty"`
}

// Validate validates the ListTasksRequest fields
func (r *ListTasksRequest) Validate() error {
	if r.Status != nil && !taskModel.TaskStatus(*r.Status).IsValid() {
		return fmt.Errorf("status filter must be one of the task lifecycle statuses")
	}
	return nil
}

// AssignTaskRequest is the body of POST /api/booking/assign. It creates
// the provider task for a confirmed booking.
type AssignTaskRequest struct {
	BookingID        uint     `json:"booking_id" validate:"required"`
	ProviderID       uint     `json:"provider_id" validate:"required"`
	ServiceType      string   `json:"service_type" validate:"required"`
	PickupAddress    string   `json:"pickup_address" validate:"required"`
	DeliveryAddress  string   `json:"delivery_address" validate:"required"`
	ClientName       string   `json:"client_name" validate:"required"`
	ClientPhone      string   `json:"client_phone" validate:"required"`
	SpecialRequest   *string  `json:"special_request,omitempty"`
	AdditionalStops  []string `json:"additional_stops,omitempty"`
	Price            float64  `json:"price"`
	ProviderEarnings float64  `json:"provider_earnings"`
}

// Validate validates the AssignTaskRequest fields
func (r *AssignTaskRequest) Validate() error {
	if r.BookingID == 0 {
		return fmt.Errorf("booking_id is required")
	}

	if r.ProviderID == 0 {
		return fmt.Errorf("provider_id is required")
	}

	if !taskModel.ServiceType(r.ServiceType).IsValid() {
		return fmt.Errorf("service_type must be one of 'transport', 'delivery' or 'moving'")
	}

	if r.PickupAddress == "" {
		return fmt.Errorf("pickup_address is required")
	}

	if r.DeliveryAddress == "" {
		return fmt.Errorf("delivery_address is required")
	}

	if r.ClientName == "" {
		return fmt.Errorf("client_name is required")
	}

	if r.ClientPhone == "" {
		return fmt.Errorf("client_phone is required")
	}

	return nil
}

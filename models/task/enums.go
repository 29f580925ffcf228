package task

import "strings"

// TaskStatus is the lifecycle state of a ProviderTask.
type TaskStatus string

const (
	TaskStatusAssigned        TaskStatus = "assigned"
	TaskStatusAccepted        TaskStatus = "accepted"
	TaskStatusEnRoutePickup   TaskStatus = "en_route_pickup"
	TaskStatusPickedUp        TaskStatus = "picked_up"
	TaskStatusEnRouteDelivery TaskStatus = "en_route_delivery"
	TaskStatusDelivered       TaskStatus = "delivered"
	TaskStatusCompleted       TaskStatus = "completed"
	TaskStatusFailed          TaskStatus = "failed"
)

// ServiceType classifies the job a task fulfills. Fixed at creation.
type ServiceType string

const (
	ServiceTypeTransport ServiceType = "transport"
	ServiceTypeDelivery  ServiceType = "delivery"
	ServiceTypeMoving    ServiceType = "moving"
)

func (ts TaskStatus) String() string {
	return string(ts)
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusAssigned, TaskStatusAccepted, TaskStatusEnRoutePickup, TaskStatusPickedUp,
		TaskStatusEnRouteDelivery, TaskStatusDelivered, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true when no further transitions are legal.
func (ts TaskStatus) IsTerminal() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusFailed
}

// Label returns the human-readable form used in notification messages.
func (ts TaskStatus) Label() string {
	switch ts {
	case TaskStatusEnRoutePickup:
		return "en route to pickup"
	case TaskStatusEnRouteDelivery:
		return "en route to delivery"
	default:
		return strings.ReplaceAll(string(ts), "_", " ")
	}
}

func (st ServiceType) String() string {
	return string(st)
}

func (st ServiceType) IsValid() bool {
	switch st {
	case ServiceTypeTransport, ServiceTypeDelivery, ServiceTypeMoving:
		return true
	default:
		return false
	}
}

// GetAllTaskStatuses returns all valid task statuses in lifecycle order
func GetAllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusAssigned,
		TaskStatusAccepted,
		TaskStatusEnRoutePickup,
		TaskStatusPickedUp,
		TaskStatusEnRouteDelivery,
		TaskStatusDelivered,
		TaskStatusCompleted,
		TaskStatusFailed,
	}
}

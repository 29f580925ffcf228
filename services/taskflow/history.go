package taskflow

import (
	"fmt"
	"time"

	"task-tracking/models/task"
)

// NewStatusEvent builds the immutable history entry recorded for a status
// change. The timestamp is assigned here, never taken from the request, so
// client clock skew cannot corrupt history ordering. A missing note falls
// back to the standard template.
func NewStatusEvent(taskID string, status task.TaskStatus, note, location *string, createdBy string) task.TaskStatusEvent {
	text := fmt.Sprintf("Status updated to %s", status)
	if note != nil && *note != "" {
		text = *note
	}

	return task.TaskStatusEvent{
		TaskID:    taskID,
		Status:    status,
		Note:      text,
		Location:  location,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
}

package task

import (
	"time"
)

// TaskStatusEvent is one immutable entry in a task's status history.
// Rows are only ever inserted; the history of a task is the set of its
// events ordered by created_at. Timestamps are always server-assigned.
type TaskStatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for task relationship
	TaskID string       `gorm:"type:varchar(36);not null;index" json:"task_id"`
	Task   ProviderTask `gorm:"foreignKey:TaskID" json:"-"`

	Status    TaskStatus `gorm:"size:30;not null" json:"status"`
	Note      string     `gorm:"type:text;not null" json:"note"`
	Location  *string    `gorm:"type:varchar(255)" json:"location,omitempty"`
	CreatedBy string     `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the TaskStatusEvent model
func (TaskStatusEvent) TableName() string {
	return "task_status_events"
}

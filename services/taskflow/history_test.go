package taskflow

import (
	"testing"
	"time"

	"task-tracking/models/task"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusEventDefaultsNote(t *testing.T) {
	ev := NewStatusEvent("task-1", task.TaskStatusAccepted, nil, nil, "42")

	assert.Equal(t, "task-1", ev.TaskID)
	assert.Equal(t, task.TaskStatusAccepted, ev.Status)
	assert.Equal(t, "Status updated to accepted", ev.Note)
	assert.Nil(t, ev.Location)
	assert.Equal(t, "42", ev.CreatedBy)
}

func TestNewStatusEventKeepsCallerNote(t *testing.T) {
	note := "Client asked to use the back entrance"
	loc := "14.5995,120.9842"
	ev := NewStatusEvent("task-1", task.TaskStatusPickedUp, &note, &loc, "42")

	assert.Equal(t, note, ev.Note)
	if assert.NotNil(t, ev.Location) {
		assert.Equal(t, loc, *ev.Location)
	}
}

func TestNewStatusEventEmptyNoteFallsBack(t *testing.T) {
	empty := ""
	ev := NewStatusEvent("task-1", task.TaskStatusDelivered, &empty, nil, "42")

	assert.Equal(t, "Status updated to delivered", ev.Note)
}

func TestNewStatusEventTimestampIsServerAssigned(t *testing.T) {
	before := time.Now()
	ev := NewStatusEvent("task-1", task.TaskStatusAccepted, nil, nil, "42")
	after := time.Now()

	assert.False(t, ev.CreatedAt.Before(before))
	assert.False(t, ev.CreatedAt.After(after))
}

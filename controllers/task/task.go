package task

import (
	"errors"
	"fmt"

	"task-tracking/logger"
	bookingModel "task-tracking/models/booking"
	taskModel "task-tracking/models/task"
	"task-tracking/services/feed"
	"task-tracking/services/taskflow"
	"task-tracking/types"
	taskTypes "task-tracking/types/task"
	"task-tracking/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// TaskController handles task-related HTTP requests
type TaskController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
	Flow   *taskflow.Service
	Feed   *feed.Hub
}

// NewTaskController creates a new task controller
func NewTaskController(db *gorm.DB, asyncLogger *logger.AsyncLogger, flow *taskflow.Service, hub *feed.Hub) *TaskController {
	return &TaskController{
		DB:     db,
		Logger: asyncLogger,
		Flow:   flow,
		Feed:   hub,
	}
}

func (tc *TaskController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	tc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (tc *TaskController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	tc.logAPIRequest(c)
	return result
}

// UpdateStatus moves a task to a new lifecycle status. Only the assigned
// provider may drive its own task.
func (tc *TaskController) UpdateStatus(c *fiber.Ctx) error {
	var req taskTypes.UpdateTaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	if err := req.Validate(); err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	actor, err := utils.ActorFromContext(c)
	if err != nil {
		logger.Error("Error resolving actor from token", err)
		return tc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Provider not found",
			Data:    nil,
		})
	}

	result, err := tc.Flow.Transition(c.UserContext(), taskflow.TransitionRequest{
		TaskID:    req.TaskID,
		ActorID:   actor.ID,
		NewStatus: taskModel.TaskStatus(req.Status),
		Note:      req.Note,
		Location:  req.Location,
	})
	if err != nil {
		status, msg := transitionErrorResponse(err)
		if status == fiber.StatusInternalServerError {
			logger.Error("Failed to update task status", err)
		}
		return tc.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: msg,
			Data:    nil,
		})
	}

	// The transition is committed; feed delivery is best effort.
	tc.Feed.Publish(feed.Update{
		TaskID:       result.Task.ID,
		TrackingCode: result.Task.TrackingCode,
		BookingID:    result.Task.BookingID,
		ProviderID:   result.Task.ProviderID,
		Status:       string(result.Task.Status),
		Note:         result.Event.Note,
		UpdatedAt:    result.Event.CreatedAt,
	})

	logger.Success(fmt.Sprintf("Task %s (tracking: %s) moved to %s by provider: %s",
		result.Task.ID, result.Task.TrackingCode, result.Task.Status, actor.LegalName))

	return tc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Task status updated successfully",
		Data: fiber.Map{
			"task":             result.Task,
			"history_entry":    result.Event,
			"booking_status":   result.Booking.Status,
			"tracking_status":  result.Booking.TrackingStatus,
			"notification_ids": result.NotificationIDs,
		},
	})
}

// transitionErrorResponse maps taskflow errors onto HTTP responses.
func transitionErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, taskflow.ErrTaskNotFound):
		return fiber.StatusNotFound, "Task not found"
	case errors.Is(err, taskflow.ErrBookingNotFound):
		return fiber.StatusNotFound, "Booking not found for this task"
	case errors.Is(err, taskflow.ErrUnauthorized):
		return fiber.StatusForbidden, "Only the assigned provider can update this task"
	case errors.Is(err, taskflow.ErrIllegalTransition):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, taskflow.ErrConflict):
		return fiber.StatusConflict, "Task was updated concurrently, reload and retry"
	default:
		return fiber.StatusInternalServerError, "Failed to update task status"
	}
}

// GetTask returns a task with its full status history. Visible to the
// assigned provider and to the booking's client and partner.
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Task ID is required",
			Data:    nil,
		})
	}

	actor, err := utils.ActorFromContext(c)
	if err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	var t taskModel.ProviderTask
	if err := tc.DB.Preload("Provider").First(&t, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Task not found",
				Data:    nil,
			})
		}
		logger.Error("Failed to find task", err)
		return tc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
			Data:    nil,
		})
	}

	if !tc.canViewTask(&t, actor.ID) {
		return tc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "You do not have access to this task",
			Data:    nil,
		})
	}

	history, err := tc.Flow.History(c.UserContext(), t.ID)
	if err != nil {
		logger.Error("Failed to load task history", err)
		return tc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to load task history",
			Data:    nil,
		})
	}

	return tc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Task details found",
		Data: fiber.Map{
			"task":              t,
			"status_history":    history,
			"legal_next_states": taskModel.LegalNextStates(t.Status),
		},
	})
}

func (tc *TaskController) canViewTask(t *taskModel.ProviderTask, actorID uint) bool {
	if t.ProviderID == actorID {
		return true
	}

	var b bookingModel.Booking
	if err := tc.DB.First(&b, "id = ?", t.BookingID).Error; err != nil {
		return false
	}
	return b.ClientID == actorID || b.PartnerID == actorID
}

// ListTasks returns the authenticated provider's tasks, newest first,
// optionally filtered by status.
func (tc *TaskController) ListTasks(c *fiber.Ctx) error {
	var req taskTypes.ListTasksRequest
	if err := c.BodyParser(&req); err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	if err := req.Validate(); err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	actor, err := utils.ActorFromContext(c)
	if err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Provider not found",
			Data:    nil,
		})
	}

	query := tc.DB.Where("provider_id = ?", actor.ID).Order("created_at DESC")
	if req.Status != nil {
		query = query.Where("status = ?", *req.Status)
	}

	var tasks []taskModel.ProviderTask
	if err := query.Find(&tasks).Error; err != nil {
		logger.Error("Failed to list tasks", err)
		return tc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list tasks",
			Data:    nil,
		})
	}

	return tc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Tasks found",
		Data: fiber.Map{
			"tasks": tasks,
			"count": len(tasks),
		},
	})
}

// Stats returns the authenticated provider's task counters for the
// dashboard: totals plus completions for today and the current week.
func (tc *TaskController) Stats(c *fiber.Ctx) error {
	actor, err := utils.ActorFromContext(c)
	if err != nil {
		return tc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Provider not found",
			Data:    nil,
		})
	}

	type statRow struct {
		name  string
		query *gorm.DB
	}

	base := func() *gorm.DB {
		return tc.DB.Model(&taskModel.ProviderTask{}).Where("provider_id = ?", actor.ID)
	}

	rows := []statRow{
		{"total", base()},
		{"active", base().Where("status NOT IN ?", []string{
			string(taskModel.TaskStatusCompleted), string(taskModel.TaskStatusFailed),
		})},
		{"completed", base().Where("status = ?", string(taskModel.TaskStatusCompleted))},
		{"failed", base().Where("status = ?", string(taskModel.TaskStatusFailed))},
		{"completed_today", base().Where("status = ? AND updated_at >= ?",
			string(taskModel.TaskStatusCompleted), now.BeginningOfDay())},
		{"completed_this_week", base().Where("status = ? AND updated_at >= ?",
			string(taskModel.TaskStatusCompleted), now.BeginningOfWeek())},
	}

	stats := fiber.Map{}
	for _, row := range rows {
		var count int64
		if err := row.query.Count(&count).Error; err != nil {
			logger.Error("Failed to compute task stats", err)
			return tc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to compute task stats",
				Data:    nil,
			})
		}
		stats[row.name] = count
	}

	return tc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Task stats computed",
		Data:    stats,
	})
}

// LiveFeed streams task updates to the provider's task list over a
// websocket. The connection stays registered until the client hangs up.
func (tc *TaskController) LiveFeed(conn *websocket.Conn) {
	claims, ok := conn.Locals("user").(map[string]interface{})
	if !ok {
		conn.Close()
		return
	}

	userUUID, ok := claims["uuid"].(string)
	if !ok || userUUID == "" {
		conn.Close()
		return
	}

	actor, err := utils.GetUserByUUID(userUUID)
	if err != nil {
		logger.Error("Error finding provider for live feed", err)
		conn.Close()
		return
	}

	tc.Feed.Subscribe(actor.ID, conn)
	defer func() {
		tc.Feed.Unsubscribe(actor.ID, conn)
		conn.Close()
	}()

	// Inbound messages are ignored; the read loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

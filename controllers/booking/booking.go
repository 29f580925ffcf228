package booking

import (
	"errors"
	"fmt"

	"task-tracking/constants"
	"task-tracking/logger"
	bookingModel "task-tracking/models/booking"
	taskModel "task-tracking/models/task"
	"task-tracking/services/taskflow"
	"task-tracking/types"
	taskTypes "task-tracking/types/task"
	"task-tracking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BookingController handles booking-related HTTP requests
type BookingController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
	Flow   *taskflow.Service
}

// NewBookingController creates a new booking controller
func NewBookingController(db *gorm.DB, asyncLogger *logger.AsyncLogger, flow *taskflow.Service) *BookingController {
	return &BookingController{
		DB:     db,
		Logger: asyncLogger,
		Flow:   flow,
	}
}

func (bc *BookingController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	bc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (bc *BookingController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	bc.logAPIRequest(c)
	return result
}

// AssignTask creates the provider task for a confirmed booking. The
// assigning actor must be the booking's partner (or a platform admin).
func (bc *BookingController) AssignTask(c *fiber.Ctx) error {
	var req taskTypes.AssignTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
			Data:    nil,
		})
	}

	if err := req.Validate(); err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
	}

	actor, err := utils.ActorFromContext(c)
	if err != nil {
		logger.Error("Error resolving actor from token", err)
		return bc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	var b bookingModel.Booking
	if err := bc.DB.First(&b, "id = ?", req.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
				Data:    nil,
			})
		}
		logger.Error("Failed to find booking", err)
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
			Data:    nil,
		})
	}

	if b.PartnerID != actor.ID && !actor.HasPermission(constants.PermAdminFull) {
		return bc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Only the booking's partner can assign a task",
			Data:    nil,
		})
	}

	t, err := bc.Flow.Assign(c.UserContext(), taskflow.AssignRequest{
		BookingID:        req.BookingID,
		ProviderID:       req.ProviderID,
		ServiceType:      taskModel.ServiceType(req.ServiceType),
		PickupAddress:    req.PickupAddress,
		DeliveryAddress:  req.DeliveryAddress,
		ClientName:       req.ClientName,
		ClientPhone:      req.ClientPhone,
		SpecialRequest:   req.SpecialRequest,
		AdditionalStops:  req.AdditionalStops,
		Price:            req.Price,
		ProviderEarnings: req.ProviderEarnings,
		CreatedBy:        fmt.Sprintf("%d", actor.ID),
	})
	if err != nil {
		switch {
		case errors.Is(err, taskflow.ErrTaskExists):
			return bc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
				Status:  fiber.StatusConflict,
				Message: "Booking already has a provider task",
				Data:    nil,
			})
		case errors.Is(err, taskflow.ErrBookingNotFound):
			return bc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
				Data:    nil,
			})
		default:
			logger.Error("Failed to assign task", err)
			return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to assign task",
				Data:    nil,
			})
		}
	}

	logger.Success(fmt.Sprintf("Task %s (tracking: %s) assigned for booking ID: %d by: %s",
		t.ID, t.TrackingCode, req.BookingID, actor.LegalName))

	return bc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Task assigned successfully",
		Data:    t,
	})
}

// GetBooking returns a booking with its current tracking status. Visible to
// the booking's client and partner, and to the task's provider.
func (bc *BookingController) GetBooking(c *fiber.Ctx) error {
	bookingID := c.Params("id")
	if bookingID == "" {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Booking ID is required",
			Data:    nil,
		})
	}

	actor, err := utils.ActorFromContext(c)
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
			Data:    nil,
		})
	}

	var b bookingModel.Booking
	if err := bc.DB.Preload("Client").Preload("Partner").First(&b, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
				Data:    nil,
			})
		}
		logger.Error("Failed to find booking", err)
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
			Data:    nil,
		})
	}

	var t taskModel.ProviderTask
	hasTask := bc.DB.First(&t, "booking_id = ?", b.ID).Error == nil

	allowed := b.ClientID == actor.ID || b.PartnerID == actor.ID ||
		actor.HasPermission(constants.PermAdminFull) ||
		(hasTask && t.ProviderID == actor.ID)
	if !allowed {
		return bc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "You do not have access to this booking",
			Data:    nil,
		})
	}

	data := fiber.Map{"booking": b}
	if hasTask {
		data["task"] = t
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking details found",
		Data:    data,
	})
}

package routes

import (
	"task-tracking/constants"
	bookingController "task-tracking/controllers/booking"
	taskController "task-tracking/controllers/task"
	"task-tracking/logger"
	"task-tracking/middleware"
	"task-tracking/services/feed"
	"task-tracking/services/taskflow"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	flow := taskflow.NewService(db)
	hub := feed.NewHub()
	tasks := taskController.NewTaskController(db, asyncLogger, flow, hub)
	bookings := bookingController.NewBookingController(db, asyncLogger, flow)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "task-tracking",
			"status":  "ok",
		})
	})

	api := app.Group("/api")

	/*=============================================================================
	| Task Routes
	===============================================================================*/
	taskGroup := api.Group("/task")

	taskGroup.Post("/update-status", middleware.RequirePermissions(
		constants.PermProviderFull,
	), tasks.UpdateStatus)

	taskGroup.Post("/list", middleware.RequirePermissions(
		constants.PermProviderFull,
	), tasks.ListTasks)

	taskGroup.Get("/stats", middleware.RequirePermissions(
		constants.PermProviderFull,
	), tasks.Stats)

	taskGroup.Get("/:id", middleware.RequireAnyPermission(), tasks.GetTask)

	/*=============================================================================
	| Booking Routes
	===============================================================================*/
	bookingGroup := api.Group("/booking")

	bookingGroup.Post("/assign", middleware.RequirePermissions(
		constants.PermPartnerFull,
		constants.PermAdminFull,
	), bookings.AssignTask)

	bookingGroup.Get("/:id", middleware.RequireAnyPermission(), bookings.GetBooking)

	/*=============================================================================
	| Live Feed
	===============================================================================*/
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/tasks", middleware.RequirePermissions(
		constants.PermProviderFull,
	), websocket.New(tasks.LiveFeed))
}

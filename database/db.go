package database

import (
	"fmt"
	"os"

	"task-tracking/logger"
	"task-tracking/models/booking"
	"task-tracking/models/log"
	"task-tracking/models/notification"
	"task-tracking/models/task"
	"task-tracking/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := Migrate(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// Migrate runs auto migration for all models in dependency order.
func Migrate(db *gorm.DB) error {
	// Stage 1: foundation models
	stage1Models := []interface{}{
		&user.User{},
	}

	for _, model := range stage1Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: models with dependencies on stage 1
	stage2Models := []interface{}{
		&booking.Booking{},
		&task.ProviderTask{},
	}

	for _, model := range stage2Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: remaining models
	remainingModels := []interface{}{
		&task.TaskStatusEvent{},
		&notification.Notification{},
		&log.Log{},
	}

	for _, model := range remainingModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_provider_tasks_provider_status",
			sql:  "CREATE INDEX IF NOT EXISTS idx_provider_tasks_provider_status ON provider_tasks(provider_id, status)",
		},
		{
			name: "idx_provider_tasks_created_at",
			sql:  "CREATE INDEX IF NOT EXISTS idx_provider_tasks_created_at ON provider_tasks(created_at)",
		},
		{
			name: "idx_task_status_events_task_created",
			sql:  "CREATE INDEX IF NOT EXISTS idx_task_status_events_task_created ON task_status_events(task_id, created_at)",
		},
		{
			name: "idx_notifications_recipient_read",
			sql:  "CREATE INDEX IF NOT EXISTS idx_notifications_recipient_read ON notifications(recipient_id, read)",
		},
		{
			name: "idx_bookings_tracking_status",
			sql:  "CREATE INDEX IF NOT EXISTS idx_bookings_tracking_status ON bookings(tracking_status)",
		},
		{
			name: "idx_logs_created_at",
			sql:  "CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)",
		},
	}

	for _, idx := range indexes {
		if err := DB.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

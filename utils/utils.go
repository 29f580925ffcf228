package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"task-tracking/database"
	"task-tracking/models/user"
	"task-tracking/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetUserByUUID retrieves a user by their UUID from the database
func GetUserByUUID(uuid string) (*user.User, error) {
	if uuid == "" {
		return nil, errors.New("UUID cannot be empty")
	}

	var userModel user.User
	if err := database.DB.Where("uuid = ?", uuid).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &userModel, nil
}

// ActorFromContext resolves the authenticated user from the JWT claims the
// auth middleware stored on the request context.
func ActorFromContext(c *fiber.Ctx) (*user.User, error) {
	claims, ok := c.Locals("user").(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid user claims")
	}

	userUUID, ok := claims["uuid"].(string)
	if !ok || userUUID == "" {
		return nil, errors.New("user UUID not found in token")
	}

	return GetUserByUUID(userUUID)
}

// CreateSanitizedLogEntry creates a deep copied log entry for the async logger.
// Large bodies are truncated so a single request cannot bloat the logs table.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := truncateBody(string(c.Body()))
	responseBody := truncateBody(string(append([]byte(nil), c.Response().Body()...)))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}

const maxLoggedBodyBytes = 4096

func truncateBody(body string) string {
	body = strings.ToValidUTF8(body, "")
	if len(body) > maxLoggedBodyBytes {
		return body[:maxLoggedBodyBytes] + "...[TRUNCATED]"
	}
	return body
}

// Package apperror defines the HTTP-status-keyed error kinds returned by
// handlers and services, and the fiber error handler that renders them.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Error is an error that knows which HTTP status it maps to.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap returns an Error that keeps cause for logging and errors.Is checks.
func Wrap(status int, message string, cause error) *Error {
	return &Error{Status: status, Message: message, Err: cause}
}

func BadRequest(message string) *Error          { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error        { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error           { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error            { return New(http.StatusNotFound, message) }
func InternalServerError(message string) *Error { return New(http.StatusInternalServerError, message) }
func BadGateway(message string) *Error          { return New(http.StatusBadGateway, message) }
func ServiceUnavailable(message string) *Error  { return New(http.StatusServiceUnavailable, message) }
func GatewayTimeout(message string) *Error      { return New(http.StatusGatewayTimeout, message) }

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Status      int       `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Message     string    `json:"message"`
	Description string    `json:"description"`
}

// StatusCode returns the HTTP status err maps to. Unknown errors are 500.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err. Causes of unknown
// errors are never exposed.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Message
	}
	return "Internal server error"
}

// Handler is the fiber.Config.ErrorHandler for both services.
func Handler(c *fiber.Ctx, err error) error {
	status := StatusCode(err)
	logger := log.Ctx(c.UserContext())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Str("path", c.Path()).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Str("path", c.Path()).Msg("request rejected")
	}

	return c.Status(status).JSON(ErrorResponse{
		Status:      status,
		Timestamp:   time.Now().UTC(),
		Message:     Message(err),
		Description: "uri=" + c.Path(),
	})
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"acervo/internal/http/middleware"
)

// errorPayload defines the standardized error response body. Error carries the
// machine-readable code, Message the safe human-readable text; validation
// failures additionally list every violated rule in Messages.
type errorPayload struct {
	Success   bool     `json:"success"`
	RequestID string   `json:"request_id,omitempty"`
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Messages  []string `json:"messages,omitempty"`
}

// dataPayload wraps a successful response body.
type dataPayload struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// pagination describes the window of a list response.
type pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Pages  int `json:"pages"`
}

// listPayload wraps a successful paginated response body.
type listPayload struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeData writes a standardized success envelope.
func writeData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dataPayload{Success: true, Data: data})
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "FORBIDDEN", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     code,
		Message:   message,
	})
}

// writeValidationError lists every violated submission rule at once.
func writeValidationError(c *fiber.Ctx, messages []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     "VALIDATION_ERROR",
		Message:   "dados inválidos",
		Messages:  messages,
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "access denied")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

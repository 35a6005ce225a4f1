// Package handlers provides HTTP handler implementations for the public and
// admin API.
//
// This file defines the standard response utilities used across all endpoints:
// a uniform success/error envelope, consistent JSON serialization, and helpers
// for the common HTTP patterns. Every endpoint returns the same shape so
// clients can branch on a single `success` flag.
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "data": { "id": "abc123", "status": "draft" } }
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "error": "inquiry not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhaus/atelier-backend/internal/http/middleware"
)

// Envelope is the standard success envelope returned by all endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: optional correlation ID, echoed from X-Request-ID, used to
//     correlate server logs with client-side errors.
//   - Code: a stable, machine-readable string (see errors.go constants).
//   - Error: a human-readable description, safe for display to users.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Error     string `json:"error" example:"inquiry not found"`
}

// fail aborts the request with a structured error and logs server-side errors.
//
// Server errors (>=500) are logged with the request-scoped logger; in release
// mode their detail is replaced with a generic message so internals never
// reach clients.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
		if gin.Mode() == gin.ReleaseMode {
			msg = "internal error"
		}
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Error:     msg,
	})
}

// Fail is the exported variant of fail(). External packages (e.g. router
// setup) call it to return consistent error envelopes.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success envelope with the given status and payload.
func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// okMessage writes a success envelope carrying only a message.
func okMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: true, Message: msg})
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

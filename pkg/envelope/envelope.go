// Package envelope implements the uniform response envelope used by every
// handler: {"success": true, "message": ..., "data": ...} on success and
// {"error": ...} on failure.
package envelope

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// OK writes a success envelope.
func OK(c echo.Context, status int, message string, data interface{}) error {
	body := map[string]interface{}{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

// ErrorHandler converts echo HTTP errors (and anything else that escapes a
// handler) into the {"error": ...} envelope. Internal error detail is never
// exposed for 5xx responses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}

	_ = c.JSON(status, map[string]string{"error": message})
}

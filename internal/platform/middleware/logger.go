package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/platform/auth"
)

// Logger emits one structured line per request. The user id is attached when
// the session middleware ran before the handler, so clinic activity can be
// traced back to a staff account.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if userID := auth.UserIDFromContext(c.Request().Context()); userID != uuid.Nil {
				evt.Str("user_id", userID.String())
			}

			evt.Msg("request")
			return err
		}
	}
}

package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ssegota/daignostics/internal/platform/auth"
)

// Logger emits one structured line per request. Authenticated requests also
// carry the session's role and username, read after the handler chain so the
// auth middleware has populated the context.
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

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			ctx := c.Request().Context()
			if role := auth.RoleFromContext(ctx); role != "" {
				evt = evt.Str("role", role).Str("username", auth.UsernameFromContext(ctx))
			}

			evt.Msg("request")
			return err
		}
	}
}

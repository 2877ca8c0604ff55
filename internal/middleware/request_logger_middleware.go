package middleware

import (
	"github.com/fadilmartias/resume-analyzer/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestLogger stores a request-scoped zerolog logger in the user context so
// logger.Ctx picks it up downstream. Register it after requestid.New().
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		l := logger.Logger.With().
			Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))
		return c.Next()
	}
}

package middleware

import (
	"runtime/debug"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"photo-curator-service/internal/transport/httpserver/dto"
)

// Recover returns a middleware that turns panics into 500 responses.
// API routes answer with JSON, pages with plain text.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("error", r),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", c.Path()),
				)

				c.Status(fiber.StatusInternalServerError)
				if IsAPI(c) {
					err = c.JSON(dto.ErrorResponse{Error: "internal server error", Code: "PANIC"})
					return
				}
				err = c.SendString("internal server error")
			}
		}()

		return c.Next()
	}
}

// IsAPI reports whether the request targets the JSON API.
func IsAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

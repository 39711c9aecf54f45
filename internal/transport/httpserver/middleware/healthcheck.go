// Package middleware provides HTTP middleware for the curator server.
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"go.uber.org/zap"
)

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

// NewHealthCheck serves /livez and /readyz. Readiness requires every
// named dependency (catalog store, redis) to answer within timeout.
func NewHealthCheck(checks map[string]PingFunc, timeout time.Duration, logger *zap.Logger) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true
		},

		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
			defer cancel()

			for name, ping := range checks {
				if err := ping(ctx); err != nil {
					logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
					return false
				}
			}

			return true
		},
	})
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger logs every request with zap and makes sure it carries an X-Request-ID.
// Health probes are not logged.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals("request_id", requestID)

		if path == "/livez" || path == "/readyz" {
			return c.Next()
		}

		chainErr := c.Next()
		status := c.Response().StatusCode()
		if chainErr != nil {
			// the error handler has not run yet, so take the status from the error
			status = fiber.StatusInternalServerError
			if e, ok := chainErr.(*fiber.Error); ok {
				status = e.Code
			}
		}

		if q := string(c.Request().URI().QueryString()); q != "" {
			path += "?" + q
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Method()),
			zap.String("path", path),
			zap.String("ip", c.IP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
			zap.String("request_id", requestID),
		}

		switch {
		case chainErr != nil:
			log.Error("Request error", append(fields, zap.Error(chainErr))...)
		case status >= fiber.StatusInternalServerError:
			log.Error("Server error", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
		return chainErr
	}
}

package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/zdziszkee/swift-codes-catalog/internal/logging"
)

// AccessLogger logs one structured line per request
func AccessLogger(logger zerolog.Logger) fiber.Handler {
	log := logging.Component(logger, "http")

	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// the error handler has not written the response yet
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		event := log.Info()
		if status >= fiber.StatusInternalServerError {
			event = log.Error().Err(err)
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("ip", c.IP()).
			Str("request_id", requestid.FromContext(c)).
			Dur("latency", time.Since(start)).
			Msg("request")

		return err
	}
}

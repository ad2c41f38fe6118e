package router

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	handler "github.com/zdziszkee/swift-codes-catalog/internal/api/handlers"
	"github.com/zdziszkee/swift-codes-catalog/internal/api/middleware"
)

// SetupRoutes configures all API routes. /metrics is served only when a
// gatherer is given.
func SetupRoutes(swiftHandler *handler.SwiftHandler, logger zerolog.Logger, gatherer prometheus.Gatherer) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(handler.ErrorResponse{
				Message: message,
				URI:     c.OriginalURL(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.AccessLogger(logger))

	app.Get("/health", handler.Health)
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API versioning
	v1 := app.Group("/v1")

	// SWIFT codes endpoints
	v1.Get("/swift-codes/country/:countryISO2code", swiftHandler.GetByCountry)
	v1.Get("/swift-codes/:swiftCode", swiftHandler.GetByCode)
	v1.Post("/swift-codes", swiftHandler.Create)
	v1.Delete("/swift-codes/:swiftCode", swiftHandler.Delete)
	return app
}

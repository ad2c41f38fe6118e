package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/zdziszkee/swift-codes-catalog/internal/logging"
	models "github.com/zdziszkee/swift-codes-catalog/internal/models"
	service "github.com/zdziszkee/swift-codes-catalog/internal/services"
	validator "github.com/zdziszkee/swift-codes-catalog/internal/validators"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string                `json:"message"`
	URI     string                `json:"uri"`
	Errors  validator.FieldErrors `json:"errors,omitempty"`
}

// SwiftHandler handles API requests for SWIFT codes
type SwiftHandler struct {
	service service.SwiftService
	log     zerolog.Logger
}

// NewSwiftHandler creates a new handler instance
func NewSwiftHandler(service service.SwiftService, logger zerolog.Logger) *SwiftHandler {
	return &SwiftHandler{
		service: service,
		log:     logging.Component(logger, "handler"),
	}
}

// GetByCode handles requests for a specific SWIFT code
func (h *SwiftHandler) GetByCode(c fiber.Ctx) error {
	details, err := h.service.GetSwiftCodeDetails(c.Context(), c.Params("swiftCode"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(details)
}

// GetByCountry handles requests for all SWIFT codes by country
func (h *SwiftHandler) GetByCountry(c fiber.Ctx) error {
	codes, err := h.service.GetSwiftCodesByCountry(c.Context(), c.Params("countryISO2code"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(codes)
}

// Create handles creation of a new SWIFT code
func (h *SwiftHandler) Create(c fiber.Ctx) error {
	var req models.SwiftBankRequest
	if err := c.Bind().Body(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid request body")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			URI:     c.OriginalURL(),
		})
	}

	created, err := h.service.CreateSwiftCode(c.Context(), &req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// Delete handles deletion of a SWIFT code
func (h *SwiftHandler) Delete(c fiber.Ctx) error {
	deleted, err := h.service.DeleteSwiftCode(c.Context(), c.Params("swiftCode"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(deleted)
}

// handleError maps service error kinds to status codes
func (h *SwiftHandler) handleError(c fiber.Ctx, err error) error {
	body := ErrorResponse{Message: err.Error(), URI: c.OriginalURL()}

	var serviceErr *service.Error
	if !errors.As(err, &serviceErr) {
		h.log.Error().Err(err).Str("uri", body.URI).Msg("request failed")
		body.Message = "Internal server error"
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}

	status := fiber.StatusInternalServerError
	switch serviceErr.Kind {
	case service.KindNotFoundByID, service.KindCountryNotFound:
		status = fiber.StatusNotFound
	case service.KindConflict:
		status = fiber.StatusConflict
	case service.KindValidationFailed:
		status = fiber.StatusBadRequest
		body.Message = "Validation failed"
		body.Errors = serviceErr.FieldErrors
	}
	return c.Status(status).JSON(body)
}

// Health reports that the process is serving
func Health(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

package server

import (
	"errors"

	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/internal/service"
	"smartfusion-dashboard/pkg/audio"
	"smartfusion-dashboard/pkg/ragapi"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates domain errors into HTTP responses so
// controllers can return errors verbatim from the services.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var validationErr *serverutils.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(validationErr.Error()))
		}

		var apiErr *ragapi.APIError
		if errors.As(err, &apiErr) {
			return c.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(apiErr.Detail))
		}

		if errors.Is(err, service.ErrSubmissionInFlight) ||
			errors.Is(err, service.ErrQuestionInFlight) ||
			errors.Is(err, audio.ErrDeviceBusy) {
			return c.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(err.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(serverutils.ErrorResponse(fiberErr.Message))
		}

		return c.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(err.Error()))
	}
}

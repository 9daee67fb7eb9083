package middlewares

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"mediaops-backend/services"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors from request binding (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Service-layer taxonomy
	var sve *services.ValidationError
	if errors.As(err, &sve) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  sve.Fields,
		})
	}
	var de *services.DiscrepancyError
	if errors.As(err, &de) {
		// Soft failure: re-submit with confirm_discrepancies to proceed.
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":       "price discrepancies require confirmation",
			"discrepancies": de.Discrepancies,
		})
	}
	var ie *services.IneligibleError
	if errors.As(err, &ie) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": ie.Error()})
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	}

	// 4) Unknown errors (500)
	log.Printf("internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

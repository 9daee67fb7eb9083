package middlewares

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"mediaops-backend/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// `status` tag for DTOs carrying a lifecycle status.
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	return v
}

// BindAndValidate parses the request body into dst and validates it.
// Parse failures map to 400; validator.ValidationErrors reach the
// central error handler, which renders them as 422.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	// Slice payloads (batch create) validate per element in the controller.
	return validate.Struct(dst)
}

// ValidateStruct validates a single value on the shared instance.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

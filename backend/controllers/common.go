package controllers

import (
	"errors"

	"platform/backend/services"
	"platform/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// serviceError maps engine error kinds onto HTTP responses. Anything not
// typed is a storage failure and surfaces as a generic 500.
func serviceError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationFailed(c, fiber.Map{verr.Field: verr.Reason})
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Forbidden(c, "Not enrolled in this course")
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, "Not found")
	case errors.Is(err, services.ErrIneligible):
		return utils.BadRequest(c, "Completion criteria not met")
	default:
		return utils.InternalServerError(c, "Could not query database")
	}
}

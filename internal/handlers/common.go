package handlers

import (
	"errors"

	"github.com/fitassist/fitassist/internal/services"
	"github.com/fitassist/fitassist/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// serviceError maps service sentinels onto the standard error envelope.
// Upstream failures deliberately surface a generic message.
func serviceError(c *fiber.Ctx, err error, errorType string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return utils.ErrorResponse(c, "Missing or invalid parameters", fiber.StatusBadRequest, errorType)
	case errors.Is(err, services.ErrNotOwner):
		return utils.ErrorResponse(c, "You don't have permission to access this resource", fiber.StatusForbidden, errorType)
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, "Resource not found")
	case errors.Is(err, services.ErrConflict):
		return utils.ConflictResponse(c, "Conflict with existing resource")
	case errors.Is(err, services.ErrOwnPlan):
		return utils.ErrorResponse(c, "Cannot adopt your own workout plan", fiber.StatusBadRequest, errorType)
	case errors.Is(err, services.ErrUpstream):
		return utils.ErrorResponse(c, "Assistant service unavailable", fiber.StatusInternalServerError, errorType)
	default:
		return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, errorType)
	}
}

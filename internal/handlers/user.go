package handlers

import (
	"strconv"

	"github.com/fitassist/fitassist/internal/services"
	"github.com/fitassist/fitassist/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserHandler handles the user profile routes
type UserHandler struct {
	DB *gorm.DB
}

// GetProfile handles GET /api/user/:userId
// @Summary Get a user's public profile with their main workout
// @Tags Users
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} services.ProfileView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/{userId} [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Invalid user ID", fiber.StatusBadRequest, "users.profile")
	}

	profile, err := services.GetUserProfile(h.DB, userID)
	if err != nil {
		return serviceError(c, err, "users.profile")
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

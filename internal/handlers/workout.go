package handlers

import (
	"strconv"

	"github.com/fitassist/fitassist/internal/middleware"
	"github.com/fitassist/fitassist/internal/services"
	"github.com/fitassist/fitassist/internal/types"
	"github.com/fitassist/fitassist/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// WorkoutHandler handles the workout plan routes
type WorkoutHandler struct {
	DB *gorm.DB
}

// ListWorkoutsRequest is the POST /workouts/user body.
type ListWorkoutsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// WorkoutIDRequest carries a workout plan id.
type WorkoutIDRequest struct {
	WorkoutID types.FlexUint64 `json:"workoutId"`
}

// ListForUser handles POST /api/workouts/user
// @Summary List the user's workouts, owned and adopted merged
// @Tags Workouts
// @Accept json
// @Produce json
// @Param body body ListWorkoutsRequest true "Paging"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /workouts/user [post]
func (h *WorkoutHandler) ListForUser(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "workouts.list")
	}

	var req ListWorkoutsRequest
	if err := c.BodyParser(&req); err != nil || req.Limit <= 0 {
		return utils.ErrorResponse(c, "Missing or invalid parameters", fiber.StatusBadRequest, "workouts.list")
	}

	workouts, mainWorkoutID, hasMore, err := services.ListWorkoutsForUser(h.DB, userID, req.Offset, req.Limit)
	if err != nil {
		return serviceError(c, err, "workouts.list")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"workouts":      workouts,
		"mainWorkoutId": mainWorkoutID,
		"hasMore":       hasMore,
	})
}

// Delete handles DELETE /api/workouts/:id
// @Summary Remove a workout from the user's listing
// @Description Unadopts for adopters, soft-deletes for creators
// @Tags Workouts
// @Produce json
// @Param id path int true "Workout plan ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "workouts.delete")
	}

	planID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Invalid workout id", fiber.StatusBadRequest, "workouts.delete")
	}

	if err := services.DeleteWorkoutForUser(h.DB, userID, planID); err != nil {
		return serviceError(c, err, "workouts.delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Adopt handles POST /api/workouts/adopt
// @Summary Adopt another user's workout plan
// @Tags Workouts
// @Accept json
// @Produce json
// @Param body body WorkoutIDRequest true "Workout"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /workouts/adopt [post]
func (h *WorkoutHandler) Adopt(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "workouts.adopt")
	}

	var req WorkoutIDRequest
	if err := c.BodyParser(&req); err != nil || req.WorkoutID == 0 {
		return utils.ErrorResponse(c, "Missing or invalid workoutId", fiber.StatusBadRequest, "workouts.adopt")
	}

	linkID, err := services.AdoptWorkoutPlan(h.DB, userID, req.WorkoutID.Uint64())
	if err != nil {
		return serviceError(c, err, "workouts.adopt")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"newWorkoutId": linkID,
	})
}

// SetMain handles POST /api/workouts/set-main
// @Summary Toggle a workout as the user's main workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Param body body WorkoutIDRequest true "Workout"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /workouts/set-main [post]
func (h *WorkoutHandler) SetMain(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "workouts.setMain")
	}

	var req WorkoutIDRequest
	if err := c.BodyParser(&req); err != nil || req.WorkoutID == 0 {
		return utils.ErrorResponse(c, "Invalid workout id", fiber.StatusBadRequest, "workouts.setMain")
	}

	set, err := services.SetMainWorkout(h.DB, userID, req.WorkoutID.Uint64())
	if err != nil {
		return serviceError(c, err, "workouts.setMain")
	}

	message := "Main workout unset"
	if set {
		message = "Main workout set"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

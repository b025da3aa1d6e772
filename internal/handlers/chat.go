package handlers

import (
	"github.com/fitassist/fitassist/internal/llm"
	"github.com/fitassist/fitassist/internal/services"
	"github.com/fitassist/fitassist/internal/types"
	"github.com/fitassist/fitassist/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ChatHandler handles the conversation routes
type ChatHandler struct {
	DB  *gorm.DB
	LLM llm.Client
}

// AskRequest is the POST /ask body.
type AskRequest struct {
	UserID         types.FlexUint64  `json:"userId"`
	Msg            string            `json:"msg"`
	ConversationID *types.FlexUint64 `json:"conversationId"`
}

// ConversationRequest addresses one conversation for one user.
type ConversationRequest struct {
	UserID         types.FlexUint64 `json:"userId"`
	ConversationID types.FlexUint64 `json:"conversationId"`
}

// UserRequest carries only a user id.
type UserRequest struct {
	UserID types.FlexUint64 `json:"userId"`
}

// Ask handles POST /api/ask
// @Summary Send a chat message to the fitness assistant
// @Description Mediates one chat turn; "save this", farewell, and end phrases are handled without a model call
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body AskRequest true "Message"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /ask [post]
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "chat.ask")
	}
	if req.UserID == 0 || req.Msg == "" {
		return utils.ErrorResponse(c, "Missing userId or msg in request body", fiber.StatusBadRequest, "chat.ask")
	}

	// A zero id means "no conversation yet", same as omitting the field.
	var conversationID *uint64
	if req.ConversationID != nil && req.ConversationID.Uint64() != 0 {
		id := req.ConversationID.Uint64()
		conversationID = &id
	}

	result, err := services.Ask(c.Context(), h.DB, h.LLM, req.UserID.Uint64(), req.Msg, conversationID)
	if err != nil {
		return serviceError(c, err, "chat.ask")
	}

	resp := fiber.Map{
		"answer":         result.Answer,
		"conversationId": result.ConversationID,
	}
	if result.Intent != "" {
		resp["intent"] = result.Intent
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Last handles POST /api/last
// @Summary Get the user's last active conversation
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body UserRequest true "User"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /last [post]
func (h *ChatHandler) Last(c *fiber.Ctx) error {
	var req UserRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return utils.ErrorResponse(c, "Missing userId in request body", fiber.StatusBadRequest, "chat.last")
	}

	conversationID, turns, err := services.LastActiveConversation(h.DB, req.UserID.Uint64())
	if err != nil {
		return serviceError(c, err, "chat.last")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"conversationId": conversationID,
		"messages":       turns,
	})
}

// SaveWorkoutPlan handles POST /api/save-workout-plan
// @Summary Save the conversation's most recent assistant reply as a workout plan
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body ConversationRequest true "Conversation"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /save-workout-plan [post]
func (h *ChatHandler) SaveWorkoutPlan(c *fiber.Ctx) error {
	var req ConversationRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 || req.ConversationID == 0 {
		return utils.ErrorResponse(c, "Missing userId or conversationId in request body", fiber.StatusBadRequest, "chat.savePlan")
	}

	planID, err := services.SavePlanFromConversation(h.DB, req.UserID.Uint64(), req.ConversationID.Uint64())
	if err != nil {
		return serviceError(c, err, "chat.savePlan")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"planId":  planID,
	})
}

// EndConversation handles POST /api/end-conversation
// @Summary Mark a conversation ended
// @Tags Chat
// @Accept json
// @Produce json
// @Param body body ConversationRequest true "Conversation"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /end-conversation [post]
func (h *ChatHandler) EndConversation(c *fiber.Ctx) error {
	var req ConversationRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 || req.ConversationID == 0 {
		return utils.ErrorResponse(c, "Missing userId or conversationId in request body", fiber.StatusBadRequest, "chat.end")
	}

	if err := services.EndConversation(h.DB, req.ConversationID.Uint64(), req.UserID.Uint64()); err != nil {
		return serviceError(c, err, "chat.end")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Conversation ended",
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitassist/fitassist/internal/llm"
	"github.com/fitassist/fitassist/internal/models"
	"gorm.io/gorm"
)

// Service error sentinels, mapped to HTTP statuses by the handlers.
var (
	ErrNotFound   = errors.New("not found")
	ErrNotOwner   = errors.New("not owner")
	ErrConflict   = errors.New("conflict")
	ErrUpstream   = errors.New("upstream unavailable")
	ErrValidation = errors.New("invalid input")
)

// systemPrompt is the fixed persona instruction prepended to every
// chat-completion request.
const systemPrompt = "You are a helpful fitness assistant who answers workout-related questions and creates workout plans."

// contextTurns caps how much history is sent to the model per request.
const contextTurns = 8

// Control phrases are matched by case-insensitive equality on the trimmed
// message. Farewells keep the conversation open; end phrases close it.
var farewellPhrases = map[string]struct{}{
	"bye":               {},
	"goodbye":           {},
	"see you":           {},
	"see ya":            {},
	"talk to you later": {},
}

var endPhrases = map[string]struct{}{
	"end conversation":     {},
	"end the conversation": {},
	"end chat":             {},
	"end session":          {},
	"that's all for today": {},
}

const savePhrase = "save this"

// Canned replies for control phrases.
const (
	goodbyeReply   = "Goodbye! Come back whenever you're ready for your next workout."
	closingReply   = "Great session! I've closed this conversation. Start a new one anytime."
	planSavedReply = "✅ Your workout plan has been saved."
	noPlanReply    = "⚠️ No workout plan found to save."
)

// AskResult is what the conversation manager hands back to the /ask handler.
type AskResult struct {
	Answer         string
	ConversationID uint64
	Intent         string
	Ended          bool
}

// GetOrStartConversation returns the user's most recent non-ended
// conversation or creates an empty one.
func GetOrStartConversation(db *gorm.DB, userID uint64) (*models.Conversation, error) {
	convo, err := activeConversation(db, userID)
	if err != nil {
		return nil, err
	}
	if convo != nil {
		return convo, nil
	}

	convo = &models.Conversation{UserID: userID}
	if err := convo.SetTurns([]models.Turn{}); err != nil {
		return nil, err
	}
	if err := db.Create(convo).Error; err != nil {
		return nil, err
	}
	return convo, nil
}

// activeConversation returns the most recent conversation with no ended
// mark, or nil when the user has none.
func activeConversation(db *gorm.DB, userID uint64) (*models.Conversation, error) {
	var convo models.Conversation
	err := db.Where("user_id = ? AND ended_at IS NULL", userID).
		Order("created_at DESC").
		First(&convo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &convo, nil
}

// AppendTurns loads the conversation's turn list, appends the given turns
// stamped with the current time, and writes the whole list back. Last
// writer wins; callers must not issue overlapping writes per conversation.
func AppendTurns(db *gorm.DB, conversationID uint64, turns []models.Turn) error {
	var convo models.Conversation
	if err := db.First(&convo, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
		}
		return err
	}

	existing, err := convo.Turns()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range turns {
		t.Timestamp = now
		existing = append(existing, t)
	}
	if err := convo.SetTurns(existing); err != nil {
		return err
	}
	return db.Model(&convo).Update("messages", convo.Messages).Error
}

// Ask mediates one chat turn: control-phrase handling first, otherwise a
// chat-completion call with at most the last contextTurns turns as context.
// The user's message is appended only after a reply was produced, so a
// failed upstream call leaves the turn list untouched.
func Ask(ctx context.Context, db *gorm.DB, client llm.Client, userID uint64, msg string, conversationID *uint64) (AskResult, error) {
	if strings.TrimSpace(msg) == "" {
		return AskResult{}, fmt.Errorf("empty message: %w", ErrValidation)
	}

	convo, err := resolveConversation(db, userID, conversationID)
	if err != nil {
		return AskResult{}, err
	}

	normalized := strings.ToLower(strings.TrimSpace(msg))

	if normalized == savePhrase {
		return saveFromConversation(db, userID, convo, msg)
	}

	if _, ok := farewellPhrases[normalized]; ok {
		if err := AppendTurns(db, convo.ID, []models.Turn{
			{Role: models.RoleUser, Content: msg},
			{Role: models.RoleAssistant, Content: goodbyeReply},
		}); err != nil {
			return AskResult{}, err
		}
		return AskResult{Answer: goodbyeReply, ConversationID: convo.ID}, nil
	}

	if _, ok := endPhrases[normalized]; ok {
		if err := AppendTurns(db, convo.ID, []models.Turn{
			{Role: models.RoleUser, Content: msg},
			{Role: models.RoleAssistant, Content: closingReply},
		}); err != nil {
			return AskResult{}, err
		}
		if err := markEnded(db, convo.ID); err != nil {
			return AskResult{}, err
		}
		return AskResult{Answer: closingReply, ConversationID: convo.ID, Ended: true}, nil
	}

	turns, err := convo.Turns()
	if err != nil {
		return AskResult{}, err
	}
	if len(turns) > contextTurns {
		turns = turns[len(turns)-contextTurns:]
	}

	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: msg})

	answer, err := client.Complete(ctx, messages)
	if err != nil {
		return AskResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if err := AppendTurns(db, convo.ID, []models.Turn{
		{Role: models.RoleUser, Content: msg},
		{Role: models.RoleAssistant, Content: answer},
	}); err != nil {
		return AskResult{}, err
	}

	// Best-effort enrichment; a classification failure never blocks the answer.
	intent, err := client.ClassifyIntent(ctx, answer)
	if err != nil {
		intent = llm.IntentOther
	}

	return AskResult{Answer: answer, ConversationID: convo.ID, Intent: intent}, nil
}

// resolveConversation loads the addressed conversation or falls back to the
// user's active one. Addressing someone else's conversation is an ownership
// error; addressing an ended one restarts on a fresh conversation.
func resolveConversation(db *gorm.DB, userID uint64, conversationID *uint64) (*models.Conversation, error) {
	if conversationID == nil {
		return GetOrStartConversation(db, userID)
	}

	var convo models.Conversation
	if err := db.First(&convo, *conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation %d: %w", *conversationID, ErrNotFound)
		}
		return nil, err
	}
	if convo.UserID != userID {
		return nil, fmt.Errorf("conversation %d: %w", *conversationID, ErrNotOwner)
	}
	if convo.EndedAt != nil {
		return GetOrStartConversation(db, userID)
	}
	return &convo, nil
}

// saveFromConversation extracts the most recent assistant turn and saves it
// as a workout plan linked to the conversation. With no assistant turn yet,
// the reply is a warning, not an error.
func saveFromConversation(db *gorm.DB, userID uint64, convo *models.Conversation, userMsg string) (AskResult, error) {
	turns, err := convo.Turns()
	if err != nil {
		return AskResult{}, err
	}

	last := models.LastAssistantTurn(turns)
	if last == nil {
		return AskResult{Answer: noPlanReply, ConversationID: convo.ID}, nil
	}

	planID, err := SaveWorkoutPlan(db, userID, "", last.Content)
	if err != nil {
		return AskResult{}, err
	}
	if err := db.Model(&models.Conversation{}).
		Where("id = ?", convo.ID).
		Update("workout_plan_id", planID).Error; err != nil {
		return AskResult{}, err
	}

	if err := AppendTurns(db, convo.ID, []models.Turn{
		{Role: models.RoleUser, Content: userMsg},
		{Role: models.RoleAssistant, Content: planSavedReply},
	}); err != nil {
		return AskResult{}, err
	}

	return AskResult{Answer: planSavedReply, ConversationID: convo.ID}, nil
}

// SavePlanFromConversation backs POST /save-workout-plan: same extraction
// as the "save this" chat command, addressed by conversation id.
func SavePlanFromConversation(db *gorm.DB, userID, conversationID uint64) (uint64, error) {
	var convo models.Conversation
	if err := db.First(&convo, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
		}
		return 0, err
	}
	if convo.UserID != userID {
		return 0, fmt.Errorf("conversation %d: %w", conversationID, ErrNotOwner)
	}

	turns, err := convo.Turns()
	if err != nil {
		return 0, err
	}
	last := models.LastAssistantTurn(turns)
	if last == nil {
		return 0, fmt.Errorf("no assistant turn to save: %w", ErrValidation)
	}

	planID, err := SaveWorkoutPlan(db, userID, "", last.Content)
	if err != nil {
		return 0, err
	}
	if err := db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("workout_plan_id", planID).Error; err != nil {
		return 0, err
	}
	return planID, nil
}

// LastActiveConversation returns the user's most recent conversation and
// its turns. Ended conversations are never resurfaced: when the newest
// conversation is ended or none exists, the id is nil and the turn list
// empty.
func LastActiveConversation(db *gorm.DB, userID uint64) (*uint64, []models.Turn, error) {
	convo, err := activeConversation(db, userID)
	if err != nil {
		return nil, nil, err
	}
	if convo == nil {
		return nil, []models.Turn{}, nil
	}
	turns, err := convo.Turns()
	if err != nil {
		return nil, nil, err
	}
	return &convo.ID, turns, nil
}

// EndConversation marks the conversation ended. Only the owner may end it;
// ending is one-way.
func EndConversation(db *gorm.DB, conversationID, requesterID uint64) error {
	var convo models.Conversation
	if err := db.First(&convo, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
		}
		return err
	}
	if convo.UserID != requesterID {
		return fmt.Errorf("conversation %d: %w", conversationID, ErrNotOwner)
	}
	if convo.EndedAt != nil {
		return nil
	}
	return markEnded(db, conversationID)
}

func markEnded(db *gorm.DB, conversationID uint64) error {
	now := time.Now().UTC()
	return db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("ended_at", now).Error
}

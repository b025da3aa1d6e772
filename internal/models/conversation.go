package models

import (
	"encoding/json"
	"time"
)

// Turn roles as stored in the conversation message log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single entry in a conversation's message log.
// Timestamp is an ISO-8601 string, matching the wire format.
type Turn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Conversation holds a user's chat session. The full turn list lives in the
// Messages JSON column and is always read and written whole. EndedAt is
// terminal: once set, the conversation never surfaces as "last active" again.
type Conversation struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	UserID        uint64 `gorm:"not null;index"`
	Messages      JSON   `gorm:"type:json"`
	WorkoutPlanID *uint64
	EndedAt       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// Turns decodes the JSON message log. A NULL or empty column yields an
// empty slice, never an error.
func (c *Conversation) Turns() ([]Turn, error) {
	if len(c.Messages.JSON) == 0 {
		return []Turn{}, nil
	}
	var turns []Turn
	if err := json.Unmarshal(c.Messages.JSON, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// SetTurns encodes the turn list back into the Messages column.
func (c *Conversation) SetTurns(turns []Turn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	c.Messages.JSON = raw
	return nil
}

// LastAssistantTurn returns the most recent assistant turn, or nil.
func LastAssistantTurn(turns []Turn) *Turn {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleAssistant {
			return &turns[i]
		}
	}
	return nil
}

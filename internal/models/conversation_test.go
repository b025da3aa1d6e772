package models_test

import (
	"testing"

	"github.com/fitassist/fitassist/internal/models"
)

func TestConversationTurnsRoundTrip(t *testing.T) {
	var convo models.Conversation

	// NULL column decodes to an empty list
	turns, err := convo.Turns()
	if err != nil {
		t.Fatalf("Turns failed on empty column: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Expected no turns, got %d", len(turns))
	}

	in := []models.Turn{
		{Role: models.RoleUser, Content: "hello", Timestamp: "2026-01-02T15:04:05Z"},
		{Role: models.RoleAssistant, Content: "hi", Timestamp: "2026-01-02T15:04:06Z"},
	}
	if err := convo.SetTurns(in); err != nil {
		t.Fatalf("SetTurns failed: %v", err)
	}

	out, err := convo.Turns()
	if err != nil {
		t.Fatalf("Turns failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(out))
	}
	if out[0] != in[0] || out[1] != in[1] {
		t.Errorf("Round-trip mismatch: %+v", out)
	}
}

func TestLastAssistantTurn(t *testing.T) {
	if models.LastAssistantTurn(nil) != nil {
		t.Error("Expected nil for an empty list")
	}
	if models.LastAssistantTurn([]models.Turn{{Role: models.RoleUser, Content: "q"}}) != nil {
		t.Error("Expected nil when no assistant turn exists")
	}

	turns := []models.Turn{
		{Role: models.RoleUser, Content: "q1"},
		{Role: models.RoleAssistant, Content: "a1"},
		{Role: models.RoleUser, Content: "q2"},
		{Role: models.RoleAssistant, Content: "a2"},
		{Role: models.RoleUser, Content: "q3"},
	}
	last := models.LastAssistantTurn(turns)
	if last == nil || last.Content != "a2" {
		t.Errorf("Expected the most recent assistant turn, got %+v", last)
	}
}

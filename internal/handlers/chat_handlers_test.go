package handlers_test

import (
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/fitassist/fitassist/internal/handlers"
	"github.com/fitassist/fitassist/internal/llm"
	"github.com/fitassist/fitassist/internal/services"
)

func setupChatApp(t *testing.T, client llm.Client) (*fiber.App, *handlers.ChatHandler) {
	t.Helper()

	db := setupTestDB(t)
	handler := &handlers.ChatHandler{DB: db, LLM: client}

	app := fiber.New()
	app.Post("/api/ask", handler.Ask)
	app.Post("/api/last", handler.Last)
	app.Post("/api/save-workout-plan", handler.SaveWorkoutPlan)
	app.Post("/api/end-conversation", handler.EndConversation)
	return app, handler
}

// TestAskEndpoint tests the POST /api/ask endpoint
func TestAskEndpoint(t *testing.T) {
	client := &scriptedLLM{reply: "Try 3x5 squats", intent: llm.IntentWorkoutPlan}
	app, handler := setupChatApp(t, client)
	userID := createTestUser(t, handler.DB, "g-1", "alice")

	status, body := doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId": userID,
		"msg":    "Give me a leg day plan",
	})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if body["answer"] != "Try 3x5 squats" {
		t.Errorf("Unexpected answer: %v", body["answer"])
	}
	if body["conversationId"] == nil {
		t.Error("Expected a conversationId in the response")
	}
	if body["intent"] != llm.IntentWorkoutPlan {
		t.Errorf("Expected the classified intent, got %v", body["intent"])
	}
}

// TestAskEndpointStringIDs tests that ids may arrive as JSON strings
func TestAskEndpointStringIDs(t *testing.T) {
	client := &scriptedLLM{reply: "ok"}
	app, handler := setupChatApp(t, client)
	userID := createTestUser(t, handler.DB, "g-1", "alice")

	status, _ := doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId": strconv.FormatUint(userID, 10),
		"msg":    "hello",
	})
	if status != 200 {
		t.Errorf("Expected status 200 for a string userId, got %d", status)
	}
}

// A zero conversationId behaves like an omitted one: a new conversation
// starts instead of a lookup for conversation 0.
func TestAskEndpointZeroConversationID(t *testing.T) {
	client := &scriptedLLM{reply: "ok"}
	app, handler := setupChatApp(t, client)
	userID := createTestUser(t, handler.DB, "g-1", "alice")

	status, body := doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId":         userID,
		"msg":            "hello",
		"conversationId": 0,
	})
	if status != 200 {
		t.Fatalf("Expected status 200 for a zero conversationId, got %d", status)
	}
	if id, ok := body["conversationId"].(float64); !ok || id == 0 {
		t.Errorf("Expected a fresh conversation id, got %v", body["conversationId"])
	}
}

// TestAskEndpointValidation tests the 400 paths of POST /api/ask
func TestAskEndpointValidation(t *testing.T) {
	client := &scriptedLLM{reply: "ok"}
	app, _ := setupChatApp(t, client)

	status, _ := doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"msg": "no user",
	})
	if status != 400 {
		t.Errorf("Expected status 400 without userId, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId": 1,
	})
	if status != 400 {
		t.Errorf("Expected status 400 without msg, got %d", status)
	}
}

// TestAskEndpointWrongOwner tests addressing another user's conversation
func TestAskEndpointWrongOwner(t *testing.T) {
	client := &scriptedLLM{reply: "ok"}
	app, handler := setupChatApp(t, client)
	aliceID := createTestUser(t, handler.DB, "g-1", "alice")
	bobID := createTestUser(t, handler.DB, "g-2", "bob")

	_, body := doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId": aliceID,
		"msg":    "hello",
	})
	conversationID := body["conversationId"]

	status, _ := doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId":         bobID,
		"msg":            "hello",
		"conversationId": conversationID,
	})
	if status != 403 {
		t.Errorf("Expected status 403 for someone else's conversation, got %d", status)
	}
}

// TestLastEndpoint tests the POST /api/last endpoint
func TestLastEndpoint(t *testing.T) {
	client := &scriptedLLM{reply: "Try squats"}
	app, handler := setupChatApp(t, client)
	userID := createTestUser(t, handler.DB, "g-1", "alice")

	// No conversation yet
	status, body := doJSON(t, app, "POST", "/api/last", map[string]interface{}{
		"userId": userID,
	})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if body["conversationId"] != nil {
		t.Errorf("Expected null conversationId, got %v", body["conversationId"])
	}

	doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId": userID,
		"msg":    "hello",
	})

	status, body = doJSON(t, app, "POST", "/api/last", map[string]interface{}{
		"userId": userID,
	})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if body["conversationId"] == nil {
		t.Error("Expected the active conversation id")
	}
	messages, ok := body["messages"].([]interface{})
	if !ok || len(messages) != 2 {
		t.Errorf("Expected 2 messages, got %v", body["messages"])
	}
}

// TestSaveWorkoutPlanEndpoint tests the POST /api/save-workout-plan endpoint
func TestSaveWorkoutPlanEndpoint(t *testing.T) {
	client := &scriptedLLM{reply: "Monday: bench press"}
	app, handler := setupChatApp(t, client)
	userID := createTestUser(t, handler.DB, "g-1", "alice")

	_, body := doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId": userID,
		"msg":    "plan please",
	})
	conversationID := body["conversationId"]

	status, body := doJSON(t, app, "POST", "/api/save-workout-plan", map[string]interface{}{
		"userId":         userID,
		"conversationId": conversationID,
	})
	if status != 201 {
		t.Fatalf("Expected status 201, got %d", status)
	}
	if body["planId"] == nil {
		t.Error("Expected a planId in the response")
	}
}

// TestSaveWorkoutPlanEndpointNoReply tests saving before any assistant turn
func TestSaveWorkoutPlanEndpointNoReply(t *testing.T) {
	client := &scriptedLLM{reply: "unused"}
	app, handler := setupChatApp(t, client)
	userID := createTestUser(t, handler.DB, "g-1", "alice")

	convo, err := services.GetOrStartConversation(handler.DB, userID)
	if err != nil {
		t.Fatalf("GetOrStartConversation failed: %v", err)
	}

	status, _ := doJSON(t, app, "POST", "/api/save-workout-plan", map[string]interface{}{
		"userId":         userID,
		"conversationId": convo.ID,
	})
	if status != 400 {
		t.Errorf("Expected status 400 without an assistant turn, got %d", status)
	}
}

// TestEndConversationEndpoint tests the POST /api/end-conversation endpoint
func TestEndConversationEndpoint(t *testing.T) {
	client := &scriptedLLM{reply: "ok"}
	app, handler := setupChatApp(t, client)
	userID := createTestUser(t, handler.DB, "g-1", "alice")
	strangerID := createTestUser(t, handler.DB, "g-2", "bob")

	_, body := doJSON(t, app, "POST", "/api/ask", map[string]interface{}{
		"userId": userID,
		"msg":    "hello",
	})
	conversationID := body["conversationId"]

	status, _ := doJSON(t, app, "POST", "/api/end-conversation", map[string]interface{}{
		"userId":         strangerID,
		"conversationId": conversationID,
	})
	if status != 403 {
		t.Errorf("Expected status 403 for a non-owner, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/api/end-conversation", map[string]interface{}{
		"userId":         userID,
		"conversationId": conversationID,
	})
	if status != 200 {
		t.Fatalf("Expected status 200, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/api/end-conversation", map[string]interface{}{
		"userId":         userID,
		"conversationId": 9999,
	})
	if status != 404 {
		t.Errorf("Expected status 404 for a missing conversation, got %d", status)
	}
}

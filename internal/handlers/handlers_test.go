package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fitassist/fitassist/internal/llm"
	"github.com/fitassist/fitassist/internal/middleware"
	"github.com/fitassist/fitassist/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.WorkoutPlan{},
		&models.AdoptedPlan{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// createTestUser inserts a user row and returns its id
func createTestUser(t *testing.T, db *gorm.DB, googleID, name string) uint64 {
	t.Helper()

	user := models.User{
		GoogleID: googleID,
		Name:     name,
		Email:    googleID + "@example.com",
		Username: name,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user.ID
}

// asUser stands in for the session middleware on authenticated routes
func asUser(userID uint64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, userID)
		return c.Next()
	}
}

// scriptedLLM is an llm.Client with fixed responses for handler tests
type scriptedLLM struct {
	reply  string
	intent string
}

func (s *scriptedLLM) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	return s.reply, nil
}

func (s *scriptedLLM) ClassifyIntent(ctx context.Context, answer string) (string, error) {
	if s.intent == "" {
		return llm.IntentOther, nil
	}
	return s.intent, nil
}

// doJSON runs a JSON request against the app and returns the status and
// decoded body (nil body for empty responses)
func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

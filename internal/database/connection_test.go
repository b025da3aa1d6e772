package database_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fitassist/fitassist/internal/config"
	"github.com/fitassist/fitassist/internal/database"
	"github.com/fitassist/fitassist/internal/models"
)

// waitForMariaDB pings until the server accepts authenticated connections;
// the listening port comes up before auth is ready
func waitForMariaDB(t *testing.T, dsn string) {
	t.Helper()

	raw, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("Failed to open raw connection: %v", err)
	}
	defer raw.Close()

	deadline := time.Now().Add(60 * time.Second)
	for {
		if err := raw.Ping(); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("MariaDB did not become ready in time")
		}
		time.Sleep(time.Second)
	}
}

// TestConnectMariaDB spins up a MariaDB container, runs the migrations
// against it, and round-trips a few rows. Requires Docker.
func TestConnectMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mariadb:11",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": "testroot",
				"MARIADB_DATABASE":      "fitassist",
				"MARIADB_USER":          "fitassist",
				"MARIADB_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}

	waitForMariaDB(t, fmt.Sprintf("fitassist:testpass@tcp(%s:%s)/fitassist", host, port.Port()))

	cfg := &config.Config{
		DBType:            "mariadb",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "fitassist",
		DBUser:            "fitassist",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	// Round-trip a user with a JSON conversation
	user := models.User{
		GoogleID: uuid.NewString(),
		Name:     "integration",
		Email:    "integration@example.com",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	convo := models.Conversation{UserID: user.ID}
	if err := convo.SetTurns([]models.Turn{
		{Role: models.RoleUser, Content: "hello", Timestamp: time.Now().UTC().Format(time.RFC3339)},
	}); err != nil {
		t.Fatalf("Failed to set turns: %v", err)
	}
	if err := db.Create(&convo).Error; err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	var loaded models.Conversation
	if err := db.First(&loaded, convo.ID).Error; err != nil {
		t.Fatalf("Failed to load conversation: %v", err)
	}
	turns, err := loaded.Turns()
	if err != nil {
		t.Fatalf("Failed to decode turns: %v", err)
	}
	if len(turns) != 1 || turns[0].Content != "hello" {
		t.Errorf("Unexpected turns after round-trip: %+v", turns)
	}

	// The unique adoption index must hold under a real dialect
	plan := models.WorkoutPlan{CreatedBy: user.ID, WorkoutName: "Legs", PlanText: "squats"}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("Failed to create plan: %v", err)
	}
	link := models.AdoptedPlan{UserID: user.ID, WorkoutPlanID: plan.ID, AdoptedAt: time.Now().UTC()}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("Failed to create adoption link: %v", err)
	}
	dup := models.AdoptedPlan{UserID: user.ID, WorkoutPlanID: plan.ID, AdoptedAt: time.Now().UTC()}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected the duplicate adoption insert to fail")
	}
}

// TestConnectUnsupportedType tests the dialector switch rejection path
func TestConnectUnsupportedType(t *testing.T) {
	_, err := database.Connect(&config.Config{DBType: "oracle"})
	if err == nil {
		t.Fatal("Expected an error for an unsupported database type")
	}
}

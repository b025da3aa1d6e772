package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/fitassist/fitassist/internal/config"
	"github.com/fitassist/fitassist/internal/database"
	"github.com/fitassist/fitassist/internal/handlers"
	"github.com/fitassist/fitassist/internal/llm"
	"github.com/fitassist/fitassist/internal/middleware"
	"github.com/fitassist/fitassist/internal/storage"
	"github.com/fitassist/fitassist/internal/types"

	_ "github.com/fitassist/fitassist/docs/api" // Swagger docs
)

// @title Fitassist API
// @version 1.0.0
// @description Fitness assistant backend: LLM chat, workout plans, social feed
// @termsOfService http://swagger.io/terms/

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Chat completion client
	llmClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)

	// Object store for post images
	var store storage.ObjectStore = storage.Noop{}
	if cfg.S3BucketName != "" {
		s3Store, err := storage.NewS3Store(cfg.AWSRegion, cfg.S3BucketName)
		if err != nil {
			log.Fatalf("Failed to create S3 store: %v", err)
		}
		store = s3Store
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("fitassist")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	chatHandler := &handlers.ChatHandler{DB: db, LLM: llmClient}
	workoutHandler := &handlers.WorkoutHandler{DB: db}
	socialHandler := &handlers.SocialHandler{DB: db, Store: store}
	userHandler := &handlers.UserHandler{DB: db}

	// Conversation routes
	api.Post("/ask", chatHandler.Ask)
	api.Post("/last", chatHandler.Last)
	api.Post("/save-workout-plan", chatHandler.SaveWorkoutPlan)
	api.Post("/end-conversation", chatHandler.EndConversation)

	// Workout routes (require user authentication)
	authUser := middleware.AuthUser(cfg, db)
	api.Post("/workouts/user", authUser, workoutHandler.ListForUser)
	api.Delete("/workouts/:id", authUser, workoutHandler.Delete)
	api.Post("/workouts/adopt", authUser, workoutHandler.Adopt)
	api.Post("/workouts/set-main", authUser, workoutHandler.SetMain)

	// User profile
	api.Get("/user/:userId", userHandler.GetProfile)

	// Social routes (require user authentication)
	api.Get("/posts", authUser, socialHandler.ListPosts)
	api.Post("/posts", authUser, socialHandler.CreatePost)
	api.Delete("/posts/:id", authUser, socialHandler.DeletePost)
	api.Post("/posts/:id/like", authUser, socialHandler.LikePost)
	api.Delete("/posts/:id/like", authUser, socialHandler.UnlikePost)
	api.Get("/posts/:postId/comments", authUser, socialHandler.ListComments)
	api.Post("/posts/:postId/comments", authUser, socialHandler.CreateComment)
	api.Delete("/comments/:id", authUser, socialHandler.DeleteComment)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	switch e := err.(type) {
	case *fiber.Error:
		code = e.Code
		message = e.Message
	case *types.CustomError:
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/templateflow/api/internal/config"
	"github.com/templateflow/api/internal/handler"
	"github.com/templateflow/api/internal/ledger"
	"github.com/templateflow/api/internal/middleware"
	"github.com/templateflow/api/internal/service"
	"github.com/templateflow/api/internal/store"
	"github.com/templateflow/api/internal/worker"
	ws "github.com/templateflow/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize stores and services
	jobStore := store.NewRedisStore(redisClient)
	jobService := service.NewJobService(jobStore, asynqClient, cfg.Thresholds)
	decisionLedger := ledger.New(ledger.NewRedisStore(redisClient))

	// Initialize handlers
	jobHandler := handler.NewJobHandler(jobService, validate)
	matchHandler := handler.NewMatchHandler(jobService, validate)
	validationHandler := handler.NewValidationHandler(jobService, validate)
	ledgerHandler := handler.NewLedgerHandler(decisionLedger, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    20 * 1024 * 1024, // 20MB: layer lists can be large
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Job routes
	jobs := api.Group("/jobs")
	jobs.Post("/", rateLimiter.JobLimit(cfg.RateLimit.JobsPerHour), jobHandler.Create)
	jobs.Get("/", jobHandler.List)
	jobs.Get("/:jobId", jobHandler.Get)
	jobs.Post("/:jobId/parse", jobHandler.Parse)
	jobs.Get("/:jobId/audit", jobHandler.Audit)
	jobs.Get("/:jobId/script", jobHandler.Script)

	// Matching routes
	jobs.Post("/:jobId/match", matchHandler.Run)
	jobs.Get("/:jobId/matches", matchHandler.Get)
	jobs.Put("/:jobId/matches/:sourceId", matchHandler.Override)
	jobs.Post("/:jobId/review/complete", matchHandler.CompleteReview)

	// Validation routes
	jobs.Post("/:jobId/preview/approve", validationHandler.ApprovePreview)
	jobs.Get("/:jobId/conflicts", validationHandler.Conflicts)
	jobs.Post("/:jobId/validation/approve", validationHandler.Approve)
	jobs.Post("/:jobId/validation/override", validationHandler.Override)
	jobs.Post("/:jobId/validation/return", validationHandler.Return)
	jobs.Post("/:jobId/script/retry", validationHandler.Retry)

	// Ledger routes
	ledgerGroup := api.Group("/ledger")
	ledgerGroup.Post("/decisions", rateLimiter.DecisionLimit(cfg.RateLimit.DecisionsPerMin), ledgerHandler.RecordDecision)
	ledgerGroup.Get("/stats", ledgerHandler.Stats)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, jobService, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, jobService *service.JobService, hub *ws.Hub) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				service.QueuePreview: 6,
				service.QueueScript:  4,
			},
		},
	)

	// Create workers
	previewWorker := worker.NewPreviewWorker(jobService, hub)
	scriptWorker := worker.NewScriptWorker(jobService, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypePreview, previewWorker.ProcessTask)
	mux.HandleFunc(service.TaskTypeScript, scriptWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}

package main

import (
	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/coach"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/hindsight"
	"alcyxob/workout-tracker/internal/memory"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Workout Tracker API
// @version 1.0
// @description Chat-driven workout logging, plan generation and insights backed by a Hindsight memory bank.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Workout Tracker Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatalf("FATAL: jwt.secret (JWT_SECRET) must be set")
	}
	if cfg.OpenAI.APIKey == "" {
		log.Println("WARN: OPENAI_API_KEY is not set; coach replies will fail")
	}
	log.Println("Configuration loaded.")

	// --- Memory bank ---
	// The bank must exist before anything is logged, so a failure here is fatal.
	gateway := memory.NewGateway(hindsight.NewClient(cfg.Hindsight.BaseURL), cfg.Hindsight.BankID)
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	err = gateway.Init(initCtx)
	cancelInit()
	if err != nil {
		log.Fatalf("FATAL: Could not initialize memory bank '%s' at %s: %v", cfg.Hindsight.BankID, cfg.Hindsight.BaseURL, err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	s3Storage, err := storage.NewS3Storage(cfg.S3)
	switch {
	case errors.Is(err, storage.ErrStorageDisabled):
		log.Println("INFO: No S3 bucket configured; transcript export disabled.")
	case err != nil:
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	default:
		fileStorage = s3Storage
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	responder := coach.NewResponder(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	services := api.Services{
		Auth:    service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Session: service.NewSessionService(sessionRepo),
		Chat:    service.NewChatService(sessionRepo, gateway, responder),
		Plan:    service.NewPlanService(sessionRepo, gateway),
		Insight: service.NewInsightService(gateway),
		Export:  service.NewExportService(sessionRepo, fileStorage),
	}

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware
	if err := api.SetupRoutes(router, cfg.JWT.Secret, cfg.Server.SecureCookies, services); err != nil {
		log.Fatalf("FATAL: Could not set up routes: %v", err)
	}

	// --- Start HTTP Server ---
	// Plan generation and reflect calls can take tens of seconds.
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s (model %s, bank %s)", cfg.Server.Address, responder.Model(), gateway.BankID())

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

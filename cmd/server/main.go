package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guardian-angel-api/config"
	"guardian-angel-api/internal/contact"
	"guardian-angel-api/internal/insight"
	"guardian-angel-api/internal/logs"
	"guardian-angel-api/internal/sos"
	"guardian-angel-api/internal/voice"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"google.golang.org/genai"
	"gorm.io/gorm"
)

const shutdownGracePeriod = 10 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Ignoring .env: %v", err)
	}
	cfg := config.LoadConfig()

	// Nothing outlives the process; the database only holds session state.
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database handle:", err)
	}
	// Shared-cache SQLite reports table locks under concurrent writers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&contact.EmergencyContact{}, &logs.SystemLog{}, &sos.SOSAlert{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx := context.Background()
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.GeminiKey,
	}
	if cfg.UseVertex() {
		// ADC, no API key.
		clientCfg = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.GCPProject,
			Location: cfg.GCPLocation,
		}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		log.Fatal("Failed to create genai client:", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	logService := &logs.LogService{DB: db}
	logs.RegisterRoutes(r, logService)

	contactService := contact.NewContactService(db)
	if err := contactService.SeedDefaults(); err != nil {
		log.Fatal("Failed to seed contacts:", err)
	}
	contact.RegisterRoutes(r, contactService)

	sosService := &sos.SOSService{DB: db, Contacts: contactService, Events: logService}
	sos.RegisterRoutes(r, sosService)

	insightService := insight.NewInsightService(client, &cfg)
	insight.RegisterRoutes(r, insightService, logService)

	tracker := voice.NewTracker(cfg.MaxLiveSessions)
	voiceController := voice.NewVoiceController(voice.NewGenAIConnector(client), tracker, logService, &cfg)
	voice.RegisterRoutes(r, voiceController)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: r,
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s ...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
			return
		}
		listenErr <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		log.Fatal(err)
	case sig := <-sigCh:
		log.Printf("Shutdown signal received: %s", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}

	// Hijacked websockets are not covered by Shutdown.
	if n := tracker.CancelAll(); n > 0 {
		log.Printf("Stopping %d live session(s)", n)
	}
	if !tracker.Wait(shutdownCtx) {
		log.Printf("Live sessions did not stop within %s", shutdownGracePeriod)
	}
	log.Printf("Server stopped")
}

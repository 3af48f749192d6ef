package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"alfabeta/internal/audio"
	"alfabeta/internal/catalog"
	"alfabeta/internal/clock"
	"alfabeta/internal/config"
	"alfabeta/internal/events"
	"alfabeta/internal/handlers"
	"alfabeta/internal/logging"
	"alfabeta/internal/metrics"
	"alfabeta/internal/random"
	"alfabeta/internal/repository"
	"alfabeta/internal/security"
	"alfabeta/internal/service"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the word and sentence catalog
	var items *catalog.Catalog
	if cfg.CatalogPath != "" {
		items, err = catalog.Load(cfg.CatalogPath)
	} else {
		items, err = catalog.Default()
	}
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded",
		zap.Int("words", len(items.Words())),
		zap.Int("sentences", len(items.Sentences())),
	)

	m := metrics.New()

	// Open the state store, falling back to memory so the game stays playable
	store, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open state store, progress will not survive a restart",
			zap.String("backend", cfg.StorageBackend), zap.Error(err))
		store, closeStore = repository.NewMemoryStateRepository(), func() {}
	}
	defer closeStore()
	logger.Info("State store ready", zap.String("store", store.Describe()))

	rng := random.New()
	if cfg.RandomSeed != 0 {
		rng = random.NewSeeded(cfg.RandomSeed)
	}

	// Initialize services
	hub := events.NewHub(logger.Named("events"), m)
	persistence := service.NewPersistence(store, items, logger.Named("persistence"), m)
	session := service.NewSessionService(ctx, items, persistence, service.SessionOptions{
		Clock:     clock.System(),
		Random:    rng,
		Publisher: hub,
		Logger:    logger.Named("session"),
		Metrics:   m,
	})

	var tts *audio.TTSService
	practiceOpts := service.PracticeOptions{
		Clock:   clock.System(),
		Random:  rng,
		Logger:  logger.Named("practice"),
		Metrics: m,
		Delays: service.Delays{
			Success:     cfg.SuccessDelay,
			Retry:       cfg.RetryDelay,
			Celebration: cfg.CelebrationDelay,
		},
	}
	if cfg.TTSEnabled {
		tts = audio.NewTTSService(cfg.AudioDir, "/audio", cfg.TTSLanguage, logger.Named("tts"))
		practiceOpts.Pronouncer = tts
	}
	controller := service.NewPracticeController(session, practiceOpts)

	snapshot := session.Snapshot()
	if err := session.StartSession(snapshot.Mode.ID, snapshot.Progress.CurrentLevel); err != nil {
		logger.Fatal("Failed to start session", zap.Error(err))
	}
	controller.Sync()

	// Generate any missing audio files
	var warm sync.WaitGroup
	if tts != nil {
		warm.Add(1)
		go func() {
			defer warm.Done()
			if err := tts.Warm(ctx, items.TileTexts()); err != nil && ctx.Err() == nil {
				logger.Warn("Failed to pre-generate audio files", zap.Error(err))
			}
		}()
	}

	tokens, err := security.NewTokenManager(cfg.ParentTokenSecret, cfg.SessionDuration)
	if err != nil {
		logger.Fatal("Failed to create token manager", zap.Error(err))
	}
	if cfg.ParentTokenSecret == "" {
		logger.Warn("PARENT_TOKEN_SECRET not set, parent logins will not survive a restart")
	}
	csrf := security.NewCSRFGenerator(cfg.ParentTokenSecret + ":csrf")
	limiter := security.NewRateLimiter(cfg.PINAttempts, cfg.PINWindow)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger.Named("email"))
	if err != nil {
		logger.Warn("Failed to initialize email service, reports disabled", zap.Error(err))
		emailService, _ = service.NewEmailService(ctx, "", "", "", "", logger.Named("email"))
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(tokens, csrf, limiter, logger.Named("http"), m)
	gameHandler := handlers.NewGameHandler(items, session, controller)
	audioHandler := handlers.NewAudioHandler(tts)
	parentHandler := handlers.NewParentHandler(session, controller, emailService, tokens, csrf, logger.Named("parent"))

	// Setup routes
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))
	mux.Handle("GET /audio/", http.StripPrefix("/audio/", http.FileServer(http.Dir(cfg.AudioDir))))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"store":   persistence.Describe(),
			"clients": hub.ClientCount(),
		})
	})
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("GET /ws/events", hub)

	handlers.RegisterRoutes(mux, middleware, gameHandler, audioHandler, parentHandler)

	// Wrap with logging middleware
	handler := middleware.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info("Server starting", zap.String("url", "http://localhost"+addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	cancel()
	hub.Close()
	controller.Close()
	limiter.Stop()
	warm.Wait()
	if tts != nil {
		tts.Wait()
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"martapp/kiosk/internal/blob"
	"martapp/kiosk/internal/config"
	"martapp/kiosk/internal/genai"
	"martapp/kiosk/internal/handler"
	"martapp/kiosk/internal/journal"
	"martapp/kiosk/internal/player"
	"martapp/kiosk/internal/repository"
	"martapp/kiosk/internal/service"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Initialize local storage. The database opens lazily; the probe
	// here only decides whether to run on the durable file or fall back to
	// in-memory stores for this session.
	database := repository.NewDatabase(config.SQLiteDSN(cfg.Database.SQLite))
	var kvStore repository.KVStore
	var blobStore repository.BlobStore
	if _, err := database.Get(context.Background()); err != nil {
		logger.Warn("local database unavailable, state will not survive restart", zap.Error(err))
		kvStore = repository.NewMemoryKVStore()
		blobStore = repository.NewMemoryBlobStore()
	} else {
		kvStore = repository.NewSQLiteKVStore(database)
		blobStore = repository.NewSQLiteBlobStore(database)
		logger.Info("using SQLite storage", zap.String("path", cfg.Database.SQLite.Path))
	}

	// 4. Initialize session store (Redis or in-memory)
	var sessionStore repository.SessionStore
	switch cfg.Session.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		sessionStore = repository.NewRedisSessionStore(redisClient)
		logger.Info("using Redis session store")
	case "memory":
		sessionStore = repository.NewMemorySessionStore()
		logger.Info("using in-memory session store")
	default:
		logger.Fatal("unknown session backend", zap.String("backend", cfg.Session.Backend))
	}

	// 5. Blob resolver for playable/servable file handles
	resolver := blob.NewResolver(blobStore, logger, cfg.Media.HandleDir)
	defer resolver.ReleaseAll()

	// 6. Text generation client
	genaiClient := genai.NewClient(cfg.GenAI.APIKey, cfg.GenAI.Model, cfg.GenAI.Endpoint, cfg.GenAI.Timeout)
	generateText := service.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
		return genaiClient.GenerateText(ctx, prompt, cfg.GenAI.Temperature)
	})
	generateJSON := service.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
		return genaiClient.GenerateJSON(ctx, prompt, cfg.GenAI.Temperature)
	})

	// 7. Interaction journal
	j := journal.New(kvStore, logger)
	j.Load(context.Background())
	defer j.Close()

	// 8. Initialize services and hydrate their state cells
	audioService := service.NewAudioService(kvStore, blobStore, resolver, logger)
	catalogService := service.NewCatalogService(kvStore, blobStore, resolver, logger)
	settingsService := service.NewSettingsService(kvStore, logger)
	chatService := service.NewChatService(kvStore, catalogService, generateText, logger)
	reportService := service.NewReportService(j, catalogService, settingsService, generateJSON, logger)
	authService := service.NewAuthService(cfg.Auth, sessionStore, cfg.Session.TTL)

	audioService.Load(context.Background())
	catalogService.Load(context.Background())
	settingsService.Load(context.Background())
	chatService.Load(context.Background())
	defer audioService.Close()
	defer catalogService.Close()
	defer settingsService.Close()
	defer chatService.Close()

	// 9. Playback channels and coordinator
	ambientSink, err := player.NewMPVSink(cfg.Media.PlayerBinary, cfg.Media.SocketDir, "ambient", logger)
	if err != nil {
		logger.Fatal("failed to start ambient player", zap.Error(err))
	}
	spotSink, err := player.NewMPVSink(cfg.Media.PlayerBinary, cfg.Media.SocketDir, "spot", logger)
	if err != nil {
		logger.Fatal("failed to start spot player", zap.Error(err))
	}
	coordinator := player.NewCoordinator(
		player.NewChannel("ambient", ambientSink, logger),
		player.NewChannel("spot", spotSink, logger),
		resolver, j,
		audioService.PlaylistCell(), audioService.SpotCell(),
		cfg.Media.FadeDuration, logger,
	)
	defer coordinator.Close()

	// 10. Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	playbackHandler := handler.NewPlaybackHandler(coordinator)
	audioHandler := handler.NewAudioHandler(audioService, coordinator)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	chatHandler := handler.NewChatHandler(chatService)
	reportHandler := handler.NewReportHandler(j, reportService)
	mediaHandler := handler.NewMediaHandler(resolver, blobStore)

	// 11. Setup router
	router := handler.SetupRouter(cfg, logger,
		authHandler, playbackHandler, audioHandler, catalogHandler,
		settingsHandler, chatHandler, reportHandler, mediaHandler)

	// 12. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 13. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

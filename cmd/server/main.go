package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/api"
	"github.com/nmoreno/impostor-server/internal/config"
	"github.com/nmoreno/impostor-server/internal/service"
	"github.com/nmoreno/impostor-server/internal/store"
	"github.com/nmoreno/impostor-server/internal/websocket"
	"github.com/nmoreno/impostor-server/internal/words"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Ephemeral store: Redis when configured, in-process memory otherwise.
	var (
		sessions  store.SessionStore
		messages  store.MessageStore
		wordCache words.Cache
	)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		redisStore := store.NewRedisStore(redisClient)
		sessions = redisStore
		messages = redisStore
		wordCache = redisStore
		logger.Info("using redis session store")
	} else {
		memStore := store.NewMemoryStore()
		sessions = memStore
		messages = memStore
		wordCache = memStore
		logger.Warn("REDIS_URL not set, sessions are in-process only")
	}

	// Durable mirror and game results: Postgres when configured.
	var results store.ResultStore = store.NewMemoryResultStore()
	if cfg.DatabaseURL != "" {
		db, err := store.NewConnection(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		sessions = store.NewLayeredStore(sessions, store.NewSnapshotStore(db), logger)
		results = store.NewResultRepository(db)
		logger.Info("using postgres for snapshots and results")
	} else {
		logger.Warn("DATABASE_URL not set, results are in-process only")
	}

	gemini := words.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	wordService := words.NewService(gemini, wordCache, logger)

	services := service.NewServices(sessions, messages, results, wordService, logger)

	hub := websocket.NewHub(logger)
	services.SetBroadcaster(hub)

	dispatcher := websocket.NewDispatcher(services.Sessions, services.Games, services.Chat, services.Timers, hub, logger)

	router := api.NewRouter(services, hub, dispatcher, cfg, logger)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	services.Timers.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

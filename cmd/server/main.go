package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neonchat/chat-server/internal/api"
	"github.com/neonchat/chat-server/internal/core/service"
	"github.com/neonchat/chat-server/internal/infrastructure/config"
	"github.com/neonchat/chat-server/internal/infrastructure/db/postgres"
	redisdb "github.com/neonchat/chat-server/internal/infrastructure/db/redis"
	"github.com/neonchat/chat-server/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet.
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	// Schema must exist before the first connection is accepted.
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Core wiring ---
	registry := service.NewRegistry()
	verifier := service.NewTokenService(cfg.JWTSecret)
	authService := service.NewAuthService(postgres.NewAccountRepository(pool), cfg.JWTSecret, cfg.TokenTTL)
	chatService := service.NewChatService(
		registry,
		postgres.NewUserRepository(pool),
		postgres.NewMessageRepository(pool),
		redisdb.NewHistoryCache(rdb, cfg.Chat.HistorySize),
		logger.Component("chat"),
	)

	e := api.NewRouter(api.Deps{
		Pool:     pool,
		Redis:    rdb,
		Verifier: verifier,
		Auth:     authService,
		Chat:     chatService,
		Registry: registry,
		MaxFrame: cfg.Chat.MaxFrameBytes,
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("chat server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

/*
Package main is the entry point for the TypeRace server.

It loads configuration, initializes logging, wires the race store, content generator,
result publisher and multiplayer hub, serves HTTP and WebSocket traffic, and shuts
everything down gracefully on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"typerace/internal/app/content"
	"typerace/internal/app/db"
	"typerace/internal/app/directory"
	"typerace/internal/app/history"
	"typerace/internal/app/multiplayer"
	"typerace/internal/app/race"
	"typerace/internal/configs"
	"typerace/internal/handler"
	"typerace/internal/pkg/auth/jwt"
	"typerace/internal/pkg/logx"
	"typerace/internal/pkg/pow"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("pow_difficulty", cfg.PowDifficulty).
		Str("store_driver", cfg.StoreDriver).
		Bool("llm_content", cfg.LLMEndpoint != "").
		Bool("result_publishing", cfg.RedisAddr != "").
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage and user directory
	var (
		store race.Store
		users directory.Directory
	)
	switch cfg.StoreDriver {
	case configs.StoreDriverMemory:
		logx.Warn("Using in-memory store; rooms are lost on restart and any user id is accepted")
		store = race.NewMemoryStore()
		users = directory.NewMemoryDirectory(true)
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to initialize database")
		}
		defer pool.Close()
		logx.Info("Database connected and migrations applied")

		store = db.NewStore(pool)
		users = directory.NewPostgresDirectory(pool)
	}

	// Content generation
	var generator race.ContentGenerator = content.NewLocalGenerator()
	if cfg.LLMEndpoint != "" {
		generator = content.NewLLMGenerator(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, cfg.ContentTimeout)
	}

	// Result publishing
	var publisher race.ResultPublisher
	if cfg.RedisAddr != "" {
		rdb, err := history.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logx.Fatal(err, "Failed to connect to result queue")
		}
		defer func(rdb *redis.Client) {
			if err := rdb.Close(); err != nil {
				logx.Error(err, "Failed to close Redis client")
			}
		}(rdb)
		publisher = history.NewRedisPublisher(rdb, cfg.ResultsQueue)
	}

	races := race.NewService(store, generator, race.WithResultPublisher(publisher))
	go races.RunSweeper(ctx, cfg.RoomTTL, cfg.SweepInterval)

	verify := func(token string) (string, error) {
		payload, err := jwt.ParseToken(token, cfg.JWTSecret)
		if err != nil {
			return "", err
		}
		return payload.UserID, nil
	}
	hub := multiplayer.NewHub(races, users, multiplayer.WithTokenVerifier(verify, !cfg.IsDevelopment()))

	deps := &handler.AppDeps{
		Config:    cfg,
		Races:     races,
		Hub:       hub,
		Directory: users,
		PoW:       pow.NewManager(ctx, cfg.PowDifficulty),
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("TypeRace Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "HTTP server shutdown did not complete")
	}

	if err := hub.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Multiplayer hub shutdown did not complete")
	}

	logx.Info("Server gracefully stopped.")
}

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

	"github.com/cat-in-the-dark/MessageBus/internal/app"
	httpx "github.com/cat-in-the-dark/MessageBus/internal/http"
	"github.com/cat-in-the-dark/MessageBus/internal/match"
	"github.com/cat-in-the-dark/MessageBus/internal/notify"
	"github.com/cat-in-the-dark/MessageBus/internal/store"
	"github.com/cat-in-the-dark/MessageBus/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Postgres audit trail + migrations
	pg, err := store.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("postgres connect", "err", err)
		log.Fatal(err)
	}
	defer pg.Close()
	if err := store.RunMigrations(ctx, pg, logger); err != nil {
		logger.Error("migrations", "err", err)
		log.Fatal(err)
	}

	// Optional redis lifecycle event feed
	var feed *ws.RedisFeed
	if cfg.RedisAddr != "" {
		feed, err = ws.NewRedisFeed(ctx, cfg, logger)
		if err != nil {
			logger.Error("redis connect", "err", err)
			log.Fatal(err)
		}
		defer feed.Close()
	}

	// Optional "looking for players" webhook
	var notifier ws.Notifier
	if n := notify.New(cfg.NotifyURL, logger); n != nil {
		notifier = n
	}

	// Matchmaking registry + hub
	registry := match.NewRegistry(cfg.RoomCapacity)
	hub := ws.NewHub(logger, registry, pg, notifier, feed, cfg.RoomTTL)
	go hub.Run(ctx)

	// HTTP + WS router
	router := httpx.NewRouter(cfg, logger, hub, registry)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr, "capacity", cfg.RoomCapacity)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}

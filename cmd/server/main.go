package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dotapulse/gsi-backend/internal/config"
	"github.com/dotapulse/gsi-backend/internal/httpapi"
	"github.com/dotapulse/gsi-backend/internal/hub"
	"github.com/dotapulse/gsi-backend/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *zap.Logger
	if cfg.DevMode() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := session.NewTracker(cfg.SessionTTL, logger)
	h := hub.NewHub(ctx, hub.Options{
		AuthToken:         cfg.AuthToken,
		HeartbeatInterval: cfg.HeartbeatInterval,
		ClientTimeout:     cfg.ClientTimeout,
		RoomTTL:           cfg.RoomTTL,
		RoomSweepInterval: cfg.RoomSweepInterval,
	}, logger)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(cfg, tracker, h, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tracker.Run(gctx, cfg.SessionSweepInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		h.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

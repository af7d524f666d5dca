package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/drumdungeon/internal/app"
	"github.com/vytor/drumdungeon/internal/config"
	"github.com/vytor/drumdungeon/internal/logger"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Drum Dungeon Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("data_dir=%s", cfg.DataDir)
	log.Debug("db_enabled=%t", cfg.DBEnabled)
	log.Debug("db_type=%s", cfg.DBType)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("redis_enabled=%t", cfg.RedisURL != "")
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("queue_size=%d", cfg.QueueSize)
	log.Debug("reconcile_concurrency=%d", cfg.ReconcileConcurrency)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = logger.NewContext(ctx, log)

	application, err := app.New(ctx, cfg, app.Options{Background: true})
	if err != nil {
		log.Error("failed to initialize: %v", err)
		os.Exit(1)
	}
	application.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      application.Server().Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pools")
	cancel()
	application.Close()

	log.Info("===========================================")
	log.Info("Drum Dungeon Server Stopped")
	log.Info("===========================================")
}

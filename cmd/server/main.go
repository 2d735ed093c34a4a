package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wellnesstracker/internal/config"
	"wellnesstracker/internal/handlers"
	"wellnesstracker/internal/logging"
	"wellnesstracker/internal/metrics"
	"wellnesstracker/internal/repository"
	"wellnesstracker/internal/security"
	"wellnesstracker/internal/service"
	"wellnesstracker/internal/templates"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wellness tracker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.SecretGenerated {
		logger.Warn("SESSION_SECRET not set, using a random secret for this run")
	}

	// Open the response table; a malformed file stops startup
	store, err := repository.OpenResponseStore(cfg.DataFile)
	if err != nil {
		logger.Error("failed to open response store", zap.String("path", cfg.DataFile), zap.Error(err))
		return err
	}
	defer store.Close()

	logger.Info("response store opened",
		zap.String("path", store.Path()),
		zap.Int("rows", store.Count()),
		zap.Int("players", len(cfg.Roster)),
	)

	tmpl, err := templates.Load()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.NewRecorder()
		rec.SetStoredRows(store.Count())
	}

	// Services
	checkIns := service.NewCheckInService(store, cfg.Roster)
	results := service.NewResultsService(store)

	// Handlers
	flash := security.NewFlashSigner(cfg.SessionSecret, cfg.FlashTTL)
	router := handlers.NewRouter(handlers.RouterConfig{
		CheckIn:      handlers.NewCheckInHandler(checkIns, store, tmpl, flash, rec, logger),
		Results:      handlers.NewResultsHandler(results, tmpl, rec, logger),
		Metrics:      rec,
		Logger:       logger,
		CSRFSecret:   cfg.SessionSecret,
		CookieSecure: cfg.CookieSecure,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", "http://localhost"+server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case sig := <-quit:
		logger.Info("server shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

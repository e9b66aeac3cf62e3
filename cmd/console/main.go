package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/vigia/internal/api"
	"github.com/saturnino-fabrica-de-software/vigia/internal/backend"
	"github.com/saturnino-fabrica-de-software/vigia/internal/config"
	"github.com/saturnino-fabrica-de-software/vigia/internal/console"
	"github.com/saturnino-fabrica-de-software/vigia/internal/directory"
	"github.com/saturnino-fabrica-de-software/vigia/internal/feed"
	"github.com/saturnino-fabrica-de-software/vigia/internal/policy"
	"github.com/saturnino-fabrica-de-software/vigia/internal/push"
	"github.com/saturnino-fabrica-de-software/vigia/internal/registration"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Vigia console",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("backend", cfg.BackendURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backend adapters
	clientCfg := backend.DefaultConfig()
	clientCfg.BaseURL = cfg.BackendURL
	clientCfg.Token = cfg.BackendToken
	clientCfg.Timeout = cfg.BackendTimeout
	client := backend.NewClient(clientCfg)

	dispatcher := push.NewDispatcher()
	go dispatcher.Run(ctx)

	streamCfg := backend.StreamConfig{
		URL:        cfg.PushURL(),
		MinBackoff: cfg.StreamMinBackoff,
		MaxBackoff: cfg.StreamMaxBackoff,
	}
	stream := backend.NewStream(streamCfg, dispatcher, logger)
	go stream.Run(ctx)

	// Dashboard rebroadcast hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Console core
	buffer := feed.NewBuffer(cfg.EventBufferSize)
	session := registration.NewSession(client, logger).
		WithDwellTimes(cfg.SuccessClearAfter, cfg.FailureClearAfter)
	dir := directory.New(client, logger)
	editor := policy.NewEditor(client, dir, logger)

	core := console.New(client, dispatcher, buffer, session, editor, dir, hub, logger)
	core.Start(ctx)
	defer core.Close()

	// HTTP surface for the dashboard
	router := api.NewRouter(logger, &api.Dependencies{
		Buffer:    buffer,
		Session:   session,
		Editor:    editor,
		Directory: dir,
		Hub:       hub,
		StreamURL: cfg.BackendURL + "/stream",
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the memory engine over HTTP",
	Long: `Start the HTTP API.

Endpoints:
  POST /v1/memories         remember a conversation batch
  GET  /v1/memories/search  search memories (q, k, user_id, agent_id)
  GET  /healthz             liveness check

Example:
  recall serve
  curl 'localhost:8484/v1/memories/search?q=pets&k=3'`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, engine, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = engine.Close()
		_ = logger.Sync()
	}()

	server, err := httpapi.NewServer(engine, cfg.Server, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iwvelando/strategy-compare/internal/server"
	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var serverConfigPath, address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison API over HTTP.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), serverConfigPath, address, cmd.Flag("log-level").Value.String())
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

func runServe(ctx context.Context, configPath, address, logLevel string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load server configuration at %s: %w", configPath, err)
	}
	if address != "" {
		cfg.Address = address
	}

	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	engineOpts, err := cfg.Comparison().EngineOptions()
	if err != nil {
		return fmt.Errorf("invalid scoring configuration: %w", err)
	}
	handlerOpts := []server.HandlerOption{server.WithEngineOptions(engineOpts...)}
	if cfg.DisableMetrics {
		handlerOpts = append(handlerOpts, server.WithoutMetrics())
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), version, handlerOpts...),
		ReadHeaderTimeout: cfg.HeaderTimeout(),
	}

	logger.Info("starting server",
		zap.String("op", "main.serve"),
		zap.String("address", cfg.Address),
		zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		zap.Bool("metrics", !cfg.DisableMetrics),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

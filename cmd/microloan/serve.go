package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/microloan/internal/config"
	"github.com/iwvelando/microloan/internal/server"
	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(a *app) *cobra.Command {
	var serverConfigPath string
	var address string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loan API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}

			logger := a.logger
			// Server logging settings, when present, replace the application ones.
			if cfg.Logging != (config.LoggingConfig{}) && cfg.Logging != a.conf.Logging {
				if logger, err = initializeLogger(cfg.Logging, a.logLevel); err != nil {
					return fmt.Errorf("failed to initialize server logger: %w", err)
				}
				defer func() { _ = logger.Sync() }()
			}

			srv := &http.Server{
				Addr:              cfg.Address,
				Handler:           server.NewHandler(logger, a.quotes, cfg.BodySizeBytes(), version),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("serving loan API",
					zap.String("op", "main.serve"),
					zap.String("address", cfg.Address),
					zap.Int64("max_body_bytes", cfg.BodySizeBytes()),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
				close(serverErr)
			}()

			select {
			case err := <-serverErr:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down", zap.String("op", "main.serve"))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			return nil
		},
	}
	c.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	c.Flags().StringVar(&address, "address", "", "listen address override")
	return c
}

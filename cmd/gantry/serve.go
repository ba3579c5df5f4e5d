// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

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

	"github.com/spf13/cobra"

	"github.com/tomtom215/gantry/internal/api"
	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/lifecycle"
	"github.com/tomtom215/gantry/internal/logging"
	"github.com/tomtom215/gantry/internal/supervisor"
	"github.com/tomtom215/gantry/internal/supervisor/services"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, coord, err := boot(opts)
			if err != nil {
				return err
			}
			return runServer(cfg, coord)
		},
	}
}

// runServer runs the prediction service under a supervision tree until
// a shutdown signal arrives.
func runServer(cfg *config.Config, coord *lifecycle.Coordinator) error {
	logging.Info().
		Str("model", cfg.Model.Name).
		Str("version", cfg.Model.Version).
		Msg("Starting Gantry prediction service")

	// Resolve the module and artifact up front so a service with no
	// trained artifact fails here instead of on its first request.
	if err := coord.Warm(); err != nil {
		return fmt.Errorf("loading model artifact: %w", err)
	}
	logging.Info().Msg("Model artifact loaded and caches warmed")

	router, err := api.NewRouter(cfg, coord)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.API.Timeout,
		WriteTimeout: cfg.API.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("creating supervisor tree: %w", err)
	}

	tree.AddServingService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// A config file change clears the coordinator caches, so the next
	// request resolves against the latest stored artifact. Changed
	// api.* settings still need a restart.
	tree.AddControlService(services.NewConfigWatchService(cfg.Path, coord.ClearCaches))
	logging.Info().Str("path", cfg.Path).Msg("Config watch service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Prediction service stopped gracefully")
	return nil
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/mediasweep/internal/api"
	"github.com/autobrr/mediasweep/internal/api/handlers"
	"github.com/autobrr/mediasweep/internal/buildinfo"
	"github.com/autobrr/mediasweep/internal/config"
	"github.com/autobrr/mediasweep/internal/database"
	"github.com/autobrr/mediasweep/internal/metrics"
)

func RunServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the orphan scan API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(*configPath)
			if err != nil {
				return err
			}
			config.InitLogging(cfg.Config)

			log.Info().
				Str("version", buildinfo.Version).
				Str("config", cfg.ConfigPath()).
				Str("engine", cfg.Config.DatabaseEngine).
				Msg("Starting mediasweep")

			return serve(cmd.Context(), cfg)
		},
	}
}

// serve runs the API server, and the metrics server when enabled, until ctx
// ends or one of them fails.
func serve(ctx context.Context, cfg *config.AppConfig) error {
	var manager *metrics.Manager
	if cfg.Config.MetricsEnabled {
		manager = metrics.NewManager()
	}

	local, err := openLocalService(cfg, manager.OrphanScan())
	if err != nil {
		return err
	}
	defer local.Close()

	if manager != nil {
		manager.GetRegistry().MustRegister(database.NewMetricsCollector(local.db))
	}

	server := api.NewServer(&api.Dependencies{
		Config:        cfg.Config,
		OrphanService: local.svc,
		ReadinessChecks: []handlers.ReadinessCheck{
			local.db.Ping,
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})

	if manager != nil {
		metricsServer := metrics.NewMetricsServer(manager, cfg.Config.MetricsHost, cfg.Config.MetricsPort, cfg.Config.MetricsBasicAuthUsers)
		g.Go(func() error {
			return metricsServer.ListenAndServe()
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		return err
	}
	log.Info().Msg("Shutdown complete")
	return nil
}

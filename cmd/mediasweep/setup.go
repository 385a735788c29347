// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobrr/mediasweep/internal/config"
	"github.com/autobrr/mediasweep/internal/database"
	"github.com/autobrr/mediasweep/internal/metrics/collector"
	"github.com/autobrr/mediasweep/internal/models"
	"github.com/autobrr/mediasweep/internal/remote"
	"github.com/autobrr/mediasweep/internal/services/orphanscan"
)

// localService is an orphan scan service bound to an open registry.
type localService struct {
	db  *database.DB
	svc *orphanscan.Service
}

func (l *localService) Close() error {
	return l.db.Close()
}

// loadConfig reads the config and points the global logger at the command's
// stderr.
func loadConfig(cmd *cobra.Command, configPath string) (*config.AppConfig, error) {
	cfg, err := config.New(configPath)
	if err != nil {
		return nil, err
	}
	config.InitLoggingTo(cmd.ErrOrStderr(), cfg.Config)
	return cfg, nil
}

func openLocalService(cfg *config.AppConfig, metrics *collector.OrphanScanCollector) (*localService, error) {
	db, err := database.OpenFromConfig(cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	store, err := models.NewAttachmentStore(db, cfg.Config.TablePrefix)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	svc, err := orphanscan.NewService(cfg.OrphanScan(), store, metrics)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &localService{db: db, svc: svc}, nil
}

// remoteFlags select a mediasweep server instead of the local registry.
type remoteFlags struct {
	url    string
	apiKey string
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "remote", "", "Base URL of a mediasweep server, e.g. http://127.0.0.1:7478")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key for --remote (default: $MEDIASWEEP__API_KEY)")
}

func (f *remoteFlags) enabled() bool {
	return f.url != ""
}

func (f *remoteFlags) client() (*remote.Client, error) {
	apiKey := f.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(config.EnvName("apiKey"))
	}
	return remote.NewClient(f.url, remote.WithAPIKey(apiKey))
}

// batchFlags override the configured batch pacing.
type batchFlags struct {
	size       int
	delay      time.Duration
	errorDelay time.Duration
	attempts   uint
}

func (f *batchFlags) register(cmd *cobra.Command) {
	defaults := orphanscan.DefaultConfig()
	cmd.Flags().IntVar(&f.size, "batch-size", defaults.BatchSize, "Paths per batch")
	cmd.Flags().DurationVar(&f.delay, "delay", defaults.BatchDelay, "Pause between batches")
	cmd.Flags().DurationVar(&f.errorDelay, "error-delay", defaults.BatchErrorDelay, "Pause after a failed batch")
	cmd.Flags().UintVar(&f.attempts, "attempts", defaults.BatchAttempts, "Tries per batch before counting it as failed")
}

// apply overlays the flags the user set on base.
func (f *batchFlags) apply(cmd *cobra.Command, base orphanscan.DriverOptions) (orphanscan.DriverOptions, error) {
	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		if f.size <= 0 {
			return base, errors.New("--batch-size must be > 0")
		}
		base.ChunkSize = f.size
	}
	if flags.Changed("delay") {
		base.Delay = f.delay
	}
	if flags.Changed("error-delay") {
		base.ErrorDelay = f.errorDelay
	}
	if flags.Changed("attempts") {
		if f.attempts == 0 {
			return base, errors.New("--attempts must be > 0")
		}
		base.Attempts = f.attempts
	}
	return base, nil
}

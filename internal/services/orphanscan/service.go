// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package orphanscan finds media files under an uploads root that no registry
// record references, and removes selected ones in batches.
package orphanscan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/mediasweep/internal/domain"
	"github.com/autobrr/mediasweep/internal/metrics/collector"
	"github.com/autobrr/mediasweep/pkg/pathcmp"
)

// ErrRegistryUnavailable is returned when the registry cannot be queried at all.
// No partial scan result is produced in that case.
var ErrRegistryUnavailable = errors.New("media registry unavailable")

// RecordSource loads the registered files for one scan.
type RecordSource interface {
	ListRecords(ctx context.Context) ([]domain.RegistryRecord, error)
}

// RecordSourceFunc adapts a function to RecordSource.
type RecordSourceFunc func(ctx context.Context) ([]domain.RegistryRecord, error)

func (f RecordSourceFunc) ListRecords(ctx context.Context) ([]domain.RegistryRecord, error) {
	return f(ctx)
}

// Service binds the scan and delete operations to one root and registry.
type Service struct {
	cfg            Config
	root           string
	configuredRoot string // as given; may be a symlink to root
	source         RecordSource
	metrics        *collector.OrphanScanCollector
}

// NewService creates a new orphan scan service. metrics may be nil.
func NewService(cfg Config, source RecordSource, metrics *collector.OrphanScanCollector) (*Service, error) {
	if source == nil {
		return nil, errors.New("orphanscan: record source is required")
	}
	root, err := pathcmp.CanonicalRoot(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("orphanscan: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.BatchAttempts == 0 {
		cfg.BatchAttempts = defaults.BatchAttempts
	}
	configured := cfg.Root
	cfg.Root = root

	return &Service{
		cfg:            cfg,
		root:           root,
		configuredRoot: configured,
		source:         source,
		metrics:        metrics,
	}, nil
}

// Root returns the canonical root the service scans and deletes under.
func (s *Service) Root() string {
	return s.root
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Scan loads the registry and reconciles it against the files under root.
func (s *Service) Scan(ctx context.Context) (ScanResult, error) {
	start := time.Now()

	records, err := s.source.ListRecords(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
		s.metrics.ObserveScan(time.Since(start), 0, 0, err)
		log.Error().Err(err).Str("root", s.root).Msg("orphanscan: failed to load registry records")
		return ScanResult{}, err
	}

	res, err := scanContext(ctx, s.root, records)
	if err != nil {
		s.metrics.ObserveScan(time.Since(start), 0, 0, err)
		return ScanResult{}, fmt.Errorf("orphanscan: scan %s: %w", s.root, err)
	}

	elapsed := time.Since(start)
	s.metrics.ObserveScan(elapsed, len(res.AllFiles), len(res.OrphanFiles), nil)
	log.Info().
		Str("root", s.root).
		Int("records", len(records)).
		Int("files", len(res.AllFiles)).
		Int("orphans", len(res.OrphanFiles)).
		Dur("duration", elapsed).
		Msg("orphanscan: scan completed")

	return res, nil
}

// DeleteBatch deletes one chunk of paths under the service root, accepting
// paths under either the canonical or the configured root. The only error is a
// canceled context before any path was handled.
func (s *Service) DeleteBatch(ctx context.Context, paths []string) (BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	res := DeleteBatch(paths, s.configuredRoot)
	s.metrics.ObserveBatch(res.Deleted, res.Failed)

	if len(paths) > 0 {
		log.Info().
			Str("root", s.root).
			Int("requested", len(paths)).
			Int("deleted", res.Deleted).
			Int("failed", res.Failed).
			Msg("orphanscan: batch processed")
	}
	return res, nil
}

// DeleteAll drives RunBatches against the service itself with the configured
// pacing.
func (s *Service) DeleteAll(ctx context.Context, paths []string, onProgress func(Progress)) (BatchResult, error) {
	opts := s.cfg.DriverOptions()
	opts.OnProgress = onProgress
	return RunBatches(ctx, s, paths, opts)
}

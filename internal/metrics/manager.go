// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/mediasweep/internal/metrics/collector"
)

type Manager struct {
	registry            *prometheus.Registry
	orphanScanCollector *collector.OrphanScanCollector
}

func NewManager() *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	orphanScanCollector := collector.NewOrphanScanCollector(registry)

	log.Info().Msg("Metrics manager initialized with orphan scan collector")

	return &Manager{
		registry:            registry,
		orphanScanCollector: orphanScanCollector,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// OrphanScan returns the collector passed to the orphan scan service.
func (m *Manager) OrphanScan() *collector.OrphanScanCollector {
	if m == nil {
		return nil
	}
	return m.orphanScanCollector
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector exports registry pool statistics at scrape time.
type MetricsCollector struct {
	db *DB

	openConnectionsDesc *prometheus.Desc
	inUseDesc           *prometheus.Desc
	waitCountDesc       *prometheus.Desc
	waitDurationDesc    *prometheus.Desc
}

func NewMetricsCollector(db *DB) *MetricsCollector {
	labels := prometheus.Labels{"dialect": db.Dialect()}
	return &MetricsCollector{
		db: db,
		openConnectionsDesc: prometheus.NewDesc(
			"mediasweep_registry_db_open_connections",
			"Number of established connections to the registry database",
			nil,
			labels,
		),
		inUseDesc: prometheus.NewDesc(
			"mediasweep_registry_db_in_use_connections",
			"Number of registry connections currently in use",
			nil,
			labels,
		),
		waitCountDesc: prometheus.NewDesc(
			"mediasweep_registry_db_wait_count_total",
			"Total number of times a query waited for a registry connection",
			nil,
			labels,
		),
		waitDurationDesc: prometheus.NewDesc(
			"mediasweep_registry_db_wait_duration_seconds_total",
			"Total time spent waiting for a registry connection",
			nil,
			labels,
		),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openConnectionsDesc
	ch <- c.inUseDesc
	ch <- c.waitCountDesc
	ch <- c.waitDurationDesc
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.db == nil || c.db.conn == nil {
		return
	}
	stats := c.db.Stats()
	ch <- prometheus.MustNewConstMetric(c.openConnectionsDesc, prometheus.GaugeValue, float64(stats.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue, float64(stats.InUse))
	ch <- prometheus.MustNewConstMetric(c.waitCountDesc, prometheus.CounterValue, float64(stats.WaitCount))
	ch <- prometheus.MustNewConstMetric(c.waitDurationDesc, prometheus.CounterValue, stats.WaitDuration.Seconds())
}

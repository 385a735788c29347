// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package collector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ScanResultSuccess = "success"
	ScanResultError   = "error"
)

// OrphanScanCollector holds the scan and deletion metrics. All methods are
// safe to call on a nil receiver so services can run without metrics.
type OrphanScanCollector struct {
	ScansTotal   *prometheus.CounterVec
	ScanDuration prometheus.Histogram
	Files        prometheus.Gauge
	Orphans      prometheus.Gauge
	DeletedTotal prometheus.Counter
	FailedTotal  prometheus.Counter
}

func NewOrphanScanCollector(r *prometheus.Registry) *OrphanScanCollector {
	m := &OrphanScanCollector{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediasweep",
			Subsystem: "orphanscan",
			Name:      "scans_total",
			Help:      "Total number of orphan scans by result",
		}, []string{"result"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mediasweep",
			Subsystem: "orphanscan",
			Name:      "scan_duration_seconds",
			Help:      "Duration of orphan scans",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		Files: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mediasweep",
			Subsystem: "orphanscan",
			Name:      "files",
			Help:      "Number of media files found by the last successful scan",
		}),
		Orphans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mediasweep",
			Subsystem: "orphanscan",
			Name:      "orphans",
			Help:      "Number of orphan files found by the last successful scan",
		}),
		DeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediasweep",
			Subsystem: "orphanscan",
			Name:      "deleted_total",
			Help:      "Total number of files deleted",
		}),
		FailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediasweep",
			Subsystem: "orphanscan",
			Name:      "failed_total",
			Help:      "Total number of files that could not be deleted",
		}),
	}

	r.MustRegister(m.ScansTotal)
	r.MustRegister(m.ScanDuration)
	r.MustRegister(m.Files)
	r.MustRegister(m.Orphans)
	r.MustRegister(m.DeletedTotal)
	r.MustRegister(m.FailedTotal)
	return m
}

// ObserveScan records one scan. The file gauges only move on success.
func (m *OrphanScanCollector) ObserveScan(duration time.Duration, files, orphans int, err error) {
	if m == nil {
		return
	}
	m.ScanDuration.Observe(duration.Seconds())
	if err != nil {
		m.ScansTotal.WithLabelValues(ScanResultError).Inc()
		return
	}
	m.ScansTotal.WithLabelValues(ScanResultSuccess).Inc()
	m.Files.Set(float64(files))
	m.Orphans.Set(float64(orphans))
}

// ObserveBatch records the outcome of one DeleteBatch call.
func (m *OrphanScanCollector) ObserveBatch(deleted, failed int) {
	if m == nil {
		return
	}
	m.DeletedTotal.Add(float64(deleted))
	m.FailedTotal.Add(float64(failed))
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/mediasweep/internal/metrics/collector"
)

func TestNewManager(t *testing.T) {
	manager := NewManager()

	assert.NotNil(t, manager)
	assert.NotNil(t, manager.registry)
	assert.NotNil(t, manager.OrphanScan())
}

func TestManager_GetRegistry(t *testing.T) {
	manager := NewManager()

	registry := manager.GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	foundGoMetrics := false
	foundProcessMetrics := false

	for _, mf := range metricFamilies {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") {
			foundGoMetrics = true
		}
		if strings.HasPrefix(name, "process_") {
			foundProcessMetrics = true
		}
	}

	assert.True(t, foundGoMetrics, "Go runtime metrics should be registered (go_* metrics)")
	if runtime.GOOS == "darwin" {
		assert.False(t, foundProcessMetrics, "Process metrics should NOT be available on macOS")
	} else {
		assert.True(t, foundProcessMetrics, "Process metrics should be registered on Linux/Windows")
	}
}

func TestManager_RegistryIsolation(t *testing.T) {
	manager1 := NewManager()
	manager2 := NewManager()

	assert.NotSame(t, manager1.registry, manager2.registry, "Each manager should have its own registry")
	assert.NotSame(t, manager1.OrphanScan(), manager2.OrphanScan(), "Each manager should have its own collector")
}

func TestManager_NilOrphanScan(t *testing.T) {
	var manager *Manager
	assert.Nil(t, manager.OrphanScan())
}

func TestOrphanScanCollector_ObserveScan(t *testing.T) {
	manager := NewManager()
	c := manager.OrphanScan()

	c.ObserveScan(120*time.Millisecond, 10, 3, nil)
	c.ObserveScan(5*time.Millisecond, 99, 99, errors.New("registry down"))

	assert.Equal(t, float64(1), testutil.ToFloat64(c.ScansTotal.WithLabelValues(collector.ScanResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ScansTotal.WithLabelValues(collector.ScanResultError)))
	assert.Equal(t, float64(10), testutil.ToFloat64(c.Files), "failed scans must not move the gauges")
	assert.Equal(t, float64(3), testutil.ToFloat64(c.Orphans))
}

func TestOrphanScanCollector_ObserveBatch(t *testing.T) {
	manager := NewManager()
	c := manager.OrphanScan()

	c.ObserveBatch(99, 1)
	c.ObserveBatch(50, 0)

	assert.Equal(t, float64(149), testutil.ToFloat64(c.DeletedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.FailedTotal))
}

func TestOrphanScanCollector_NilSafe(t *testing.T) {
	var c *collector.OrphanScanCollector
	assert.NotPanics(t, func() {
		c.ObserveScan(time.Second, 1, 1, nil)
		c.ObserveBatch(1, 1)
	})
}

func TestManager_MetricsCanBeScraped(t *testing.T) {
	manager := NewManager()
	manager.OrphanScan().ObserveBatch(1, 0)

	count, err := testutil.GatherAndCount(manager.GetRegistry(), "mediasweep_orphanscan_deleted_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import "time"

// Batch driver defaults. The chunk size is part of the contract with callers
// that split selections themselves; document any change.
const (
	// DefaultBatchSize is the canonical number of paths per DeleteBatch call.
	DefaultBatchSize = 100

	// DefaultBatchDelay is the pause between two successful chunk calls.
	DefaultBatchDelay = 500 * time.Millisecond

	// DefaultBatchErrorDelay is the pause after a chunk call that failed as a whole.
	DefaultBatchErrorDelay = time.Second

	// SelectionWarnThreshold is the orphan count above which a selection UI
	// should warn that submitting everything at once may be truncated.
	SelectionWarnThreshold = 950
)

// Config holds the service configuration.
type Config struct {
	// Root is the directory tree being reconciled.
	Root string

	// BatchSize is how many paths RunBatches submits per chunk.
	BatchSize int

	// BatchDelay and BatchErrorDelay pace the chunk loop.
	BatchDelay      time.Duration
	BatchErrorDelay time.Duration

	// BatchAttempts is how many times a failed chunk call is tried before its
	// paths are counted as failed.
	BatchAttempts uint
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:       DefaultBatchSize,
		BatchDelay:      DefaultBatchDelay,
		BatchErrorDelay: DefaultBatchErrorDelay,
		BatchAttempts:   1,
	}
}

// DriverOptions converts the batch settings into RunBatches options.
func (c Config) DriverOptions() DriverOptions {
	return DriverOptions{
		ChunkSize:  c.BatchSize,
		Delay:      c.BatchDelay,
		ErrorDelay: c.BatchErrorDelay,
		Attempts:   c.BatchAttempts,
	}
}

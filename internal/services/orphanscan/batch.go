// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"
)

// BatchDeleter deletes one chunk of paths. An error means the whole call
// failed (transport, server) and no per-file result is available.
type BatchDeleter interface {
	DeleteBatch(ctx context.Context, paths []string) (BatchResult, error)
}

// BatchDeleterFunc adapts a function to BatchDeleter.
type BatchDeleterFunc func(ctx context.Context, paths []string) (BatchResult, error)

func (f BatchDeleterFunc) DeleteBatch(ctx context.Context, paths []string) (BatchResult, error) {
	return f(ctx, paths)
}

// DriverOptions controls RunBatches. The zero value submits chunks of
// DefaultBatchSize back to back with a single attempt each.
type DriverOptions struct {
	ChunkSize  int
	Delay      time.Duration
	ErrorDelay time.Duration
	Attempts   uint

	// OnProgress is called after every chunk, including failed ones.
	OnProgress func(Progress)
}

// DefaultDriverOptions returns the pacing used by interactive clients.
func DefaultDriverOptions() DriverOptions {
	return DefaultConfig().DriverOptions()
}

// Progress describes the batch loop after a chunk completed.
type Progress struct {
	Batch     int   `json:"batch"`
	Batches   int   `json:"batches"`
	Processed int   `json:"processed"`
	Total     int   `json:"total"`
	Deleted   int   `json:"deleted"`
	Failed    int   `json:"failed"`
	Err       error `json:"-"`
}

// Remaining returns how many paths have not been submitted yet.
func (p Progress) Remaining() int {
	return p.Total - p.Processed
}

// Percent returns completion in the range 0..100.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Processed * 100 / p.Total
}

// Chunk splits paths into consecutive slices of at most size elements.
// The returned slices share the backing array of paths.
func Chunk(paths []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	chunks := make([][]string, 0, (len(paths)+size-1)/size)
	for start := 0; start < len(paths); start += size {
		end := min(start+size, len(paths))
		chunks = append(chunks, paths[start:end:end])
	}
	return chunks
}

// RunBatches submits paths to deleter one chunk at a time, in order, and
// accumulates the results. A chunk whose call fails after all attempts counts
// every one of its paths as failed and the loop moves on. Cancellation stops
// the loop between chunks; completed chunks are not rolled back.
func RunBatches(ctx context.Context, deleter BatchDeleter, paths []string, opts DriverOptions) (BatchResult, error) {
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}

	chunks := Chunk(paths, opts.ChunkSize)
	var totals BatchResult
	processed := 0

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return totals, err
		}

		res, err := deleteChunk(ctx, deleter, chunk, opts)
		if err != nil {
			if ctx.Err() != nil {
				return totals, ctx.Err()
			}
			log.Warn().Err(err).Int("batch", i+1).Int("paths", len(chunk)).Msg("orphanscan: batch call failed, counting chunk as failed")
			res = BatchResult{Failed: len(chunk)}
		}

		totals.Add(res)
		processed += len(chunk)

		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				Batch:     i + 1,
				Batches:   len(chunks),
				Processed: processed,
				Total:     len(paths),
				Deleted:   totals.Deleted,
				Failed:    totals.Failed,
				Err:       err,
			})
		}

		if i == len(chunks)-1 {
			break
		}
		wait := opts.Delay
		if err != nil {
			wait = opts.ErrorDelay
		}
		if err := sleepContext(ctx, wait); err != nil {
			return totals, err
		}
	}

	return totals, nil
}

func deleteChunk(ctx context.Context, deleter BatchDeleter, chunk []string, opts DriverOptions) (BatchResult, error) {
	var res BatchResult
	err := retry.Do(
		func() error {
			var err error
			res, err = deleter.DeleteBatch(ctx, chunk)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.ErrorDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("attempt", n+1).Msg("orphanscan: batch call attempt failed")
		}),
	)
	if err != nil {
		return BatchResult{}, err
	}
	return res, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import (
	"context"

	"github.com/autobrr/mediasweep/internal/domain"
	"github.com/autobrr/mediasweep/pkg/pathcmp"
)

// ScanResult is the outcome of one reconciliation pass. OrphanFiles is a
// subsequence of AllFiles in walk order.
type ScanResult struct {
	AllFiles    []string `json:"all_files"`
	OrphanFiles []string `json:"orphan_files"`
}

// Scan walks root and returns every supported file plus the ones no record
// references.
func Scan(root string, records []domain.RegistryRecord) ScanResult {
	res, _ := scanContext(context.Background(), root, records)
	return res
}

func scanContext(ctx context.Context, root string, records []domain.RegistryRecord) (ScanResult, error) {
	all, err := WalkContext(ctx, root)
	if err != nil {
		return ScanResult{}, err
	}

	// Match against the same canonical root the walker used to build paths.
	canonical, cerr := pathcmp.CanonicalRoot(root)
	if cerr != nil {
		canonical = root
	}

	idx := BuildIndex(records)
	orphans := make([]string, 0)
	for _, p := range all {
		if !IsKnown(p, canonical, idx) {
			orphans = append(orphans, p)
		}
	}

	return ScanResult{AllFiles: all, OrphanFiles: orphans}, nil
}

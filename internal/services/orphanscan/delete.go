// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/mediasweep/pkg/pathcmp"
)

// BatchResult reports the outcome of one DeleteBatch call.
// Deleted+Failed always equals the number of submitted paths.
type BatchResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Add accumulates another chunk result.
func (r *BatchResult) Add(other BatchResult) {
	r.Deleted += other.Deleted
	r.Failed += other.Failed
}

type deleteDisposition int

const (
	dispositionDeleted deleteDisposition = iota
	dispositionOutsideRoot
	dispositionMissing
	dispositionNotRegular
	dispositionReadOnly
	dispositionRemoveFailed
)

func (d deleteDisposition) String() string {
	switch d {
	case dispositionDeleted:
		return "deleted"
	case dispositionOutsideRoot:
		return "outside_root"
	case dispositionMissing:
		return "missing"
	case dispositionNotRegular:
		return "not_regular"
	case dispositionReadOnly:
		return "read_only"
	default:
		return "remove_failed"
	}
}

// DeleteBatch removes each path that is a regular file strictly under root.
// Every path is handled independently; a failure never aborts the batch.
func DeleteBatch(paths []string, root string) BatchResult {
	var res BatchResult
	if len(paths) == 0 {
		return res
	}

	roots, err := deleteRoots(root)
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("orphanscan: invalid delete root")
		res.Failed = len(paths)
		return res
	}

	for _, p := range paths {
		disposition, err := safeDeleteFile(roots, p)
		if disposition == dispositionDeleted {
			res.Deleted++
			continue
		}
		res.Failed++
		log.Debug().Err(err).Str("path", p).Str("disposition", disposition.String()).Msg("orphanscan: file not deleted")
	}
	return res
}

// deleteRoots returns the canonical root and, when it differs, the absolute
// root as given. Scan results are built on the canonical form while callers
// may submit paths under a symlinked root.
func deleteRoots(root string) ([]string, error) {
	canonical, err := pathcmp.CanonicalRoot(root)
	if err != nil {
		return nil, err
	}
	roots := []string{canonical}
	if abs, err := filepath.Abs(root); err == nil && filepath.Clean(abs) != canonical {
		roots = append(roots, filepath.Clean(abs))
	}
	return roots, nil
}

func underAnyRoot(p string, roots []string) bool {
	for _, r := range roots {
		if pathcmp.IsUnderRoot(p, r) {
			return true
		}
	}
	return false
}

// safeDeleteFile removes a single file after containment and type checks.
// Never removes directories or symlinks.
func safeDeleteFile(roots []string, target string) (deleteDisposition, error) {
	normalized := pathcmp.NormalizeSeparators(target)

	// Lexical containment first; nothing outside root is ever touched.
	if !underAnyRoot(normalized, roots) {
		return dispositionOutsideRoot, nil
	}

	native := filepath.FromSlash(normalized)

	// A symlinked directory inside root must not redirect the delete elsewhere.
	parent, err := filepath.EvalSymlinks(filepath.Dir(native))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dispositionMissing, err
		}
		return dispositionRemoveFailed, err
	}
	if parent != roots[0] && !pathcmp.IsUnderRoot(parent, roots[0]) {
		return dispositionOutsideRoot, nil
	}

	info, err := os.Lstat(native)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dispositionMissing, err
		}
		return dispositionRemoveFailed, err
	}
	if !info.Mode().IsRegular() {
		return dispositionNotRegular, nil
	}

	if err := os.Remove(native); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return dispositionMissing, err
		case isReadOnlyFSError(err):
			return dispositionReadOnly, err
		default:
			return dispositionRemoveFailed, err
		}
	}
	return dispositionDeleted, nil
}

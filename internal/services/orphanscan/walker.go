// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/mediasweep/pkg/pathcmp"
)

// Walk returns the absolute paths of all supported media files under root in
// pre-order. A missing or unreadable root yields an empty result.
func Walk(root string) []string {
	files, _ := WalkContext(context.Background(), root)
	return files
}

// WalkContext is Walk with cancellation. The only error it returns is the
// context error; filesystem errors never abort the walk.
func WalkContext(ctx context.Context, root string) ([]string, error) {
	canonical, err := pathcmp.CanonicalRoot(root)
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("orphanscan: invalid scan root")
		return []string{}, nil
	}

	files := make([]string, 0, 64)
	err = filepath.WalkDir(canonical, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Unreadable subtree or vanished entry, keep going with the rest.
			log.Debug().Err(err).Str("path", path).Msg("orphanscan: skipping unreadable path")
			return nil
		}

		// Don't follow symlinks
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if path == canonical {
			return nil
		}

		if IsSupported(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return files, err
	}
	return files, nil
}

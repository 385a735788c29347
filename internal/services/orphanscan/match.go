// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import "github.com/autobrr/mediasweep/pkg/pathcmp"

// IsKnown reports whether the file at absPath is referenced by the registry,
// either by its root-relative path or by its bare filename.
//
// The bare filename match means an unrelated file that shares a name with a
// registered derivative elsewhere in the tree is never reported as an orphan.
func IsKnown(absPath, root string, idx *Index) bool {
	rel := pathcmp.RelativeTo(absPath, root)
	if idx.Has(rel) {
		return true
	}
	return idx.Has(pathcmp.Base(absPath))
}

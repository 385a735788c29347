// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !windows

package orphanscan

import (
	"errors"
	"syscall"
)

// isReadOnlyFSError reports whether err comes from a read-only mount, which
// is logged separately from ordinary permission failures.
func isReadOnlyFSError(err error) bool {
	return errors.Is(err, syscall.EROFS)
}

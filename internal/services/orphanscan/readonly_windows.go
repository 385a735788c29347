// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build windows

package orphanscan

import (
	"errors"
	"syscall"
)

// ERROR_WRITE_PROTECT
const errorWriteProtect syscall.Errno = 19

func isReadOnlyFSError(err error) bool {
	return errors.Is(err, errorWriteProtect)
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httphelpers

import "strings"

// NormalizeBasePath returns p with exactly one leading slash and no trailing
// slash. The root path and blank input normalize to "".
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// JoinBasePath appends suffix to a normalized base path.
func JoinBasePath(basePath, suffix string) string {
	suffix = strings.TrimLeft(suffix, "/")
	if suffix == "" {
		if basePath == "" {
			return "/"
		}
		return basePath
	}
	return basePath + "/" + suffix
}

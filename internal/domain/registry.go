// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// RegistryRecord is what the authoritative store knows about one file: its
// path relative to the upload root and the filenames of any derivatives
// (resized copies, the pre-scaling original) stored next to it.
type RegistryRecord struct {
	// ID identifies the record in its source store; informational only.
	ID int64 `json:"id"`
	// Path is relative to the registry root and forward-slashed, e.g. 2024/01/photo.jpg.
	Path string `json:"path"`
	// Variants are bare filenames living in the same directory as Path.
	Variants []string `json:"variants,omitempty"`
}

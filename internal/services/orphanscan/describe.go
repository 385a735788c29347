// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import "os"

// FileDetail describes one scanned file for listings.
type FileDetail struct {
	Path     string   `json:"path"`
	Size     int64    `json:"size"`
	Category Category `json:"category"`
}

// Listing summarizes a set of files by size and category.
type Listing struct {
	Files      []FileDetail     `json:"files"`
	TotalBytes int64            `json:"total_bytes"`
	ByCategory map[Category]int `json:"by_category"`
}

// Describe stats every path. A file that disappeared since it was listed is
// kept with size -1 and excluded from TotalBytes.
func Describe(paths []string) Listing {
	l := Listing{
		Files:      make([]FileDetail, 0, len(paths)),
		ByCategory: make(map[Category]int, len(Categories)),
	}

	for _, p := range paths {
		d := FileDetail{Path: p, Size: -1}
		if cat, ok := CategoryOf(p); ok {
			d.Category = cat
			l.ByCategory[cat]++
		}
		if info, err := os.Lstat(p); err == nil && info.Mode().IsRegular() {
			d.Size = info.Size()
			l.TotalBytes += d.Size
		}
		l.Files = append(l.Files, d)
	}
	return l
}

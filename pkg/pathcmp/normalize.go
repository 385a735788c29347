// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pathcmp provides shared path normalization helpers used for
// comparing on-disk paths against registry identities. Registry paths are
// forward-slashed regardless of platform, so comparisons use path semantics
// (not filepath) on slash-canonical strings.
package pathcmp

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ToSlash converts every backslash in p to a forward slash. Unlike
// filepath.ToSlash it does so on every platform, since registry rows written on
// Windows hosts can carry backslashes into a Unix deployment.
func ToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// CollapseSeparators replaces runs of forward slashes with a single slash.
func CollapseSeparators(p string) string {
	if !strings.Contains(p, "//") {
		return p
	}

	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// NormalizeSeparators converts backslashes and collapses repeated separators.
// No other lexical processing happens: "." and ".." segments are preserved so
// callers can still reject them.
func NormalizeSeparators(p string) string {
	return CollapseSeparators(ToSlash(p))
}

// IsWindowsDriveAbs returns true if p is a Windows absolute path (e.g., C:/...).
// It requires a drive letter, colon, and forward slash. Backslashes should be
// normalized before calling.
func IsWindowsDriveAbs(p string) bool {
	if len(p) < 3 {
		return false
	}
	c := p[0]
	return ((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) && p[1] == ':' && p[2] == '/'
}

// Key returns the identity key used for set membership: slash-canonical and
// Unicode NFC so that a decomposed on-disk name (as written by macOS clients)
// matches the composed form stored in the registry. Invalid UTF-8 is returned
// unchanged; on Unix filenames are arbitrary bytes.
func Key(p string) string {
	p = ToSlash(p)
	if !utf8.ValidString(p) {
		return p
	}
	return norm.NFC.String(p)
}

// Base returns the last element of a slash or backslash separated path.
func Base(p string) string {
	p = strings.TrimRight(ToSlash(p), "/")
	if p == "" {
		return ""
	}
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Dir returns the directory part of a relative registry path, or "" when the
// path sits at the registry root.
func Dir(p string) string {
	p = ToSlash(p)
	i := strings.LastIndexByte(p, '/')
	if i <= 0 {
		return ""
	}
	return p[:i]
}

// JoinRel joins a registry directory and a filename with a forward slash.
// An empty dir yields the bare name.
func JoinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

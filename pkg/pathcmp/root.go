// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pathcmp

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CanonicalRoot returns root as an absolute, cleaned path with symlinks
// resolved when the directory exists. Scanning and deletion must agree on the
// same root, so both derive it through this function.
func CanonicalRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", fmt.Errorf("root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return filepath.Clean(resolved), nil
	}
	return filepath.Clean(abs), nil
}

// RootPrefix returns the slash-canonical form of root with exactly one
// trailing slash, suitable for string-prefix containment checks.
func RootPrefix(root string) string {
	r := strings.TrimRight(NormalizeSeparators(root), "/")
	return r + "/"
}

// RelativeTo strips root from absPath and trims leading slashes. Only paths
// strictly under root are stripped; others are returned slash-canonical with
// leading slashes trimmed. absPath equal to root yields "".
func RelativeTo(absPath, root string) string {
	p := NormalizeSeparators(absPath)
	prefix := RootPrefix(root)
	switch {
	case p+"/" == prefix:
		return ""
	case prefix != "/" && strings.HasPrefix(p, prefix):
		p = p[len(prefix):]
	}
	return strings.TrimLeft(p, "/")
}

// HasParentSegment reports whether any slash or backslash separated segment of
// p is "..".
func HasParentSegment(p string) bool {
	for _, seg := range strings.Split(ToSlash(p), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// IsUnderRoot reports whether p lies strictly below root using a lexical check
// on separator-normalized strings. Paths equal to root, paths with ".." segments
// and paths that merely share a name prefix (/data/foobar vs /data/foo) are
// rejected.
func IsUnderRoot(p, root string) bool {
	np := NormalizeSeparators(p)
	if HasParentSegment(np) {
		return false
	}
	prefix := RootPrefix(root)
	return strings.HasPrefix(np, prefix) && len(np) > len(prefix)
}

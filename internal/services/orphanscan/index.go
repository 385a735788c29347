// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import (
	"github.com/autobrr/mediasweep/internal/domain"
	"github.com/autobrr/mediasweep/pkg/pathcmp"
)

// Index is the set of identities registered in the media registry. An identity
// is either a root-relative path or a bare filename; both share one set.
// An Index is immutable once BuildIndex returns and safe for concurrent reads.
type Index struct {
	identities map[string]struct{}
}

// BuildIndex indexes every record's primary path, its filename, and for each
// variant both the variant path next to the primary and the bare variant name.
func BuildIndex(records []domain.RegistryRecord) *Index {
	idx := &Index{identities: make(map[string]struct{}, len(records)*4)}
	for _, rec := range records {
		idx.addRecord(rec)
	}
	return idx
}

func (idx *Index) addRecord(rec domain.RegistryRecord) {
	primary := pathcmp.ToSlash(rec.Path)
	idx.add(primary)
	idx.add(pathcmp.Base(primary))

	dir := pathcmp.Dir(primary)
	for _, variant := range rec.Variants {
		if variant == "" {
			continue
		}
		idx.add(pathcmp.JoinRel(dir, variant))
		idx.add(variant)
	}
}

func (idx *Index) add(identity string) {
	if identity == "" {
		return
	}
	idx.identities[pathcmp.Key(identity)] = struct{}{}
}

// Has reports whether identity is registered.
func (idx *Index) Has(identity string) bool {
	if idx == nil || identity == "" {
		return false
	}
	_, ok := idx.identities[pathcmp.Key(identity)]
	return ok
}

// Len returns the number of distinct identities.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.identities)
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/elliotchance/phpserialize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/mediasweep/internal/dbinterface"
	"github.com/autobrr/mediasweep/internal/domain"
	"github.com/autobrr/mediasweep/pkg/pathcmp"
)

const (
	MetaKeyAttachedFile       = "_wp_attached_file"
	MetaKeyAttachmentMetadata = "_wp_attachment_metadata"

	DefaultTablePrefix = "wp_"
)

var (
	ErrInvalidTablePrefix   = errors.New("invalid table prefix")
	ErrRegistryTableMissing = errors.New("registry table not found")

	tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)
)

// AttachmentStore reads media registrations from a CMS postmeta table.
type AttachmentStore struct {
	db    dbinterface.Querier
	table string
}

func NewAttachmentStore(db dbinterface.Querier, tablePrefix string) (*AttachmentStore, error) {
	if !tablePrefixPattern.MatchString(tablePrefix) {
		return nil, errors.Wrapf(ErrInvalidTablePrefix, "%q", tablePrefix)
	}
	return &AttachmentStore{db: db, table: tablePrefix + "postmeta"}, nil
}

// Table returns the fully qualified postmeta table name.
func (s *AttachmentStore) Table() string {
	return s.table
}

// attachmentRow collects the meta values of one attachment post. A post may
// carry more than one attached-file row; each one is registered.
type attachmentRow struct {
	postID        int64
	attachedFiles []string
	metadata      string
	hasMetadata   bool
}

// ListRecords loads every attachment registration. A query failure is
// returned as is; malformed metadata only drops that record's variants.
func (s *AttachmentStore) ListRecords(ctx context.Context) ([]domain.RegistryRecord, error) {
	// The table name is validated in NewAttachmentStore.
	query := fmt.Sprintf(`SELECT post_id, meta_key, meta_value FROM %s WHERE meta_key IN (?, ?) ORDER BY post_id, meta_id`, s.table)

	rows, err := s.db.QueryContext(ctx, query, MetaKeyAttachedFile, MetaKeyAttachmentMetadata)
	if err != nil {
		if isMissingTableError(err) {
			return nil, errors.Wrapf(ErrRegistryTableMissing, "%s: %v", s.table, err)
		}
		return nil, errors.Wrap(err, "query attachment meta")
	}
	defer rows.Close()

	var (
		order []int64
		byID  = make(map[int64]*attachmentRow)
	)
	for rows.Next() {
		var (
			postID int64
			key    string
			value  *string
		)
		if err := rows.Scan(&postID, &key, &value); err != nil {
			return nil, errors.Wrap(err, "scan attachment meta")
		}

		row, ok := byID[postID]
		if !ok {
			row = &attachmentRow{postID: postID}
			byID[postID] = row
			order = append(order, postID)
		}
		if value == nil {
			continue
		}
		switch key {
		case MetaKeyAttachedFile:
			if file := strings.TrimSpace(*value); file != "" && !slices.Contains(row.attachedFiles, file) {
				row.attachedFiles = append(row.attachedFiles, file)
			}
		case MetaKeyAttachmentMetadata:
			row.metadata = *value
			row.hasMetadata = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate attachment meta")
	}

	records := make([]domain.RegistryRecord, 0, len(order))
	for _, id := range order {
		records = append(records, buildRecords(byID[id])...)
	}

	log.Debug().Str("table", s.table).Int("attachments", len(order)).Int("records", len(records)).Msg("Loaded registry records")
	return records, nil
}

// buildRecords turns one attachment post into registry records, one per
// attached file. Variants are anchored to the metadata file's directory; when
// that file is not among the attached files it is registered as well.
func buildRecords(row *attachmentRow) []domain.RegistryRecord {
	var meta AttachmentMetadata
	if row.hasMetadata {
		parsed, err := ParseAttachmentMetadata(row.metadata)
		if err != nil {
			log.Debug().Err(err).Int64("post_id", row.postID).Msg("Skipping malformed attachment metadata")
		} else {
			meta = parsed
		}
	}

	files := row.attachedFiles
	if len(files) == 0 && meta.File != "" {
		files = []string{meta.File}
	}
	anchor := meta.File
	if anchor == "" && len(files) > 0 {
		anchor = files[0]
	}
	variants := meta.Variants()

	records := make([]domain.RegistryRecord, 0, len(files)+1)
	anchored := false
	for _, file := range files {
		rec := domain.RegistryRecord{ID: row.postID, Path: file}
		if !anchored && file == anchor {
			rec.Variants = variants
			anchored = true
		}
		records = append(records, rec)
	}
	if !anchored && (anchor != "" || len(variants) > 0) {
		records = append(records, domain.RegistryRecord{ID: row.postID, Path: anchor, Variants: variants})
	}
	return records
}

// AttachmentMetadata is the subset of attachment metadata that names files.
type AttachmentMetadata struct {
	File          string
	Sizes         map[string]string
	OriginalImage string
}

// Variants returns the size file names in size-name order followed by the
// original image, without duplicates.
func (m AttachmentMetadata) Variants() []string {
	names := make([]string, 0, len(m.Sizes))
	for name := range m.Sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]struct{}, len(names)+1)
	out := make([]string, 0, len(names)+1)
	add := func(file string) {
		if file == "" {
			return
		}
		if _, ok := seen[file]; ok {
			return
		}
		seen[file] = struct{}{}
		out = append(out, file)
	}
	for _, name := range names {
		add(m.Sizes[name])
	}
	add(m.OriginalImage)

	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseAttachmentMetadata decodes a PHP-serialized metadata array, falling
// back to JSON for registries that store metadata as JSON. Anything that is
// not an array is an error.
func ParseAttachmentMetadata(raw string) (AttachmentMetadata, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AttachmentMetadata{}, errors.New("empty metadata")
	}

	var fields map[string]any
	if arr, err := phpserialize.UnmarshalAssociativeArray([]byte(raw)); err == nil {
		fields = stringKeys(arr)
	} else {
		var decoded any
		if jerr := json.Unmarshal([]byte(raw), &decoded); jerr != nil {
			return AttachmentMetadata{}, errors.Wrap(err, "decode metadata")
		}
		m, ok := asMap(decoded)
		if !ok {
			return AttachmentMetadata{}, errors.New("metadata is not an array")
		}
		fields = m
	}

	meta := AttachmentMetadata{
		File:          pathcmp.ToSlash(stringField(fields, "file")),
		OriginalImage: stringField(fields, "original_image"),
	}

	if sizes, ok := asMap(fields["sizes"]); ok {
		meta.Sizes = make(map[string]string, len(sizes))
		for name, entry := range sizes {
			size, ok := asMap(entry)
			if !ok {
				continue
			}
			if file := stringField(size, "file"); file != "" {
				meta.Sizes[name] = file
			}
		}
	}

	return meta, nil
}

func stringField(m map[string]any, key string) string {
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// asMap accepts PHP arrays, JSON objects and JSON lists (keyed by index).
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[any]any:
		return stringKeys(t), true
	case map[string]any:
		return t, true
	case []any:
		m := make(map[string]any, len(t))
		for i, item := range t {
			m[fmt.Sprintf("%d", i)] = item
		}
		return m, true
	default:
		return nil, false
	}
}

func stringKeys(in map[any]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[fmt.Sprint(k)] = v
	}
	return out
}

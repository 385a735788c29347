// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/autobrr/mediasweep/internal/domain"
)

// phpString and phpArray build PHP-serialized values the way the CMS stores them.
func phpString(s string) string {
	return fmt.Sprintf("s:%d:\"%s\";", len(s), s)
}

func phpArray(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "a:%d:{", len(pairs))
	for _, k := range keys {
		b.WriteString(phpString(k))
		b.WriteString(pairs[k])
	}
	b.WriteString("}")
	return b.String()
}

func setupPostmeta(t *testing.T, prefix string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE %spostmeta (
			meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL,
			meta_key TEXT,
			meta_value TEXT
		)`, prefix))
	require.NoError(t, err)
	return db
}

func insertMeta(t *testing.T, db *sql.DB, table string, postID int64, key string, value any) {
	t.Helper()
	_, err := db.Exec(fmt.Sprintf(`INSERT INTO %s (post_id, meta_key, meta_value) VALUES (?, ?, ?)`, table), postID, key, value)
	require.NoError(t, err)
}

func TestNewAttachmentStoreValidatesPrefix(t *testing.T) {
	store, err := NewAttachmentStore(nil, DefaultTablePrefix)
	require.NoError(t, err)
	assert.Equal(t, "wp_postmeta", store.Table())

	store, err = NewAttachmentStore(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "postmeta", store.Table())

	for _, prefix := range []string{"wp-", "wp_; DROP TABLE x;", "wp.", "w p"} {
		_, err := NewAttachmentStore(nil, prefix)
		assert.True(t, errors.Is(err, ErrInvalidTablePrefix), "prefix %q", prefix)
	}
}

func TestListRecordsPHPSerializedSizes(t *testing.T) {
	db := setupPostmeta(t, "wp_")

	metadata := phpArray(map[string]string{
		"file":   phpString("2024/01/photo.jpg"),
		"width":  "i:1200;",
		"height": "i:800;",
		"sizes": phpArray(map[string]string{
			"thumbnail": phpArray(map[string]string{"file": phpString("photo-150x150.jpg"), "width": "i:150;"}),
			"medium":    phpArray(map[string]string{"file": phpString("photo-300x200.jpg"), "width": "i:300;"}),
		}),
	})

	insertMeta(t, db, "wp_postmeta", 7, MetaKeyAttachedFile, "2024/01/photo.jpg")
	insertMeta(t, db, "wp_postmeta", 7, MetaKeyAttachmentMetadata, metadata)
	insertMeta(t, db, "wp_postmeta", 7, "_edit_lock", "1700000000:1")

	store, err := NewAttachmentStore(db, "wp_")
	require.NoError(t, err)

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, domain.RegistryRecord{
		ID:       7,
		Path:     "2024/01/photo.jpg",
		Variants: []string{"photo-300x200.jpg", "photo-150x150.jpg"},
	}, records[0])
}

func TestListRecordsOrderAndEdgeRows(t *testing.T) {
	db := setupPostmeta(t, "site2_")
	table := "site2_postmeta"

	// Metadata row inserted before the attached-file row for the same post.
	insertMeta(t, db, table, 3, MetaKeyAttachmentMetadata, `{"file":"2023/05/scan.pdf","sizes":[]}`)
	insertMeta(t, db, table, 3, MetaKeyAttachedFile, "2023/05/scan.pdf")
	insertMeta(t, db, table, 1, MetaKeyAttachedFile, " 2022/12/song.mp3 ")
	insertMeta(t, db, table, 1, MetaKeyAttachmentMetadata, "not serialized at all")
	insertMeta(t, db, table, 2, MetaKeyAttachedFile, nil)
	insertMeta(t, db, table, 9, "_thumbnail_id", "3")

	store, err := NewAttachmentStore(db, "site2_")
	require.NoError(t, err)

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.RegistryRecord{
		{ID: 1, Path: "2022/12/song.mp3"},
		{ID: 3, Path: "2023/05/scan.pdf"},
	}, records)
}

func TestListRecordsMetadataFileDiffersFromAttachedFile(t *testing.T) {
	db := setupPostmeta(t, "wp_")

	metadata := phpArray(map[string]string{
		"file":           phpString("2024/02/big-scaled.jpg"),
		"original_image": phpString("big.jpg"),
		"sizes": phpArray(map[string]string{
			"large": phpArray(map[string]string{"file": phpString("big-1024x768.jpg")}),
		}),
	})
	insertMeta(t, db, "wp_postmeta", 11, MetaKeyAttachedFile, "2024/02/big.jpg")
	insertMeta(t, db, "wp_postmeta", 11, MetaKeyAttachmentMetadata, metadata)

	store, err := NewAttachmentStore(db, "wp_")
	require.NoError(t, err)

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.RegistryRecord{
		{ID: 11, Path: "2024/02/big.jpg"},
		{ID: 11, Path: "2024/02/big-scaled.jpg", Variants: []string{"big-1024x768.jpg", "big.jpg"}},
	}, records)
}

func TestListRecordsEveryAttachedFileRow(t *testing.T) {
	db := setupPostmeta(t, "wp_")

	insertMeta(t, db, "wp_postmeta", 5, MetaKeyAttachedFile, "2024/03/old.png")
	insertMeta(t, db, "wp_postmeta", 5, MetaKeyAttachedFile, "2024/03/new.png")
	insertMeta(t, db, "wp_postmeta", 5, MetaKeyAttachedFile, "2024/03/old.png")
	insertMeta(t, db, "wp_postmeta", 5, MetaKeyAttachmentMetadata, phpArray(map[string]string{
		"file": phpString("2024/03/new.png"),
		"sizes": phpArray(map[string]string{
			"thumbnail": phpArray(map[string]string{"file": phpString("new-150x150.png")}),
		}),
	}))

	store, err := NewAttachmentStore(db, "wp_")
	require.NoError(t, err)

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.RegistryRecord{
		{ID: 5, Path: "2024/03/old.png"},
		{ID: 5, Path: "2024/03/new.png", Variants: []string{"new-150x150.png"}},
	}, records)
}

func TestListRecordsMetadataOnly(t *testing.T) {
	db := setupPostmeta(t, "wp_")
	insertMeta(t, db, "wp_postmeta", 4, MetaKeyAttachmentMetadata, phpArray(map[string]string{
		"file": phpString("2021/07/clip.mp4"),
	}))

	store, err := NewAttachmentStore(db, "wp_")
	require.NoError(t, err)

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.RegistryRecord{{ID: 4, Path: "2021/07/clip.mp4"}}, records)
}

func TestListRecordsMissingTable(t *testing.T) {
	db := setupPostmeta(t, "wp_")

	store, err := NewAttachmentStore(db, "other_")
	require.NoError(t, err)

	_, err = store.ListRecords(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistryTableMissing))
	assert.Contains(t, err.Error(), "other_postmeta")
}

func TestListRecordsEmptyTable(t *testing.T) {
	db := setupPostmeta(t, "wp_")

	store, err := NewAttachmentStore(db, "wp_")
	require.NoError(t, err)

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseAttachmentMetadata(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    AttachmentMetadata
		wantErr bool
	}{
		{
			name: "php array",
			raw: phpArray(map[string]string{
				"file":  phpString("2024/01/a.png"),
				"sizes": phpArray(map[string]string{"thumb": phpArray(map[string]string{"file": phpString("a-50x50.png")})}),
			}),
			want: AttachmentMetadata{File: "2024/01/a.png", Sizes: map[string]string{"thumb": "a-50x50.png"}},
		},
		{
			name: "json object",
			raw:  `{"file":"2024\\01\\b.png","original_image":"b-orig.png","sizes":{"small":{"file":"b-10x10.png"},"broken":"x"}}`,
			want: AttachmentMetadata{File: "2024/01/b.png", OriginalImage: "b-orig.png", Sizes: map[string]string{"small": "b-10x10.png"}},
		},
		{
			name: "php array without sizes",
			raw:  phpArray(map[string]string{"width": "i:10;"}),
			want: AttachmentMetadata{},
		},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "garbage", raw: "a:1:{", wantErr: true},
		{name: "json scalar", raw: `"just a string"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAttachmentMetadata(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttachmentMetadataVariants(t *testing.T) {
	meta := AttachmentMetadata{
		Sizes: map[string]string{
			"thumbnail":    "p-150x150.jpg",
			"large":        "p-1024x768.jpg",
			"medium_large": "p-1024x768.jpg",
		},
		OriginalImage: "p.jpg",
	}
	assert.Equal(t, []string{"p-1024x768.jpg", "p-150x150.jpg", "p.jpg"}, meta.Variants())
	assert.Nil(t, AttachmentMetadata{}.Variants())
}

func TestIsMissingTableError(t *testing.T) {
	assert.False(t, isMissingTableError(nil))
	assert.False(t, isMissingTableError(errors.New("no such table: wp_postmeta")))
}

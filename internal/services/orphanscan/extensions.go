// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import (
	"path/filepath"
	"slices"
	"strings"
)

// ExtensionsVersion identifies the revision of the supported extension list.
// Clients that filter on their side should compare against it.
const ExtensionsVersion = 1

// Category groups supported extensions for reporting.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryAudio    Category = "audio"
	CategoryVideo    Category = "video"
	CategoryArchive  Category = "archive"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryImage, CategoryDocument, CategoryAudio, CategoryVideo, CategoryArchive}

var extensionCategories = map[string]Category{
	"jpg": CategoryImage, "jpeg": CategoryImage, "png": CategoryImage, "gif": CategoryImage,
	"webp": CategoryImage, "bmp": CategoryImage, "tiff": CategoryImage, "tif": CategoryImage,
	"svg": CategoryImage, "ico": CategoryImage,

	"pdf": CategoryDocument, "doc": CategoryDocument, "docx": CategoryDocument, "xls": CategoryDocument,
	"xlsx": CategoryDocument, "ppt": CategoryDocument, "pptx": CategoryDocument, "odt": CategoryDocument,
	"ods": CategoryDocument, "odp": CategoryDocument, "txt": CategoryDocument, "rtf": CategoryDocument,
	"csv": CategoryDocument,

	"mp3": CategoryAudio, "wav": CategoryAudio, "ogg": CategoryAudio, "flac": CategoryAudio,
	"aac": CategoryAudio, "m4a": CategoryAudio, "wma": CategoryAudio,

	"mp4": CategoryVideo, "mov": CategoryVideo, "avi": CategoryVideo, "wmv": CategoryVideo,
	"mkv": CategoryVideo, "webm": CategoryVideo, "flv": CategoryVideo, "m4v": CategoryVideo,
	"mpeg": CategoryVideo, "mpg": CategoryVideo,

	"zip": CategoryArchive, "rar": CategoryArchive, "7z": CategoryArchive, "tar": CategoryArchive,
	"gz": CategoryArchive,
}

// extensionOf returns the lowercase extension of name without the dot.
func extensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// IsSupported reports whether the file name has a supported media extension.
func IsSupported(name string) bool {
	_, ok := extensionCategories[extensionOf(name)]
	return ok
}

// ExtensionCategory returns the category of an extension (with or without the
// leading dot, any case) and false when it is not supported.
func ExtensionCategory(ext string) (Category, bool) {
	c, ok := extensionCategories[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return c, ok
}

// CategoryOf is ExtensionCategory applied to the extension of a file name.
func CategoryOf(name string) (Category, bool) {
	return ExtensionCategory(filepath.Ext(name))
}

// SupportedExtensions returns the supported extensions of one category, or all
// of them when category is empty.
func SupportedExtensions(category Category) []string {
	out := make([]string, 0, len(extensionCategories))
	for ext, c := range extensionCategories {
		if category == "" || c == category {
			out = append(out, ext)
		}
	}
	slices.Sort(out)
	return out
}

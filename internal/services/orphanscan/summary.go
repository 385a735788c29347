// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package orphanscan

import (
	"strings"

	"github.com/dustin/go-humanize/english"
)

const (
	// MessageNoSelection is returned for an empty delete request.
	MessageNoSelection = "No files selected for deletion."

	// MessageNoAction is the summary when nothing was deleted or failed.
	MessageNoAction = "No action taken."
)

// Summary renders the user-facing outcome of a deletion run.
func Summary(deleted, failed int) string {
	if deleted == 0 && failed == 0 {
		return MessageNoAction
	}

	parts := make([]string, 0, 2)
	if deleted > 0 {
		parts = append(parts, english.Plural(deleted, "orphan file", "")+" deleted.")
	}
	if failed > 0 {
		parts = append(parts, english.Plural(failed, "file", "")+" could not be deleted.")
	}
	return strings.Join(parts, " ")
}

// SelectionWarning returns a notice when an orphan list is large enough that
// submitting it in one request is likely to be truncated by the client or a
// proxy, or "" otherwise.
func SelectionWarning(orphans int) string {
	if orphans <= SelectionWarnThreshold {
		return ""
	}
	return english.Plural(orphans, "orphan file", "") +
		" found. Large selections may exceed request limits; use batched deletion instead of submitting everything at once."
}

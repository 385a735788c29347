// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package httphelpers holds small helpers shared by the API server and its
// client.
package httphelpers

import (
	"io"
	"net/http"
)

// maxDrainBytes bounds how much of an unread body is discarded before close.
// Larger remainders are dropped with the connection instead.
const maxDrainBytes = 256 << 10

// DrainAndClose consumes the remaining response body and closes it to allow connection reuse.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	resp.Body.Close()
}

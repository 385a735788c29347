// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httphelpers

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The server mounts its routes at JoinBasePath(NormalizeBasePath(baseUrl), "/api").
func TestAPIMountUnderBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		baseURL string
		mount   string
	}{
		{"", "/api"},
		{"/", "/api"},
		{"  ", "/api"},
		{"mediasweep", "/mediasweep/api"},
		{"/mediasweep/", "/mediasweep/api"},
		{"//tools/mediasweep//", "/tools/mediasweep/api"},
		{" /wp-tools ", "/wp-tools/api"},
	}

	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.mount, JoinBasePath(NormalizeBasePath(tt.baseURL), "/api"))
		})
	}
}

// The remote client keeps the server URL's path as base and appends endpoint paths.
func TestRemoteEndpointPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		urlPath  string
		endpoint string
		want     string
	}{
		{"", "/api/orphans/delete", "/api/orphans/delete"},
		{"/", "/api/orphans/scan", "/api/orphans/scan"},
		{"/mediasweep", "/api/version", "/mediasweep/api/version"},
		{"/mediasweep/", "api/orphans/delete", "/mediasweep/api/orphans/delete"},
		{"/mediasweep", "", "/mediasweep"},
		{"", "", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.urlPath+"|"+tt.endpoint, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, JoinBasePath(NormalizeBasePath(tt.urlPath), tt.endpoint))
		})
	}
}

type trackingBody struct {
	r      io.Reader
	read   int
	closed bool
}

func (b *trackingBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += n
	return n, err
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestDrainAndClose(t *testing.T) {
	t.Parallel()

	t.Run("nil response and body", func(t *testing.T) {
		t.Parallel()
		DrainAndClose(nil)
		DrainAndClose(&http.Response{})
	})

	t.Run("small error body is drained", func(t *testing.T) {
		t.Parallel()
		body := &trackingBody{r: strings.NewReader(`{"error":"registry unavailable"}`)}
		DrainAndClose(&http.Response{Body: body})
		assert.True(t, body.closed)
		assert.Equal(t, len(`{"error":"registry unavailable"}`), body.read)
	})

	t.Run("large remainder is bounded", func(t *testing.T) {
		t.Parallel()
		body := &trackingBody{r: bytes.NewReader(make([]byte, 4*maxDrainBytes))}
		DrainAndClose(&http.Response{Body: body})
		assert.True(t, body.closed)
		assert.Equal(t, maxDrainBytes, body.read)
	})
}

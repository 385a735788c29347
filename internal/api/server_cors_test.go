// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORSPreflightBypassesAuth(t *testing.T) {
	deps := newTestDependencies(t)

	server := NewServer(deps.Dependencies)
	router, err := server.Handler()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/orphans/delete", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSAllowsAPIKeyAndXRequestedWithHeaders(t *testing.T) {
	deps := newTestDependencies(t)

	server := NewServer(deps.Dependencies)
	router, err := server.Handler()
	require.NoError(t, err)

	// Browsers send requested header names in lowercase.
	req := httptest.NewRequest(http.MethodOptions, "/api/orphans/scan", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-api-key,x-requested-with")

	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	allowedHeaders := strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers"))
	require.Contains(t, allowedHeaders, "x-api-key")
	require.Contains(t, allowedHeaders, "x-requested-with")
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	deps := newTestDependencies(t)

	router, err := NewServer(deps.Dependencies).Handler()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/orphans/scan", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

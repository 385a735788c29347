// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package middleware holds the HTTP middleware used by the API server.
package middleware

import "github.com/go-chi/chi/v5/middleware"

// Re-exported chi middleware so the router imports a single package.
var (
	RequestID = middleware.RequestID
	Recoverer = middleware.Recoverer
)

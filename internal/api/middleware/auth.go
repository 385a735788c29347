// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/mediasweep/internal/domain"
)

// APIKeyHeader carries the API key on every authenticated request.
const APIKeyHeader = "X-API-Key"

// Authenticate requires the configured API key. Without a key the API is
// restricted to clients inside allowedCidrs.
func Authenticate(cfg *domain.Config) func(http.Handler) http.Handler {
	var (
		apiKey   string
		prefixes []netip.Prefix
		cidrErr  error
	)
	if cfg != nil {
		apiKey = cfg.APIKey
		prefixes, cidrErr = cfg.ParseAllowedCIDRs()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey != "" {
				got := r.Header.Get(APIKeyHeader)
				if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
					log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Rejected request with missing or invalid API key")
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if cidrErr != nil || len(prefixes) == 0 {
				log.Error().Err(cidrErr).Msg("API has no apiKey and allowedCidrs is invalid or empty")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			addr, err := parseRemoteAddrIP(r.RemoteAddr)
			if err != nil {
				log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to parse remote address for allowlist")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			for _, prefix := range prefixes {
				if prefix.Contains(addr) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn().
				Str("remote_addr", r.RemoteAddr).
				Str("ip", addr.String()).
				Msg("Blocked request: client IP not in allowedCidrs")
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func parseRemoteAddrIP(remoteAddr string) (netip.Addr, error) {
	trimmed := strings.TrimSpace(remoteAddr)
	if addr, err := netip.ParseAddr(strings.Trim(trimmed, "[]")); err == nil {
		return addr.Unmap(), nil
	}

	host, _, err := net.SplitHostPort(trimmed)
	if err != nil {
		return netip.Addr{}, err
	}

	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return netip.Addr{}, err
	}

	return addr.Unmap(), nil
}

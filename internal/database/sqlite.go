// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	// Register modernc sqlite as database/sql driver.
	_ "modernc.org/sqlite"
)

const (
	defaultBusyTimeout       = 5 * time.Second
	defaultBusyTimeoutMillis = int(defaultBusyTimeout / time.Millisecond)
)

// sqliteDSN builds a read-only URI for a registry export. Pragmas are applied
// by the driver on every new connection.
func sqliteDSN(path string) string {
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", defaultBusyTimeoutMillis))
	q.Add("_pragma", "query_only(1)")

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: q.Encode()}
	return u.String()
}

func newSQLite(path string, opts OpenOptions) (*DB, error) {
	log.Info().Msgf("Opening sqlite registry at: %s", path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("sqlite registry %s: %w", abs, err)
	}

	popts := opts.pool()
	if popts.maxOpenConns <= 0 {
		popts.maxOpenConns = 4
	}
	return openPool(DialectSQLite, sqliteDSN(abs), popts)
}

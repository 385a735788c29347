// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	// Register pgx as database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

func newPostgres(dsn string, opts OpenOptions) (*DB, error) {
	log.Info().Msg("Opening postgres registry")

	popts := opts.pool()
	if popts.maxOpenConns <= 0 {
		popts.maxOpenConns = 10
	}
	if popts.maxIdleConns <= 0 {
		popts.maxIdleConns = 2
	}
	if popts.connMaxLifetime <= 0 {
		popts.connMaxLifetime = 5 * time.Minute
	}
	return openPool(DialectPostgres, dsn, popts)
}

func buildPostgresDSN(opts OpenOptions) string {
	host := strings.TrimSpace(opts.Host)
	user := strings.TrimSpace(opts.User)
	dbName := strings.TrimSpace(opts.Database)
	if host == "" || user == "" || dbName == "" {
		return ""
	}

	port := opts.Port
	if port <= 0 {
		port = 5432
	}

	sslMode := strings.TrimSpace(opts.SSLMode)
	if sslMode == "" {
		sslMode = "disable"
	}

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("connect_timeout", strconv.Itoa(int(connectTimeout/time.Second)))

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, opts.Password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + dbName,
		RawQuery: q.Encode(),
	}

	return u.String()
}

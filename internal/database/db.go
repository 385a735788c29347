// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package database opens the media registry database. The registry is owned
// by the CMS; this package only reads from it and never runs migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/mediasweep/internal/dbinterface"
)

const connectionSetupTimeout = 5 * time.Second

var _ dbinterface.Querier = (*DB)(nil)

// DB wraps a registry connection pool and rebinds placeholders for the
// dialect, so stores can write queries with ? placeholders everywhere.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// NewForTest wraps an existing connection, typically an in-memory sqlite
// database seeded by the test.
func NewForTest(conn *sql.DB, dialect Dialect) *DB {
	if dialect == "" {
		dialect = DialectSQLite
	}
	return &DB{conn: conn, dialect: dialect}
}

type poolOptions struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	connectTimeout  time.Duration
}

// openPool opens and pings a pool for the dialect.
func openPool(dialect Dialect, dsn string, opts poolOptions) (*DB, error) {
	conn, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", dialect, err)
	}

	if opts.maxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.maxOpenConns)
	}
	if opts.maxIdleConns > 0 {
		conn.SetMaxIdleConns(opts.maxIdleConns)
	}
	if opts.connMaxLifetime > 0 {
		conn.SetConnMaxLifetime(opts.connMaxLifetime)
	}

	timeout := opts.connectTimeout
	if timeout <= 0 {
		timeout = connectionSetupTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	log.Debug().Str("dialect", dialect.String()).Msg("Registry database connection established")
	return &DB{conn: conn, dialect: dialect}, nil
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.bindQuery(query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.bindQuery(query), args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.bindQuery(query), args...)
}

// Ping checks the registry is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Stats returns the pool statistics.
func (db *DB) Stats() sql.DBStats {
	return db.conn.Stats()
}

// Conn returns the underlying pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autobrr/mediasweep/internal/domain"
)

type OpenOptions struct {
	Engine          string
	SQLitePath      string
	DSN             string
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (o OpenOptions) pool() poolOptions {
	return poolOptions{
		maxOpenConns:    o.MaxOpenConns,
		maxIdleConns:    o.MaxIdleConns,
		connMaxLifetime: o.ConnMaxLifetime,
		connectTimeout:  o.ConnectTimeout,
	}
}

func Open(opts OpenOptions) (*DB, error) {
	dialect, err := parseDialect(opts.Engine)
	if err != nil {
		return nil, err
	}

	switch dialect {
	case DialectSQLite:
		if strings.TrimSpace(opts.SQLitePath) == "" {
			return nil, errors.New("sqlite database path is required")
		}
		return newSQLite(opts.SQLitePath, opts)
	case DialectMySQL:
		dsn, err := mysqlDSN(opts)
		if err != nil {
			return nil, err
		}
		return newMySQL(dsn, opts)
	case DialectPostgres:
		dsn := strings.TrimSpace(opts.DSN)
		if dsn == "" {
			dsn = buildPostgresDSN(opts)
		}
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
		return newPostgres(dsn, opts)
	default:
		return nil, fmt.Errorf("unsupported database engine %q", opts.Engine)
	}
}

func OpenFromConfig(cfg *domain.Config) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	return Open(OpenOptions{
		Engine:          cfg.DatabaseEngine,
		SQLitePath:      cfg.DatabasePath,
		DSN:             cfg.DatabaseDSN,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		User:            cfg.DatabaseUser,
		Password:        cfg.DatabasePassword,
		Database:        cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		ConnectTimeout:  time.Duration(cfg.DatabaseConnectTimeout) * time.Second,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DatabaseConnMaxLifetime) * time.Second,
	})
}

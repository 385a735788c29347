// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

const defaultMySQLPort = 3306

// mysqlDSN returns opts.DSN when set, otherwise builds one from the discrete
// fields. Either way the result is parsed and normalized through the driver.
func mysqlDSN(opts OpenOptions) (string, error) {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	if dsn := strings.TrimSpace(opts.DSN); dsn != "" {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = connectTimeout
		}
		return cfg.FormatDSN(), nil
	}

	host := strings.TrimSpace(opts.Host)
	user := strings.TrimSpace(opts.User)
	dbName := strings.TrimSpace(opts.Database)
	if host == "" || user == "" || dbName == "" {
		return "", errors.New("mysql dsn or host, user and database name are required")
	}

	port := opts.Port
	if port <= 0 {
		port = defaultMySQLPort
	}

	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = dbName
	cfg.Timeout = connectTimeout
	cfg.ReadTimeout = 30 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	return cfg.FormatDSN(), nil
}

func newMySQL(dsn string, opts OpenOptions) (*DB, error) {
	log.Info().Msg("Opening mysql registry")

	popts := opts.pool()
	if popts.maxOpenConns <= 0 {
		popts.maxOpenConns = 10
	}
	if popts.maxIdleConns <= 0 {
		popts.maxIdleConns = 2
	}
	if popts.connMaxLifetime <= 0 {
		popts.connMaxLifetime = 3 * time.Minute
	}
	return openPool(DialectMySQL, dsn, popts)
}

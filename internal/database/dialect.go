// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) String() string {
	return string(d)
}

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectPostgres:
		return "pgx"
	default:
		return "sqlite"
	}
}

func parseDialect(raw string) (Dialect, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "", string(DialectSQLite), "sqlite3":
		return DialectSQLite, nil
	case string(DialectMySQL), "mariadb":
		return DialectMySQL, nil
	case string(DialectPostgres), "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database engine %q", raw)
	}
}

func (db *DB) Dialect() string {
	if db == nil || db.dialect == "" {
		return string(DialectSQLite)
	}
	return db.dialect.String()
}

func (db *DB) bindQuery(query string) string {
	if db == nil || db.dialect != DialectPostgres {
		return query
	}
	return rebindQuestionToDollar(query)
}

// rebindQuestionToDollar rewrites ? placeholders to $N, leaving quoted
// literals, quoted identifiers and comments untouched.
func rebindQuestionToDollar(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var out strings.Builder
	out.Grow(len(query) + 8)
	param := 0

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'' || ch == '"':
			end := quotedEnd(query, i, ch)
			out.WriteString(query[i:end])
			i = end - 1
		case ch == '-' && strings.HasPrefix(query[i:], "--"):
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				out.WriteString(query[i:])
				return out.String()
			}
			out.WriteString(query[i : i+end+1])
			i += end
		case ch == '/' && strings.HasPrefix(query[i:], "/*"):
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				out.WriteString(query[i:])
				return out.String()
			}
			out.WriteString(query[i : i+2+end+2])
			i += 2 + end + 1
		case ch == '?':
			param++
			out.WriteByte('$')
			out.WriteString(strconv.Itoa(param))
		default:
			out.WriteByte(ch)
		}
	}
	return out.String()
}

// quotedEnd returns the index just past the quoted section starting at
// start. A doubled quote character is an escape.
func quotedEnd(s string, start int, quote byte) int {
	for i := start + 1; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if i+1 < len(s) && s[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}

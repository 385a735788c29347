// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/mediasweep/internal/domain"
)

// InitLogging configures the global zerolog logger. Console output always goes
// to stdout; a rotating file is added when logPath is set.
func InitLogging(cfg *domain.Config) {
	InitLoggingTo(os.Stdout, cfg)
}

// InitLoggingTo is InitLogging with the console output sent to out. CLI
// commands pass stderr so logs stay out of their stdout.
func InitLoggingTo(out io.Writer, cfg *domain.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLogLevel(cfg.LogLevel))

	var writer io.Writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	if cfg.LogPath != "" {
		writer = zerolog.MultiLevelWriter(writer, &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
		})
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

// ParseLogLevel maps the config spelling to a zerolog level, defaulting to info.
func ParseLogLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "ERROR":
		return zerolog.ErrorLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

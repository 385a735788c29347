// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"net/netip"
	"path/filepath"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Version       string
	Host          string `toml:"host" mapstructure:"host"`
	Port          int    `toml:"port" mapstructure:"port"`
	BaseURL       string `toml:"baseUrl" mapstructure:"baseUrl"`
	RootDir       string `toml:"rootDir" mapstructure:"rootDir"`
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	MetricsEnabled bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost    string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort    int    `toml:"metricsPort" mapstructure:"metricsPort"`
	// MetricsBasicAuthUsers is a comma separated list of user:password pairs.
	MetricsBasicAuthUsers string `toml:"metricsBasicAuthUsers" mapstructure:"metricsBasicAuthUsers"`

	CORSAllowedOrigins []string `toml:"corsAllowedOrigins" mapstructure:"corsAllowedOrigins"`

	// APIKey protects the API. When empty, only clients inside AllowedCIDRs are served.
	APIKey       string   `toml:"apiKey" mapstructure:"apiKey"`
	AllowedCIDRs []string `toml:"allowedCidrs" mapstructure:"allowedCidrs"`

	// Registry database. The engine selects the driver: sqlite, mysql or postgres.
	DatabaseEngine          string `toml:"databaseEngine" mapstructure:"databaseEngine"`
	DatabasePath            string `toml:"databasePath" mapstructure:"databasePath"`
	DatabaseDSN             string `toml:"databaseDsn" mapstructure:"databaseDsn"`
	DatabaseHost            string `toml:"databaseHost" mapstructure:"databaseHost"`
	DatabasePort            int    `toml:"databasePort" mapstructure:"databasePort"`
	DatabaseUser            string `toml:"databaseUser" mapstructure:"databaseUser"`
	DatabasePassword        string `toml:"databasePassword" mapstructure:"databasePassword"`
	DatabaseName            string `toml:"databaseName" mapstructure:"databaseName"`
	DatabaseSSLMode         string `toml:"databaseSslMode" mapstructure:"databaseSslMode"`
	DatabaseConnectTimeout  int    `toml:"databaseConnectTimeout" mapstructure:"databaseConnectTimeout"`
	DatabaseMaxOpenConns    int    `toml:"databaseMaxOpenConns" mapstructure:"databaseMaxOpenConns"`
	DatabaseMaxIdleConns    int    `toml:"databaseMaxIdleConns" mapstructure:"databaseMaxIdleConns"`
	DatabaseConnMaxLifetime int    `toml:"databaseConnMaxLifetime" mapstructure:"databaseConnMaxLifetime"`

	// TablePrefix is prepended to the postmeta table name (wp_ by default).
	TablePrefix string `toml:"tablePrefix" mapstructure:"tablePrefix"`

	// Batch deletion driver. BatchAttempts of 1 disables retries of a failed chunk call.
	BatchSize         int `toml:"batchSize" mapstructure:"batchSize"`
	BatchDelayMs      int `toml:"batchDelayMs" mapstructure:"batchDelayMs"`
	BatchErrorDelayMs int `toml:"batchErrorDelayMs" mapstructure:"batchErrorDelayMs"`
	BatchAttempts     int `toml:"batchAttempts" mapstructure:"batchAttempts"`
}

var supportedEngines = map[string]struct{}{
	"sqlite":     {},
	"mysql":      {},
	"mariadb":    {},
	"postgres":   {},
	"postgresql": {},
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RootDir) == "" {
		return errors.New("rootDir is required")
	}
	if !filepath.IsAbs(c.RootDir) {
		return fmt.Errorf("rootDir must be absolute: %s", c.RootDir)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batchSize must be > 0, got %d", c.BatchSize)
	}
	if c.BatchAttempts < 1 {
		return fmt.Errorf("batchAttempts must be >= 1, got %d", c.BatchAttempts)
	}
	engine := strings.ToLower(strings.TrimSpace(c.DatabaseEngine))
	if _, ok := supportedEngines[engine]; !ok {
		return fmt.Errorf("unsupported databaseEngine %q", c.DatabaseEngine)
	}
	if _, err := c.ParseAllowedCIDRs(); err != nil {
		return err
	}
	return nil
}

// ParseAllowedCIDRs parses AllowedCIDRs. Bare addresses are accepted as
// single-host prefixes.
func (c *Config) ParseAllowedCIDRs() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.AllowedCIDRs))
	for _, raw := range c.AllowedCIDRs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid allowedCidrs entry %q: %w", raw, err)
			}
			prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid allowedCidrs entry %q: %w", raw, err)
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

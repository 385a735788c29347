// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the TOML configuration file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/viper"

	"github.com/autobrr/mediasweep/internal/domain"
	"github.com/autobrr/mediasweep/internal/services/orphanscan"
)

const (
	appName        = "mediasweep"
	configFileName = "config.toml"

	// EnvPrefix is prepended to the upper snake case key, e.g. MEDIASWEEP__ROOT_DIR.
	EnvPrefix = "MEDIASWEEP__"
)

// AppConfig wraps the loaded configuration and the file it came from.
type AppConfig struct {
	Config     *domain.Config
	viper      *viper.Viper
	configPath string
}

// New loads configuration from configPath, which may be a file or a
// directory. An empty path uses the default config directory. A missing file
// is created with commented defaults first.
func New(configPath string) (*AppConfig, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}

	c := &AppConfig{
		Config:     &domain.Config{},
		viper:      viper.New(),
		configPath: path,
	}
	c.defaults()
	c.bindEnv()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefaultConfig(path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	}

	c.viper.SetConfigFile(path)
	c.viper.SetConfigType("toml")
	if err := c.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.resolvePaths()

	if err := c.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// ConfigPath returns the config file in use.
func (c *AppConfig) ConfigPath() string {
	return c.configPath
}

// GetDatabasePath returns the sqlite registry path, resolved against the
// config directory when relative.
func (c *AppConfig) GetDatabasePath() string {
	return c.Config.DatabasePath
}

// OrphanScan maps the file settings onto the service configuration.
func (c *AppConfig) OrphanScan() orphanscan.Config {
	return orphanscan.Config{
		Root:            c.Config.RootDir,
		BatchSize:       c.Config.BatchSize,
		BatchDelay:      time.Duration(c.Config.BatchDelayMs) * time.Millisecond,
		BatchErrorDelay: time.Duration(c.Config.BatchErrorDelayMs) * time.Millisecond,
		BatchAttempts:   uint(c.Config.BatchAttempts),
	}
}

func (c *AppConfig) defaults() {
	v := c.viper
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 7478)
	v.SetDefault("baseUrl", "")
	v.SetDefault("rootDir", "")
	v.SetDefault("logLevel", "INFO")
	v.SetDefault("logPath", "")
	v.SetDefault("logMaxSize", 50)
	v.SetDefault("logMaxBackups", 3)
	v.SetDefault("metricsEnabled", false)
	v.SetDefault("metricsHost", "127.0.0.1")
	v.SetDefault("metricsPort", 9074)
	v.SetDefault("metricsBasicAuthUsers", "")
	v.SetDefault("corsAllowedOrigins", []string{})
	v.SetDefault("apiKey", "")
	v.SetDefault("allowedCidrs", []string{"127.0.0.1/32", "::1/128"})
	v.SetDefault("databaseEngine", "sqlite")
	v.SetDefault("databasePath", "")
	v.SetDefault("databaseDsn", "")
	v.SetDefault("databaseHost", "")
	v.SetDefault("databasePort", 0)
	v.SetDefault("databaseUser", "")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseName", "")
	v.SetDefault("databaseSslMode", "")
	v.SetDefault("databaseConnectTimeout", 5)
	v.SetDefault("databaseMaxOpenConns", 0)
	v.SetDefault("databaseMaxIdleConns", 0)
	v.SetDefault("databaseConnMaxLifetime", 0)
	v.SetDefault("tablePrefix", "wp_")
	v.SetDefault("batchSize", orphanscan.DefaultBatchSize)
	v.SetDefault("batchDelayMs", int(orphanscan.DefaultBatchDelay/time.Millisecond))
	v.SetDefault("batchErrorDelayMs", int(orphanscan.DefaultBatchErrorDelay/time.Millisecond))
	v.SetDefault("batchAttempts", 1)
}

// bindEnv binds every known key to its MEDIASWEEP__ variable. Keys are bound
// explicitly so Unmarshal sees variables for keys absent from the file.
func (c *AppConfig) bindEnv() {
	for _, key := range c.viper.AllKeys() {
		_ = c.viper.BindEnv(key, EnvName(canonicalKey(key)))
	}
}

// resolvePaths anchors relative file paths to the config directory.
func (c *AppConfig) resolvePaths() {
	dir := filepath.Dir(c.configPath)
	if p := c.Config.DatabasePath; p != "" && !filepath.IsAbs(p) {
		c.Config.DatabasePath = filepath.Join(dir, p)
	}
	if p := c.Config.LogPath; p != "" && !filepath.IsAbs(p) {
		c.Config.LogPath = filepath.Join(dir, p)
	}
}

// EnvName converts a camelCase key to its environment variable name.
func EnvName(key string) string {
	var b strings.Builder
	b.WriteString(EnvPrefix)
	for i, r := range key {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// viper lowercases keys; recover the camelCase spelling from the struct tags.
var camelKeys = func() map[string]string {
	keys := []string{
		"host", "port", "baseUrl", "rootDir", "logLevel", "logPath", "logMaxSize", "logMaxBackups",
		"metricsEnabled", "metricsHost", "metricsPort", "metricsBasicAuthUsers",
		"corsAllowedOrigins", "apiKey", "allowedCidrs",
		"databaseEngine", "databasePath", "databaseDsn", "databaseHost", "databasePort",
		"databaseUser", "databasePassword", "databaseName", "databaseSslMode",
		"databaseConnectTimeout", "databaseMaxOpenConns", "databaseMaxIdleConns",
		"databaseConnMaxLifetime",
		"tablePrefix", "batchSize", "batchDelayMs", "batchErrorDelayMs", "batchAttempts",
	}
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[strings.ToLower(k)] = k
	}
	return m
}()

func canonicalKey(key string) string {
	if k, ok := camelKeys[key]; ok {
		return k
	}
	return key
}

func resolveConfigPath(configPath string) (string, error) {
	if configPath == "" {
		configPath = getDefaultConfigDir()
	}

	if filepath.Ext(configPath) != ".toml" {
		configPath = filepath.Join(configPath, configFileName)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return abs, nil
}

// getDefaultConfigDir returns the per-user config directory. Containers set
// XDG_CONFIG_HOME=/config and expect the file directly inside it.
func getDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if xdg == "/config" {
			return xdg
		}
		return filepath.Join(xdg, appName)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return "."
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewAppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, tmpDir, `
rootDir = "/srv/uploads"
`)

	cfg, err := New(configPath)
	require.NoError(t, err)

	assert.Equal(t, configPath, cfg.ConfigPath())
	assert.Equal(t, "/srv/uploads", cfg.Config.RootDir)
	assert.Equal(t, "localhost", cfg.Config.Host)
	assert.Equal(t, 7478, cfg.Config.Port)
	assert.Equal(t, "INFO", cfg.Config.LogLevel)
	assert.Equal(t, "sqlite", cfg.Config.DatabaseEngine)
	assert.Equal(t, "wp_", cfg.Config.TablePrefix)
	assert.Equal(t, 100, cfg.Config.BatchSize)
	assert.Equal(t, 500, cfg.Config.BatchDelayMs)
	assert.Equal(t, 1000, cfg.Config.BatchErrorDelayMs)
	assert.Equal(t, 1, cfg.Config.BatchAttempts)
	assert.False(t, cfg.Config.MetricsEnabled)
	assert.Equal(t, []string{"127.0.0.1/32", "::1/128"}, cfg.Config.AllowedCIDRs)
}

func TestNewConfigPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		envVars map[string]string
		check   func(t *testing.T, cfg *AppConfig)
	}{
		{
			name: "file values",
			content: `
rootDir = "/srv/uploads"
databaseEngine = "mysql"
databaseHost = "db"
databaseName = "wordpress"
tablePrefix = "site2_"
batchSize = 50
corsAllowedOrigins = ["https://a.example", "https://b.example"]
`,
			check: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "mysql", cfg.Config.DatabaseEngine)
				assert.Equal(t, "db", cfg.Config.DatabaseHost)
				assert.Equal(t, "site2_", cfg.Config.TablePrefix)
				assert.Equal(t, 50, cfg.Config.BatchSize)
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Config.CORSAllowedOrigins)
			},
		},
		{
			name: "env overrides file",
			content: `
rootDir = "/srv/uploads"
batchSize = 50
`,
			envVars: map[string]string{
				"MEDIASWEEP__ROOT_DIR":        "/override/uploads",
				"MEDIASWEEP__BATCH_SIZE":      "25",
				"MEDIASWEEP__TABLE_PREFIX":    "blog_",
				"MEDIASWEEP__METRICS_ENABLED": "true",
			},
			check: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "/override/uploads", cfg.Config.RootDir)
				assert.Equal(t, 25, cfg.Config.BatchSize)
				assert.Equal(t, "blog_", cfg.Config.TablePrefix)
				assert.True(t, cfg.Config.MetricsEnabled)
			},
		},
		{
			name:    "env supplies keys absent from file",
			content: `logLevel = "DEBUG"`,
			envVars: map[string]string{
				"MEDIASWEEP__ROOT_DIR":          "/srv/uploads",
				"MEDIASWEEP__DATABASE_PASSWORD": "secret",
			},
			check: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "/srv/uploads", cfg.Config.RootDir)
				assert.Equal(t, "secret", cfg.Config.DatabasePassword)
				assert.Equal(t, "DEBUG", cfg.Config.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := New(writeConfig(t, t.TempDir(), tt.content))
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestNewResolvesRelativePaths(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, tmpDir, `
rootDir = "/srv/uploads"
databasePath = "registry.db"
logPath = "log/mediasweep.log"
`)

	cfg, err := New(configPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "registry.db"), cfg.GetDatabasePath())
	assert.Equal(t, filepath.Join(tmpDir, "log", "mediasweep.log"), cfg.Config.LogPath)
}

func TestNewAcceptsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `rootDir = "/srv/uploads"`)

	cfg, err := New(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), cfg.ConfigPath())
}

func TestNewWritesDefaultConfigOnFirstRun(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "nested", "config")

	_, err := New(configDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rootDir is required")
	assert.FileExists(t, filepath.Join(configDir, "config.toml"))

	t.Setenv("MEDIASWEEP__ROOT_DIR", "/srv/uploads")
	cfg, err := New(configDir)
	require.NoError(t, err)
	assert.Equal(t, 7478, cfg.Config.Port)
	assert.Equal(t, "INFO", cfg.Config.LogLevel)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{name: "relative root", content: `rootDir = "uploads"`, errPart: "must be absolute"},
		{name: "zero batch size", content: "rootDir = \"/srv/uploads\"\nbatchSize = 0", errPart: "batchSize"},
		{name: "unknown engine", content: "rootDir = \"/srv/uploads\"\ndatabaseEngine = \"oracle\"", errPart: "unsupported databaseEngine"},
		{name: "broken toml", content: `rootDir = `, errPart: "read config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(writeConfig(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestOrphanScanConfig(t *testing.T) {
	cfg, err := New(writeConfig(t, t.TempDir(), `
rootDir = "/srv/uploads"
batchSize = 40
batchDelayMs = 250
batchErrorDelayMs = 2000
batchAttempts = 3
`))
	require.NoError(t, err)

	sc := cfg.OrphanScan()
	assert.Equal(t, "/srv/uploads", sc.Root)
	assert.Equal(t, 40, sc.BatchSize)
	assert.Equal(t, 250*time.Millisecond, sc.BatchDelay)
	assert.Equal(t, 2*time.Second, sc.BatchErrorDelay)
	assert.Equal(t, uint(3), sc.BatchAttempts)
}

func TestDockerEnvironmentCompatibility(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/config")
	assert.Equal(t, "/config", getDefaultConfigDir(), "Docker environment should use /config directly")

	t.Setenv("XDG_CONFIG_HOME", "/home/user/.config")
	assert.Equal(t, filepath.Join("/home/user/.config", "mediasweep"), getDefaultConfigDir())
}

func TestEnvName(t *testing.T) {
	tests := map[string]string{
		"host":                  "MEDIASWEEP__HOST",
		"rootDir":               "MEDIASWEEP__ROOT_DIR",
		"databaseSslMode":       "MEDIASWEEP__DATABASE_SSL_MODE",
		"metricsBasicAuthUsers": "MEDIASWEEP__METRICS_BASIC_AUTH_USERS",
	}
	for key, want := range tests {
		assert.Equal(t, want, EnvName(key), key)
	}
	assert.Equal(t, "rootDir", canonicalKey("rootdir"))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"ERROR":   zerolog.ErrorLevel,
		"warn":    zerolog.WarnLevel,
		"DEBUG":   zerolog.DebugLevel,
		" TRACE ": zerolog.TraceLevel,
		"INFO":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigTemplate = `# config.toml - Auto-generated on first run

# Hostname / IP the API server listens on
# Default: "localhost"
host = "localhost"

# Port
# Default: 7478
port = 7478

# Path prefix when served behind a reverse proxy, e.g. "/mediasweep"
# Default: ""
#baseUrl = ""

# Upload directory that is reconciled against the registry
# Required, must be absolute
#rootDir = "/var/www/html/wp-content/uploads"

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/mediasweep.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# Prometheus metrics on a separate listener
# Default: false
#metricsEnabled = false
#metricsHost = "127.0.0.1"
#metricsPort = 9074
# Comma separated user:password pairs protecting /metrics
#metricsBasicAuthUsers = ""

# Origins allowed to call the API from a browser
#corsAllowedOrigins = ["https://example.com"]

# API key sent by clients in the X-API-Key header
# When empty, only clients from allowedCidrs may call the API
#apiKey = ""
#allowedCidrs = ["127.0.0.1/32", "::1/128"]

# Registry database
# Options: "sqlite", "mysql", "mariadb", "postgres"
# Default: "sqlite"
#databaseEngine = "mysql"

# sqlite: path to the registry file, relative paths resolve next to this file
#databasePath = "registry.db"

# mysql / postgres: either a complete DSN or the individual fields
#databaseDsn = ""
#databaseHost = "localhost"
#databasePort = 3306
#databaseUser = "wordpress"
#databasePassword = ""
#databaseName = "wordpress"
#databaseSslMode = "disable"

# Connection tuning, seconds and counts. 0 uses the engine default.
#databaseConnectTimeout = 5
#databaseMaxOpenConns = 0
#databaseMaxIdleConns = 0
#databaseConnMaxLifetime = 0

# Postmeta table prefix
# Default: "wp_"
#tablePrefix = "wp_"

# Batched deletion
# Default: 100 paths per batch, 500ms between batches, 1000ms after a failed batch
#batchSize = 100
#batchDelayMs = 500
#batchErrorDelayMs = 1000

# Attempts per batch call before its paths count as failed
# Default: 1
#batchAttempts = 1
`

// WriteDefaultConfig writes the commented default config to path. Parent
// directories are created as needed.
func WriteDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigTemplate), 0o644)
}

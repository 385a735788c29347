// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package buildinfo carries version information injected at link time.
package buildinfo

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/autobrr/mediasweep/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// UserAgent identifies mediasweep in outgoing HTTP requests.
var UserAgent string

func init() {
	UserAgent = fmt.Sprintf("mediasweep/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}

type info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String returns a human readable build summary.
func String() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild date: %s\n", Version, Commit, Date)
}

// JSON returns the build info as a JSON object.
func JSON() ([]byte, error) {
	return json.Marshal(info{Version: Version, Commit: Commit, Date: Date})
}

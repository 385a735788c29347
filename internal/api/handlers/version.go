// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/autobrr/mediasweep/internal/buildinfo"
	"github.com/autobrr/mediasweep/internal/services/orphanscan"
)

type VersionResponse struct {
	Version           string `json:"version"`
	Commit            string `json:"commit,omitempty"`
	Date              string `json:"date,omitempty"`
	ExtensionsVersion int    `json:"extensions_version"`
}

type VersionHandler struct{}

func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// GetVersion reports the build and the supported extension list revision, so
// remote clients can tell which files a server will consider.
func (h *VersionHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	RespondJSON(w, http.StatusOK, VersionResponse{
		Version:           buildinfo.Version,
		Commit:            buildinfo.Commit,
		Date:              buildinfo.Date,
		ExtensionsVersion: orphanscan.ExtensionsVersion,
	})
}

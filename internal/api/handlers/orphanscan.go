// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/autobrr/mediasweep/internal/services/orphanscan"
)

// OrphanService is the part of orphanscan.Service the handler needs.
type OrphanService interface {
	Root() string
	Scan(ctx context.Context) (orphanscan.ScanResult, error)
	DeleteBatch(ctx context.Context, paths []string) (orphanscan.BatchResult, error)
}

// Delete requests run one at a time; up to deleteBacklog wait their turn.
const (
	deleteBacklog        = 16
	deleteBacklogTimeout = time.Minute
)

type OrphanScanHandler struct {
	service OrphanService
	scans   singleflight.Group
}

func NewOrphanScanHandler(service OrphanService) *OrphanScanHandler {
	return &OrphanScanHandler{service: service}
}

// ScanResponse extends ScanResult with a listing of the orphans and the
// large-selection notice.
type ScanResponse struct {
	Root string `json:"root"`
	orphanscan.ScanResult
	Orphans           orphanscan.Listing `json:"orphans"`
	ExtensionsVersion int                `json:"extensions_version"`
	Warning           string             `json:"warning,omitempty"`
}

// NewScanResponse stats the orphans of result for the listing.
func NewScanResponse(root string, result orphanscan.ScanResult) ScanResponse {
	return ScanResponse{
		Root:              root,
		ScanResult:        result,
		Orphans:           orphanscan.Describe(result.OrphanFiles),
		ExtensionsVersion: orphanscan.ExtensionsVersion,
		Warning:           orphanscan.SelectionWarning(len(result.OrphanFiles)),
	}
}

// ScanRequest is the optional body of a scan request.
type ScanRequest struct {
	// OrphansOnly leaves all_files out of the response.
	OrphansOnly bool `json:"orphans_only"`
}

type DeleteRequest struct {
	Paths []string `json:"paths"`
}

type DeleteResponse struct {
	orphanscan.BatchResult
	Message string `json:"message"`
}

func (h *OrphanScanHandler) Routes(r chi.Router) {
	r.Post("/scan", h.Scan)
	r.With(middleware.ThrottleBacklog(1, deleteBacklog, deleteBacklogTimeout)).Post("/delete", h.Delete)
}

// Scan runs a reconciliation pass. Concurrent requests share one in-flight
// scan; a client that disconnects does not cancel it for the others.
func (h *OrphanScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !DecodeJSONOptional(w, r, &req) {
		return
	}

	ctx := r.Context()
	root := h.service.Root()

	ch := h.scans.DoChan(root, func() (any, error) {
		return h.service.Scan(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return
	}

	if res.Err != nil {
		if errors.Is(res.Err, orphanscan.ErrRegistryUnavailable) {
			RespondError(w, http.StatusServiceUnavailable, "Registry unavailable")
			return
		}
		log.Error().Err(res.Err).Str("root", root).Msg("orphanscan: scan request failed")
		RespondError(w, http.StatusInternalServerError, "Scan failed")
		return
	}

	result := res.Val.(orphanscan.ScanResult)
	if req.OrphansOnly {
		result.AllFiles = nil
	}
	RespondJSON(w, http.StatusOK, NewScanResponse(root, result))
}

// Delete removes one batch of paths. Splitting a large selection into
// batches is up to the client.
func (h *OrphanScanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if len(req.Paths) == 0 {
		RespondJSON(w, http.StatusOK, DeleteResponse{Message: orphanscan.MessageNoSelection})
		return
	}

	res, err := h.service.DeleteBatch(r.Context(), req.Paths)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Int("paths", len(req.Paths)).Msg("orphanscan: delete request failed")
		RespondError(w, http.StatusInternalServerError, "Delete failed")
		return
	}

	RespondJSON(w, http.StatusOK, DeleteResponse{
		BatchResult: res,
		Message:     orphanscan.Summary(res.Deleted, res.Failed),
	})
}

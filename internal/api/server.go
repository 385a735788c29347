// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package api serves the orphan scan and batch deletion endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/mediasweep/internal/api/handlers"
	"github.com/autobrr/mediasweep/internal/api/middleware"
	"github.com/autobrr/mediasweep/internal/domain"
	"github.com/autobrr/mediasweep/pkg/httphelpers"
)

type Dependencies struct {
	Config          *domain.Config
	OrphanService   handlers.OrphanService
	ReadinessChecks []handlers.ReadinessCheck
}

type Server struct {
	deps *Dependencies
}

func NewServer(deps *Dependencies) *Server {
	return &Server{deps: deps}
}

// Handler builds the router.
func (s *Server) Handler() (*chi.Mux, error) {
	if s.deps == nil || s.deps.Config == nil || s.deps.OrphanService == nil {
		return nil, errors.New("api: config and orphan service are required")
	}
	cfg := s.deps.Config

	compress, err := httpcompression.DefaultAdapter(httpcompression.MinSize(1024))
	if err != nil {
		return nil, fmt.Errorf("api: compression: %w", err)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.APIKeyHeader, "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger(log.Logger))
	r.Use(corsHandler.Handler)
	r.Use(compress)

	health := handlers.NewHealthHandler(s.deps.ReadinessChecks...)
	version := handlers.NewVersionHandler()
	orphans := handlers.NewOrphanScanHandler(s.deps.OrphanService)

	apiRoutes := func(r chi.Router) {
		r.Route("/health", health.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg))
			r.Get("/version", version.GetVersion)
			r.Route("/orphans", orphans.Routes)
		})
	}

	r.Route(httphelpers.JoinBasePath(httphelpers.NormalizeBasePath(cfg.BaseURL), "/api"), apiRoutes)

	return r, nil
}

// ShutdownTimeout bounds the graceful shutdown after the run context ends.
const ShutdownTimeout = 30 * time.Second

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.deps.Config.Host, strconv.Itoa(s.deps.Config.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("root", s.deps.OrphanService.Root()).Msg("Starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		log.Info().Msg("Shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

// Zebadge
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zebadge.
//
// Zebadge is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zebadge is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zebadge.  If not, see <http://www.gnu.org/licenses/>.

// Package api serves image conversion and badge control over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ZaparooProject/zebadge/pkg/api/middleware"
	"github.com/ZaparooProject/zebadge/pkg/config"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

const (
	// MaxBodyBytes bounds an image request. Base64 adds a third on top of
	// the encoded image.
	MaxBodyBytes = 16 << 20

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// BadgeManager is the part of badge.Manager the API drives.
type BadgeManager interface {
	Preview(ctx context.Context, b pixels.Buffer) (int, error)
	Store(ctx context.Context, name string, b pixels.Buffer) (string, error)
	Show(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	IsConnected() bool
}

// Server routes API requests. Badge endpoints are only mounted when a
// BadgeManager is given.
type Server struct {
	cfg     *config.Instance
	badge   BadgeManager
	limiter *middleware.IPRateLimiter
}

func NewServer(cfg *config.Instance, badge BadgeManager) *Server {
	return &Server{
		cfg:     cfg,
		badge:   badge,
		limiter: middleware.NewIPRateLimiter(),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(chimiddleware.Timeout(config.APIRequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.AuthHeader},
		ExposedHeaders: []string{},
	}))
	r.Use(middleware.HTTPIPFilterMiddleware(middleware.NewIPFilter(s.cfg.APIAllowedIPs())))

	r.Route("/api", func(r chi.Router) {
		r.Get("/ditherers", handleDitherers)

		r.Group(func(r chi.Router) {
			r.Use(middleware.HTTPRateLimitMiddleware(s.limiter))
			r.Post("/image/bin", handleImageBin)
			r.Post("/image/png", handleImagePNG)
		})

		if s.badge == nil {
			return
		}
		r.Route("/badge", func(r chi.Router) {
			r.Use(middleware.TokenAuthMiddleware(s.cfg.APIAuthToken))
			r.Use(middleware.HTTPRateLimitMiddleware(s.limiter))
			r.Get("/status", s.handleBadgeStatus)
			r.Post("/preview", s.handleBadgePreview)
			r.Post("/store", s.handleBadgeStore)
			r.Post("/store/{name}", s.handleBadgeStore)
			r.Get("/pages", s.handleBadgeList)
			r.Post("/pages/{name}/show", s.handleBadgeShow)
			r.Delete("/pages/{name}", s.handleBadgeDelete)
		})
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.APIAddress()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.limiter.StartCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("api server listening")
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown failed: %w", err)
	}
	<-errCh
	return nil
}

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

package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ZaparooProject/zebadge/pkg/api/validation"
	"github.com/ZaparooProject/zebadge/pkg/badge"
	"github.com/ZaparooProject/zebadge/pkg/badge/protocol"
	"github.com/ZaparooProject/zebadge/pkg/badge/transport"
	"github.com/ZaparooProject/zebadge/pkg/codec"
	"github.com/ZaparooProject/zebadge/pkg/dither"
	"github.com/ZaparooProject/zebadge/pkg/imageio"
	"github.com/ZaparooProject/zebadge/pkg/pipeline"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ImageRequest is the body of every image endpoint. Image holds a base64
// encoded PNG, JPEG, GIF, BMP or WebP file. Width and Height are accepted for
// older clients; the decoded image carries its own size.
type ImageRequest struct {
	Image      string               `json:"image" validate:"required,b64"`
	Operations []pipeline.Operation `json:"operations" validate:"dive"`
	Width      int                  `json:"width,omitempty" validate:"gte=-1,lte=4096"`
	Height     int                  `json:"height,omitempty" validate:"gte=-1,lte=4096"`
}

// StatusResponse is returned by GET /api/badge/status.
type StatusResponse struct {
	Connected bool `json:"connected"`
}

// StoreResponse is returned after a page is stored.
type StoreResponse struct {
	Name string `json:"name"`
}

// PagesResponse lists the pages stored on the badge.
type PagesResponse struct {
	Pages []string `json:"pages"`
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &statusError{status: http.StatusBadRequest, err: err}
}

// writeError answers with a plain "Error: <msg>" body. Badge failures map to
// 503 when no badge is attached and 502 otherwise.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var se *statusError
	var notFound *transport.DeviceNotFoundError
	switch {
	case errors.As(err, &se):
		status = se.status
	case errors.Is(err, badge.ErrEmptyName), errors.Is(err, badge.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, transport.ErrNoBoundDevice):
		status = http.StatusServiceUnavailable
	case errors.Is(err, transport.ErrPermissionDenied),
		errors.Is(err, transport.ErrWriteFailure),
		errors.Is(err, transport.ErrReadFailure):
		status = http.StatusBadGateway
	}

	log.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("api request failed")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "Error: %s", err)
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write json response")
	}
}

// readImage decodes the request image and runs its operation chain.
func readImage(w http.ResponseWriter, r *http.Request) (pixels.Buffer, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return pixels.Buffer{}, badRequest(fmt.Errorf("failed to read request: %w", err))
	}

	var req ImageRequest
	if err := validation.ValidateAndUnmarshal(body, &req); err != nil {
		return pixels.Buffer{}, badRequest(err)
	}

	img, err := imageio.DecodeBase64(req.Image)
	if err != nil {
		return pixels.Buffer{}, badRequest(err)
	}

	out, err := pipeline.Apply(img, req.Operations)
	if err != nil {
		return pixels.Buffer{}, badRequest(err)
	}
	log.Debug().
		Int("width", out.Width).
		Int("height", out.Height).
		Int("operations", len(req.Operations)).
		Msg("transformed image")
	return out, nil
}

// handleImageBin returns the preview command for the transformed image, ready
// to be written to the badge.
func handleImageBin(w http.ResponseWriter, r *http.Request) {
	img, err := readImage(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload, err := codec.EncodePayload(img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, protocol.Preview(payload).String())
}

// handleImagePNG returns the transformed image as a base64 encoded PNG.
func handleImagePNG(w http.ResponseWriter, r *http.Request) {
	img, err := readImage(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := imageio.EncodePNG(&buf, img); err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func handleDitherers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dither.Names())
}

// badgeImage prepares a request image for the display using the configured
// size and ditherer.
func (s *Server) badgeImage(w http.ResponseWriter, r *http.Request) (pixels.Buffer, error) {
	img, err := readImage(w, r)
	if err != nil {
		return pixels.Buffer{}, err
	}
	opts, err := pipeline.FromConfig(s.cfg.Image())
	if err != nil {
		return pixels.Buffer{}, err
	}
	return pipeline.Process(img, opts)
}

func (s *Server) handleBadgeStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Connected: s.badge.IsConnected()})
}

func (s *Server) handleBadgePreview(w http.ResponseWriter, r *http.Request) {
	img, err := s.badgeImage(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.badge.Preview(r.Context(), img); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBadgeStore(w http.ResponseWriter, r *http.Request) {
	img, err := s.badgeImage(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name, err := s.badge.Store(r.Context(), chi.URLParam(r, "name"), img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, StoreResponse{Name: name})
}

func (s *Server) handleBadgeList(w http.ResponseWriter, r *http.Request) {
	pages, err := s.badge.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pages == nil {
		pages = []string{}
	}
	writeJSON(w, http.StatusOK, PagesResponse{Pages: pages})
}

func (s *Server) handleBadgeShow(w http.ResponseWriter, r *http.Request) {
	if err := s.badge.Show(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBadgeDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.badge.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

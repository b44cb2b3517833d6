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

// Package client talks to a remote zebadge API server and fetches images
// over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ZaparooProject/zebadge/pkg/api"
	"github.com/ZaparooProject/zebadge/pkg/api/middleware"
	"github.com/ZaparooProject/zebadge/pkg/imageio"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a whole request including the body.
const DefaultTimeout = 30 * time.Second

// ErrServer is wrapped around "Error: ..." answers from the server.
var ErrServer = errors.New("server error")

// AuthTransport adds the ZeAuth header to every request.
type AuthTransport struct {
	Base  http.RoundTripper
	Token string
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Token != "" {
		req = req.Clone(req.Context())
		req.Header.Set(middleware.AuthHeader, t.Token)
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP round trip: %w", err)
	}
	return resp, nil
}

// DefaultTransport pools connections with conservative timeouts.
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          10,
	IdleConnTimeout:       90 * time.Second,
}

type Client struct {
	*http.Client
	baseURL string
}

// New returns a client for the server at baseURL, e.g.
// http://192.168.1.20:8000. An empty token sends no auth header.
func New(baseURL, token string) *Client {
	return &Client{
		Client: &http.Client{
			Transport: &AuthTransport{Base: DefaultTransport, Token: token},
			Timeout:   DefaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) post(ctx context.Context, path string, body any) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return "", fmt.Errorf("error posting to %s: %w", path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	text, err := io.ReadAll(io.LimitReader(resp.Body, api.MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimPrefix(string(text), "Error: ")
		return "", fmt.Errorf("%w: %s (%d)", ErrServer, strings.TrimSpace(msg), resp.StatusCode)
	}
	return string(text), nil
}

// Command converts the image remotely and returns the preview command line.
func (c *Client) Command(ctx context.Context, req api.ImageRequest) (string, error) {
	return c.post(ctx, "/api/image/bin", req)
}

// Convert runs the operations remotely and returns the resulting image.
func (c *Client) Convert(ctx context.Context, req api.ImageRequest) (pixels.Buffer, error) {
	encoded, err := c.post(ctx, "/api/image/png", req)
	if err != nil {
		return pixels.Buffer{}, err
	}
	return imageio.DecodeBase64(encoded)
}

// Fetch downloads and decodes the image at url.
func (c *Client) Fetch(ctx context.Context, url string) (pixels.Buffer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return pixels.Buffer{}, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return pixels.Buffer{}, fmt.Errorf("error getting url: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return pixels.Buffer{}, fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	img, format, err := imageio.Decode(io.LimitReader(resp.Body, api.MaxBodyBytes))
	if err != nil {
		return pixels.Buffer{}, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	log.Debug().Str("url", url).Str("format", format).Msg("fetched image")
	return img, nil
}

// IsURL reports whether s should be fetched rather than read from disk.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

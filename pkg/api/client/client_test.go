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

package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZaparooProject/zebadge/pkg/api"
	"github.com/ZaparooProject/zebadge/pkg/api/middleware"
	"github.com/ZaparooProject/zebadge/pkg/imageio"
	"github.com/ZaparooProject/zebadge/pkg/pipeline"
	"github.com/ZaparooProject/zebadge/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := helpers.NewTestConfig(t, helpers.NewMemoryFS(), nil)
	srv := httptest.NewServer(api.NewServer(cfg, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestCommand(t *testing.T) {
	t.Parallel()

	srv := newAPIServer(t)
	c := New(srv.URL+"/", "")

	line, err := c.Command(context.Background(), api.ImageRequest{
		Image:      helpers.EncodedPNG(t, helpers.Gradient(8, 2)),
		Operations: []pipeline.Operation{{Type: pipeline.OpFloydSteinberg}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "preview::"), line)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	srv := newAPIServer(t)
	c := New(srv.URL, "")

	img, err := c.Convert(context.Background(), api.ImageRequest{
		Image:      helpers.EncodedPNG(t, helpers.Gradient(8, 2)),
		Operations: []pipeline.Operation{{Type: pipeline.OpResize, Width: 4, Height: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 1, img.Height)
}

func TestConvert_ServerError(t *testing.T) {
	t.Parallel()

	srv := newAPIServer(t)
	c := New(srv.URL, "")

	_, err := c.Convert(context.Background(), api.ImageRequest{})
	require.ErrorIs(t, err, ErrServer)
	assert.Contains(t, err.Error(), "image is required")
	assert.Contains(t, err.Error(), "(400)")
}

func TestAuthTransport_SetsHeader(t *testing.T) {
	t.Parallel()

	headers := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get(middleware.AuthHeader)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "s3cret").Command(context.Background(), api.ImageRequest{})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", <-headers)

	_, err = New(srv.URL, "").Command(context.Background(), api.ImageRequest{})
	require.NoError(t, err)
	assert.Empty(t, <-headers)
}

func TestFetch(t *testing.T) {
	t.Parallel()

	var png bytes.Buffer
	require.NoError(t, imageio.EncodePNG(&png, helpers.Gradient(6, 3)))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cat.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(png.Bytes())
	}))
	defer srv.Close()

	c := New("", "")
	img, err := c.Fetch(context.Background(), srv.URL+"/cat.png")
	require.NoError(t, err)
	assert.True(t, helpers.Gradient(6, 3).Equal(img))

	_, err = c.Fetch(context.Background(), srv.URL+"/dog.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status code: 404")
}

func TestFetch_NotAnImage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := New("", "").Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	assert.True(t, IsURL("https://example.com/a.png"))
	assert.True(t, IsURL("http://localhost/a.png"))
	assert.False(t, IsURL("/tmp/a.png"))
	assert.False(t, IsURL("ftp://example.com/a.png"))
}

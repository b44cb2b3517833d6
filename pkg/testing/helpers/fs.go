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

package helpers

import (
	"bytes"
	"testing"

	"github.com/ZaparooProject/zebadge/pkg/codec"
	"github.com/ZaparooProject/zebadge/pkg/config"
	"github.com/ZaparooProject/zebadge/pkg/imageio"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestConfigDir is where test configs are written on the memory filesystem.
const TestConfigDir = "/etc/zebadge"

// NewMemoryFS creates a new in-memory filesystem for testing.
func NewMemoryFS() afero.Fs {
	return afero.NewMemMapFs()
}

// NewTestConfig writes BaseDefaults, adjusted by mutate, to fs and loads it.
func NewTestConfig(t *testing.T, fs afero.Fs, mutate func(*config.Values)) *config.Instance {
	t.Helper()
	defaults := config.BaseDefaults
	if mutate != nil {
		mutate(&defaults)
	}
	cfg, err := config.NewConfigWithFs(fs, TestConfigDir, defaults)
	require.NoError(t, err)
	return cfg
}

// Gradient is a horizontal black to white ramp.
func Gradient(w, h int) pixels.Buffer {
	b := pixels.Blank(w, h, pixels.Black)
	for y := range h {
		for x := range w {
			b.Set(x, y, pixels.Gray((x*255)/max(1, w-1)))
		}
	}
	return b
}

// WriteImage stores b as a PNG at path on fs.
func WriteImage(t *testing.T, fs afero.Fs, path string, b pixels.Buffer) {
	t.Helper()
	require.NoError(t, imageio.Save(fs, path, b))
}

// EncodedPNG returns b as a base64 encoded PNG, the form API clients send.
func EncodedPNG(t *testing.T, b pixels.Buffer) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imageio.EncodePNG(&buf, b))
	return codec.EncodeBase64(buf.Bytes())
}

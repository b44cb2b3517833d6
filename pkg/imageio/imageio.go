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

// Package imageio reads images of the common formats into pixel buffers and
// writes buffers back out as PNG.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	// registered decoders
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/ZaparooProject/zebadge/pkg/codec"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds decoded images so a hostile header cannot make us allocate
// gigabytes.
const MaxPixels = 4096 * 4096

var ErrTooLarge = errors.New("image too large")

// Decode reads any registered image format.
func Decode(r io.Reader) (pixels.Buffer, string, error) {
	var head bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return pixels.Buffer{}, "", fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return pixels.Buffer{}, format, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return pixels.Buffer{}, format, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return pixels.FromImage(img), format, nil
}

// DecodeBase64 decodes a base64 encoded image file, as sent by API clients.
func DecodeBase64(s string) (pixels.Buffer, error) {
	data, err := codec.DecodeBase64(s)
	if err != nil {
		return pixels.Buffer{}, err
	}
	b, _, err := Decode(bytes.NewReader(data))
	return b, err
}

// Load reads the image at path.
func Load(fs afero.Fs, path string) (pixels.Buffer, error) {
	f, err := fs.Open(path)
	if err != nil {
		return pixels.Buffer{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	b, _, err := Decode(f)
	if err != nil {
		return pixels.Buffer{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// EncodePNG writes b as an opaque PNG.
func EncodePNG(w io.Writer, b pixels.Buffer) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := png.Encode(w, pixels.ToImage(b)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Save writes b to path as PNG.
func Save(fs afero.Fs, path string, b pixels.Buffer) error {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, b); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

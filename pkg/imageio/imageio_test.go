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

package imageio

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{A: 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecode_Formats(t *testing.T) {
	t.Parallel()

	src := checker(4, 3)
	tests := []struct {
		encode func(*bytes.Buffer) error
		format string
	}{
		{format: "png", encode: func(b *bytes.Buffer) error { return png.Encode(b, src) }},
		{format: "gif", encode: func(b *bytes.Buffer) error { return gif.Encode(b, src, nil) }},
		{format: "bmp", encode: func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf))

			b, format, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, 4, b.Width)
			assert.Equal(t, 3, b.Height)
			assert.Equal(t, pixels.White, b.At(0, 0))
			assert.Equal(t, pixels.Black, b.At(1, 0))
		})
	}
}

func TestDecode_JPEG(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))

	b, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 16, b.Width)
	assert.GreaterOrEqual(t, pixels.Green(b.At(8, 8)), 250)
}

func TestDecode_Garbage(t *testing.T) {
	t.Parallel()

	_, _, err := Decode(bytes.NewReader([]byte("definitely not an image")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode image header")
}

func TestDecodeBase64(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(2, 2)))

	b, err := DecodeBase64(base64.StdEncoding.EncodeToString(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []uint32{pixels.White, pixels.Black, pixels.Black, pixels.White}, b.Pixels)

	_, err = DecodeBase64("!!!")
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	in := pixels.Blank(5, 2, pixels.Black)
	in.Set(4, 1, pixels.White)
	in.Set(0, 0, pixels.RGB(10, 20, 30))

	require.NoError(t, Save(fs, "/out/page.png", in))

	out, err := Load(fs, "/out/page.png")
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(afero.NewMemMapFs(), "/nope.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open image")
}

func TestEncodePNG_Invalid(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := EncodePNG(&buf, pixels.Buffer{Width: 1, Height: 1})
	require.ErrorIs(t, err, pixels.ErrSizeMismatch)
}

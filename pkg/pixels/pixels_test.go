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

package pixels

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SizeMismatch(t *testing.T) {
	t.Parallel()

	_, err := New(3, 2, make([]uint32, 5))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSizeMismatch)

	var sizeErr *SizeMismatchError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, 3, sizeErr.Width)
	assert.Equal(t, 2, sizeErr.Height)
	assert.Equal(t, 5, sizeErr.Length)
	assert.Contains(t, err.Error(), "3x2")
}

func TestNew_Valid(t *testing.T) {
	t.Parallel()

	b, err := New(2, 2, []uint32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), b.At(0, 1))
	assert.Equal(t, uint32(2), b.At(1, 0))
	assert.True(t, b.InBounds(1, 1))
	assert.False(t, b.InBounds(2, 0))
	assert.False(t, b.InBounds(0, -1))
}

func TestChannels(t *testing.T) {
	t.Parallel()

	c := RGB(0x12, 0x34, 0x56)
	assert.Equal(t, uint32(0x123456), c)
	assert.Equal(t, 0x12, Red(c))
	assert.Equal(t, 0x34, Green(c))
	assert.Equal(t, 0x56, Blue(c))
	assert.Equal(t, uint32(0x00ff00), RGB(256, 255, -256))
}

func TestLuminance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		color uint32
		want  int
	}{
		{name: "black", color: Black, want: 0},
		{name: "white", color: White, want: 255},
		{name: "red", color: RGB(255, 0, 0), want: 54},
		{name: "green", color: RGB(0, 255, 0), want: 182},
		{name: "blue", color: RGB(0, 0, 255), want: 18},
		{name: "mid gray stays", color: RGB(128, 128, 128), want: 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Luminance(tt.color))
		})
	}
}

func TestGrayscale_ChannelsEqual(t *testing.T) {
	t.Parallel()

	b, err := New(3, 1, []uint32{RGB(255, 0, 0), RGB(10, 200, 30), RGB(1, 2, 3)})
	require.NoError(t, err)

	g := Grayscale(b)
	for _, p := range g.Pixels {
		assert.Equal(t, Red(p), Green(p))
		assert.Equal(t, Green(p), Blue(p))
	}
	assert.Equal(t, uint32(RGB(255, 0, 0)), b.Pixels[0], "input must not be mutated")
}

func TestInvert(t *testing.T) {
	t.Parallel()

	b, err := New(2, 1, []uint32{Black, RGB(10, 20, 30)})
	require.NoError(t, err)

	inv := Invert(b)
	assert.Equal(t, []uint32{White, RGB(245, 235, 225)}, inv.Pixels)
	assert.True(t, Invert(inv).Equal(b))
}

func TestResize_NearestNeighbor(t *testing.T) {
	t.Parallel()

	b, err := New(2, 2, []uint32{1, 2, 3, 4})
	require.NoError(t, err)

	out, err := Resize(b, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, out.Pixels)

	down, err := Resize(out, 2, 2)
	require.NoError(t, err)
	assert.True(t, down.Equal(b))
}

func TestResize_RejectsBrokenBuffer(t *testing.T) {
	t.Parallel()

	_, err := Resize(Buffer{Width: 4, Height: 4, Pixels: make([]uint32, 3)}, 2, 2)
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestImageRoundTrip(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.RGBA{R: 255, A: 255})
	img.Set(6, 5, color.RGBA{G: 10, B: 20, A: 255})

	b := FromImage(img)
	require.Equal(t, 2, b.Width)
	require.Equal(t, 1, b.Height)
	assert.Equal(t, []uint32{RGB(255, 0, 0), RGB(0, 10, 20)}, b.Pixels)

	back := FromImage(ToImage(b))
	assert.True(t, back.Equal(b))
}

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.True(t, Blank(3, 3, White).IsBinary())
	assert.True(t, IsBinary(0xFF000000))
	b := Blank(2, 1, Black)
	b.Pixels[1] = Gray(127)
	assert.False(t, b.IsBinary())
}

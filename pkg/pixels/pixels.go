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

// Package pixels holds the flat row-major pixel buffer shared by every image
// stage, plus the color helpers that operate on packed 0xRRGGBB values.
package pixels

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Black is the packed value of a pure black pixel.
	Black uint32 = 0x000000
	// White is the packed value of a pure white pixel.
	White uint32 = 0xFFFFFF
)

// ErrSizeMismatch is matched by every SizeMismatchError.
var ErrSizeMismatch = errors.New("pixel count does not match dimensions")

// SizeMismatchError reports a buffer whose length disagrees with its
// declared width and height.
type SizeMismatchError struct {
	Width  int
	Height int
	Length int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("pixel buffer of length %d does not fit %dx%d", e.Length, e.Width, e.Height)
}

func (*SizeMismatchError) Unwrap() error {
	return ErrSizeMismatch
}

// Buffer is a row-major image. Pixel (x, y) lives at Pixels[x+y*Width].
type Buffer struct {
	Pixels []uint32
	Width  int
	Height int
}

// New wraps px as a width x height buffer. The slice is used as-is.
func New(width, height int, px []uint32) (Buffer, error) {
	b := Buffer{Width: width, Height: height, Pixels: px}
	if err := b.Validate(); err != nil {
		return Buffer{}, err
	}
	return b, nil
}

// Blank allocates a buffer filled with c.
func Blank(width, height int, c uint32) Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	px := make([]uint32, width*height)
	if c != 0 {
		for i := range px {
			px[i] = c
		}
	}
	return Buffer{Width: width, Height: height, Pixels: px}
}

// Validate checks the length invariant.
func (b Buffer) Validate() error {
	if b.Width < 0 || b.Height < 0 || len(b.Pixels) != b.Width*b.Height {
		return &SizeMismatchError{Width: b.Width, Height: b.Height, Length: len(b.Pixels)}
	}
	return nil
}

// Len returns the number of pixels.
func (b Buffer) Len() int {
	return len(b.Pixels)
}

// InBounds reports whether (x, y) addresses a pixel.
func (b Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// At returns the pixel at (x, y). Callers must stay in bounds.
func (b Buffer) At(x, y int) uint32 {
	return b.Pixels[x+y*b.Width]
}

// Set stores c at (x, y). Callers must stay in bounds.
func (b Buffer) Set(x, y int, c uint32) {
	b.Pixels[x+y*b.Width] = c
}

// Clone returns a deep copy.
func (b Buffer) Clone() Buffer {
	px := make([]uint32, len(b.Pixels))
	copy(px, b.Pixels)
	return Buffer{Width: b.Width, Height: b.Height, Pixels: px}
}

// Equal compares dimensions and every pixel.
func (b Buffer) Equal(o Buffer) bool {
	if b.Width != o.Width || b.Height != o.Height || len(b.Pixels) != len(o.Pixels) {
		return false
	}
	for i, p := range b.Pixels {
		if o.Pixels[i] != p {
			return false
		}
	}
	return true
}

// IsBinary reports whether every pixel is Black or White.
func (b Buffer) IsBinary() bool {
	for _, p := range b.Pixels {
		if !IsBinary(p) {
			return false
		}
	}
	return true
}

// Red extracts the red channel of a packed color.
func Red(c uint32) int { return int((c >> 16) & 0xff) }

// Green extracts the green channel of a packed color.
func Green(c uint32) int { return int((c >> 8) & 0xff) }

// Blue extracts the blue channel of a packed color.
func Blue(c uint32) int { return int(c & 0xff) }

// RGB packs three channels, keeping only the low eight bits of each.
func RGB(r, g, b int) uint32 {
	return uint32(r&0xff)<<16 | uint32(g&0xff)<<8 | uint32(b&0xff)
}

// Gray packs v into all three channels, clamped to 0..255.
func Gray(v int) uint32 {
	v = Clamp(v, 0, 255)
	return RGB(v, v, v)
}

// IsBinary reports whether c is pure black or pure white, ignoring alpha.
func IsBinary(c uint32) bool {
	c &= 0xFFFFFF
	return c == Black || c == White
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Luminance returns the Rec. 709 gray value of c.
func Luminance(c uint32) int {
	y := 0.2126*float64(Red(c)) + 0.7152*float64(Green(c)) + 0.0722*float64(Blue(c))
	return int(math.Round(y))
}

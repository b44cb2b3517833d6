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
	"image"
	"image/color"
	"math"
)

// Grayscale maps every pixel to its luminance, R=G=B=Y.
func Grayscale(b Buffer) Buffer {
	out := Buffer{Width: b.Width, Height: b.Height, Pixels: make([]uint32, len(b.Pixels))}
	for i, p := range b.Pixels {
		out.Pixels[i] = Gray(Luminance(p))
	}
	return out
}

// Invert flips every channel, turning black into white and back.
func Invert(b Buffer) Buffer {
	out := Buffer{Width: b.Width, Height: b.Height, Pixels: make([]uint32, len(b.Pixels))}
	for i, p := range b.Pixels {
		out.Pixels[i] = RGB(255-Red(p), 255-Green(p), 255-Blue(p))
	}
	return out
}

// Resize scales b to w x h by nearest-neighbor sampling, no filtering.
func Resize(b Buffer, w, h int) (Buffer, error) {
	if err := b.Validate(); err != nil {
		return Buffer{}, err
	}
	out := Blank(w, h, Black)
	if b.Len() == 0 {
		return out, nil
	}
	for y := range h {
		inY := int(math.Floor(float64(y) / float64(h) * float64(b.Height)))
		for x := range w {
			inX := int(math.Floor(float64(x) / float64(w) * float64(b.Width)))
			out.Pixels[x+y*w] = b.At(inX, inY)
		}
	}
	return out, nil
}

// FromImage copies img into a buffer, dropping alpha.
func FromImage(img image.Image) Buffer {
	bounds := img.Bounds()
	out := Blank(bounds.Dx(), bounds.Dy(), Black)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, RGB(int(r>>8), int(g>>8), int(bl>>8)))
		}
	}
	return out
}

// ToImage renders b as an opaque RGBA image.
func ToImage(b Buffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := range b.Height {
		for x := range b.Width {
			p := b.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(Red(p)),
				G: uint8(Green(p)),
				B: uint8(Blue(p)),
				A: 0xff,
			})
		}
	}
	return img
}

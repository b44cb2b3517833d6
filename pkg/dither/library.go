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

package dither

import (
	"image"
	"image/color"

	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/makeworld-the-better-one/dither/v2"
)

// DefaultBayerSize is the edge length of the Bayer threshold matrix.
const DefaultBayerSize = 8

var blackWhite = []color.Color{color.Black, color.White}

// Atkinson diffuses three quarters of the error over six neighbours, which
// keeps highlights crisp on small displays.
type Atkinson struct{}

func (Atkinson) Name() string { return "atkinson" }

func (Atkinson) Dither(b pixels.Buffer) (pixels.Buffer, error) {
	d := dither.NewDitherer(blackWhite)
	d.Matrix = dither.Atkinson
	return drawWith(d, b)
}

// Bayer applies an ordered Bayer matrix of Size x Size.
type Bayer struct {
	Size int
}

func (Bayer) Name() string { return "bayer" }

func (by Bayer) Dither(b pixels.Buffer) (pixels.Buffer, error) {
	size := by.Size
	if size <= 0 {
		size = DefaultBayerSize
	}
	d := dither.NewDitherer(blackWhite)
	d.Mapper = dither.Bayer(uint(size), uint(size), 1.0)
	return drawWith(d, b)
}

func drawWith(d *dither.Ditherer, b pixels.Buffer) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}
	if b.Len() == 0 {
		return b.Clone(), nil
	}

	src := pixels.ToImage(pixels.Grayscale(b))
	dst := image.NewRGBA(src.Bounds())
	d.Draw(dst, dst.Bounds(), src, image.Point{})

	levels := make([]int, b.Len())
	for y := range b.Height {
		for x := range b.Width {
			levels[x+y*b.Width] = int(dst.RGBAAt(x, y).G)
		}
	}
	return fromLevels(b.Width, b.Height, levels), nil
}

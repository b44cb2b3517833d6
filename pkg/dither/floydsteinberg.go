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

import "github.com/ZaparooProject/zebadge/pkg/pixels"

// FloydSteinberg diffuses the quantization error of each pixel into its
// right, below-left, below and below-right neighbours (7, 3, 5, 1 sixteenths).
//
// See https://en.wikipedia.org/wiki/Floyd%E2%80%93Steinberg_dithering
type FloydSteinberg struct{}

type diffusionTap struct {
	dx, dy int
	weight float64
}

var floydSteinbergTaps = [...]diffusionTap{
	{dx: 1, dy: 0, weight: 7.0 / 16},
	{dx: -1, dy: 1, weight: 3.0 / 16},
	{dx: 0, dy: 1, weight: 5.0 / 16},
	{dx: 1, dy: 1, weight: 1.0 / 16},
}

func (FloydSteinberg) Name() string { return "floyd-steinberg" }

func (FloydSteinberg) Dither(b pixels.Buffer) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}

	w, h := b.Width, b.Height
	levels := grayLevels(b)
	for y := range h {
		for x := range w {
			i := x + y*w
			old := levels[i]
			quantized := quantize(old)
			levels[i] = quantized
			diffuse(levels, w, h, x, y, old-quantized, floydSteinbergTaps[:])
		}
	}
	return fromLevels(w, h, levels), nil
}

// diffuse spreads err over the in-bounds taps around (x, y).
func diffuse(levels []int, w, h, x, y, err int, taps []diffusionTap) {
	if err == 0 {
		return
	}
	for _, tap := range taps {
		if tap.weight <= 0 {
			continue
		}
		nx, ny := x+tap.dx, y+tap.dy
		if nx < 0 || nx >= w || ny < 0 || ny >= h {
			continue
		}
		j := nx + ny*w
		levels[j] = roundHalfUp(float64(levels[j]) + float64(err)*tap.weight)
	}
}

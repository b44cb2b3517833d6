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

// PositionalWeights holds the quarter weights used on even and odd
// checkerboard cells. Index 0 is the pixel below, index 1 below-right.
type PositionalWeights struct {
	Even [2]int
	Odd  [2]int
}

// DefaultPositionalWeights splits the error evenly on even cells and pushes
// it straight down on odd cells.
func DefaultPositionalWeights() PositionalWeights {
	return PositionalWeights{
		Even: [2]int{2, 2},
		Odd:  [2]int{4, 0},
	}
}

func (pw PositionalWeights) taps(x, y int) []diffusionTap {
	q := pw.Odd
	if (x+y)%2 == 0 {
		q = pw.Even
	}
	return []diffusionTap{
		{dx: 0, dy: 1, weight: float64(q[0]) / 4},
		{dx: 1, dy: 1, weight: float64(q[1]) / 4},
	}
}

// Positional is a cheap ordered ditherer: it quantizes like Floyd-Steinberg
// but only pushes error downwards, with weights picked by cell parity.
type Positional struct {
	even    []diffusionTap
	odd     []diffusionTap
	Weights PositionalWeights
}

// NewPositional builds a Positional ditherer with the default table.
func NewPositional() *Positional {
	return NewPositionalWithWeights(DefaultPositionalWeights())
}

// NewPositionalWithWeights builds a Positional ditherer from pw.
func NewPositionalWithWeights(pw PositionalWeights) *Positional {
	return &Positional{
		Weights: pw,
		even:    pw.taps(0, 0),
		odd:     pw.taps(1, 0),
	}
}

func (*Positional) Name() string { return "positional" }

func (p *Positional) Dither(b pixels.Buffer) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}

	even, odd := p.even, p.odd
	if even == nil || odd == nil {
		even, odd = p.Weights.taps(0, 0), p.Weights.taps(1, 0)
	}

	w, h := b.Width, b.Height
	levels := grayLevels(b)
	for y := range h {
		for x := range w {
			i := x + y*w
			old := levels[i]
			quantized := quantize(old)
			levels[i] = quantized

			taps := odd
			if (x+y)%2 == 0 {
				taps = even
			}
			diffuse(levels, w, h, x, y, old-quantized, taps)
		}
	}
	return fromLevels(w, h, levels), nil
}

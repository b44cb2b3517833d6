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
	"github.com/ZaparooProject/zebadge/pkg/pixels"
)

// BlockSize is the edge length of a pattern block.
const BlockSize = 3

// Block is a row-major 3x3 tile of gray levels.
type Block [BlockSize * BlockSize]int

// Inverted swaps black and white.
func (b Block) Inverted() Block {
	var out Block
	for i, v := range b {
		out[i] = 255 - v
	}
	return out
}

// Rotated transposes the block, which turns the hand-drawn strokes by 90°.
func (b Block) Rotated() Block {
	var out Block
	for i := range out {
		x, y := i%BlockSize, i/BlockSize
		out[i] = b[y+x*BlockSize]
	}
	return out
}

// Palette is an ordered set of candidate blocks. Earlier entries win ties.
type Palette []Block

const (
	lo = 0x00
	hi = 0xFF
)

var handPickedBlocks = [...]Block{
	{
		lo, lo, lo,
		lo, lo, lo,
		lo, lo, lo,
	},
	{
		lo, lo, lo,
		lo, hi, lo,
		lo, lo, lo,
	},
	{
		lo, hi, lo,
		lo, hi, lo,
		lo, lo, lo,
	},
	{
		lo, lo, lo,
		lo, hi, lo,
		lo, hi, lo,
	},
	{
		lo, hi, lo,
		lo, hi, lo,
		lo, hi, lo,
	},
	{
		lo, hi, lo,
		hi, hi, lo,
		lo, hi, lo,
	},
	{
		lo, hi, lo,
		hi, lo, lo,
		lo, hi, lo,
	},
	{
		hi, lo, hi,
		lo, hi, lo,
		hi, lo, hi,
	},
	{
		lo, hi, lo,
		hi, lo, hi,
		lo, hi, lo,
	},
}

// DefaultPalette expands the hand-picked blocks into the original, inverted,
// rotated and rotated-inverted variant of each, in that order.
func DefaultPalette() Palette {
	return ExpandPalette(handPickedBlocks[:])
}

// ExpandPalette derives the four variants of every base block.
func ExpandPalette(base []Block) Palette {
	out := make(Palette, 0, len(base)*4)
	for _, b := range base {
		r := b.Rotated()
		out = append(out, b, b.Inverted(), r, r.Inverted())
	}
	return out
}

// Pattern replaces every 3x3 block of the image with the palette entry of
// least absolute difference, then thresholds the result at 128.
type Pattern struct {
	Palette Palette
}

// NewPattern builds a Pattern ditherer with the default palette.
func NewPattern() *Pattern {
	return &Pattern{Palette: DefaultPalette()}
}

func (*Pattern) Name() string { return "pattern" }

func (p *Pattern) Dither(b pixels.Buffer) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}

	palette := p.Palette
	if len(palette) == 0 {
		palette = DefaultPalette()
	}

	w, h := b.Width, b.Height
	levels := grayLevels(b)
	blocksX := (w + BlockSize - 1) / BlockSize
	blocksY := (h + BlockSize - 1) / BlockSize

	for by := range blocksY {
		for bx := range blocksX {
			best := palette.closest(levels, w, h, bx, by)
			for i, v := range best {
				x := clampIndex(bx*BlockSize+i%BlockSize, w)
				y := clampIndex(by*BlockSize+i/BlockSize, h)
				levels[x+y*w] = v
			}
		}
	}

	return fromLevels(w, h, levels), nil
}

// closest returns the first block of minimal sum of absolute differences.
func (p Palette) closest(levels []int, w, h, bx, by int) Block {
	bestIdx, bestErr := 0, -1
	for idx, candidate := range p {
		diff := 0
		for i, v := range candidate {
			x := clampIndex(bx*BlockSize+i%BlockSize, w)
			y := clampIndex(by*BlockSize+i/BlockSize, h)
			d := v - levels[x+y*w]
			if d < 0 {
				d = -d
			}
			diff += d
		}
		if bestErr < 0 || diff < bestErr {
			bestIdx, bestErr = idx, diff
		}
	}
	return p[bestIdx]
}

func clampIndex(v, n int) int {
	if v >= n {
		return n - 1
	}
	if v < 0 {
		return 0
	}
	return v
}

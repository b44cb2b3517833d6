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

// Package carve shrinks pixel buffers by removing low-contrast seams instead
// of scaling uniformly.
//
// See https://en.wikipedia.org/wiki/Seam_carving
package carve

import (
	"math"

	"github.com/ZaparooProject/zebadge/pkg/pixels"
)

// outOfBounds is what a read outside the buffer yields. Its color channels
// read as white, which makes edges look like a bright frame.
const outOfBounds uint32 = 0x7FFFFFFF

type direction int

const (
	vertical direction = iota
	horizontal
)

type point struct {
	x, y int
}

// Carve removes inW-outW vertical seams, then inH-outH horizontal seams from b.
// Asking for a larger size in either dimension returns b unchanged.
func Carve(b pixels.Buffer, outW, outH int) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}
	if outW > b.Width || outH > b.Height {
		return b, nil
	}
	if outW < 0 || outH < 0 {
		return pixels.Buffer{}, &pixels.SizeMismatchError{Width: outW, Height: outH, Length: b.Len()}
	}

	current := b.Clone()
	for current.Width > outW {
		if current.Height == 0 {
			current = pixels.Blank(outW, 0, pixels.Black)
			break
		}
		current = removeVertical(current, findSeam(current, vertical))
	}
	for current.Height > outH {
		if current.Width == 0 {
			current = pixels.Blank(current.Width, outH, pixels.Black)
			break
		}
		current = removeHorizontal(current, findSeam(current, horizontal))
	}
	return current, nil
}

// colorDistance is a perceptually weighted squared distance.
func colorDistance(a, c uint32) int {
	dr := pixels.Red(c) - pixels.Red(a)
	dg := pixels.Green(c) - pixels.Green(a)
	db := pixels.Blue(c) - pixels.Blue(a)
	v := 0.3*float64(dr*dr) + 0.59*float64(dg*dg) + 0.11*float64(db*db)
	return int(math.Floor(v + 0.5))
}

func at(b pixels.Buffer, p point) uint32 {
	if !b.InBounds(p.x, p.y) {
		return outOfBounds
	}
	return b.At(p.x, p.y)
}

// findSeam walks greedily from every start on the leading edge and returns
// the path with the smallest accumulated distance. Earlier starts win ties.
func findSeam(b pixels.Buffer, dir direction) []point {
	starts, steps := b.Width, b.Height
	if dir == horizontal {
		starts, steps = b.Height, b.Width
	}

	var best []point
	bestTotal := -1
	path := make([]point, steps)
	var candidates [3]point

	for s := range starts {
		cur := point{x: s}
		if dir == horizontal {
			cur = point{y: s}
		}
		path[0] = cur
		total := 0

		for step := 1; step < steps; step++ {
			if dir == vertical {
				candidates = [3]point{{cur.x - 1, cur.y + 1}, {cur.x, cur.y + 1}, {cur.x + 1, cur.y + 1}}
			} else {
				candidates = [3]point{{cur.x + 1, cur.y - 1}, {cur.x + 1, cur.y}, {cur.x + 1, cur.y + 1}}
			}

			source := at(b, cur)
			next, nextDist := candidates[0], math.MaxInt
			for _, c := range candidates {
				if d := colorDistance(at(b, c), source); d < nextDist {
					next, nextDist = c, d
				}
			}
			total += nextDist
			cur = next
			path[step] = cur
		}

		if bestTotal < 0 || total < bestTotal {
			bestTotal = total
			best = append(best[:0], path...)
		}
	}
	return best
}

// removeVertical drops one pixel per row at the seam's column.
func removeVertical(b pixels.Buffer, seam []point) pixels.Buffer {
	w := b.Width - 1
	out := pixels.Blank(w, b.Height, pixels.Black)
	for y := range b.Height {
		cut := pixels.Clamp(seam[y].x, 0, b.Width-1)
		row := b.Pixels[y*b.Width : (y+1)*b.Width]
		dst := out.Pixels[y*w : (y+1)*w]
		copy(dst, row[:cut])
		copy(dst[cut:], row[cut+1:])
	}
	return out
}

// removeHorizontal drops one pixel per column at the seam's row.
func removeHorizontal(b pixels.Buffer, seam []point) pixels.Buffer {
	h := b.Height - 1
	out := pixels.Blank(b.Width, h, pixels.Black)
	for x := range b.Width {
		cut := pixels.Clamp(seam[x].y, 0, b.Height-1)
		for y := range h {
			src := y
			if y >= cut {
				src = y + 1
			}
			out.Set(x, y, b.At(x, src))
		}
	}
	return out
}

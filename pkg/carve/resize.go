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

package carve

import (
	"image"
	"math"

	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"golang.org/x/image/draw"
)

// ResizeAndCarve scales b down while keeping its aspect ratio until one side
// matches the target, then carves the other side to size. Targets larger
// than the source are left to Carve, which returns the input unchanged.
func ResizeAndCarve(b pixels.Buffer, outW, outH int) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}
	if outW > b.Width || outH > b.Height || b.Len() == 0 {
		return Carve(b, outW, outH)
	}

	scale := math.Max(float64(outW)/float64(b.Width), float64(outH)/float64(b.Height))
	scaledW := max(outW, int(math.Round(float64(b.Width)*scale)))
	scaledH := max(outH, int(math.Round(float64(b.Height)*scale)))
	if scaledW == b.Width && scaledH == b.Height {
		return Carve(b, outW, outH)
	}

	src := pixels.ToImage(b)
	dst := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return Carve(pixels.FromImage(dst), outW, outH)
}

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

// Threshold maps each pixel independently: luminance above Limit is white.
type Threshold struct {
	Limit int
}

func (Threshold) Name() string { return "threshold" }

func (t Threshold) Dither(b pixels.Buffer) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}

	out := pixels.Buffer{Width: b.Width, Height: b.Height, Pixels: make([]uint32, len(b.Pixels))}
	for i, p := range b.Pixels {
		if pixels.Luminance(p) > t.Limit {
			out.Pixels[i] = pixels.White
		} else {
			out.Pixels[i] = pixels.Black
		}
	}
	return out, nil
}

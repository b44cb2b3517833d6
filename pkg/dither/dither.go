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

// Package dither reduces grayscale buffers to the two tone levels the badge
// can show. Every Ditherer returns a fresh buffer whose pixels are exactly
// pixels.Black or pixels.White; the input is never modified.
package dither

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ZaparooProject/zebadge/pkg/pixels"
)

// DefaultLimit is the gray level separating black from white.
const DefaultLimit = 128

// Ditherer turns a grayscale buffer into a binary one of the same size.
type Ditherer interface {
	Name() string
	Dither(b pixels.Buffer) (pixels.Buffer, error)
}

// quantize maps an error-accumulated level to 0 or 255.
func quantize(v int) int {
	if v < DefaultLimit {
		return 0
	}
	return 255
}

// roundHalfUp rounds .5 towards positive infinity, the way the diffusion
// tables were tuned.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// grayLevels reduces every pixel to its luminance as a working plane that
// may temporarily leave 0..255 while error accumulates. Gray input keeps its
// level.
func grayLevels(b pixels.Buffer) []int {
	levels := make([]int, len(b.Pixels))
	for i, p := range b.Pixels {
		levels[i] = pixels.Luminance(p)
	}
	return levels
}

// fromLevels converts a quantized working plane back to packed colors.
func fromLevels(w, h int, levels []int) pixels.Buffer {
	out := pixels.Buffer{Width: w, Height: h, Pixels: make([]uint32, len(levels))}
	for i, v := range levels {
		if v >= DefaultLimit {
			out.Pixels[i] = pixels.White
		} else {
			out.Pixels[i] = pixels.Black
		}
	}
	return out
}

var registry = map[string]func() Ditherer{
	"threshold":       func() Ditherer { return Threshold{Limit: DefaultLimit} },
	"floyd-steinberg": func() Ditherer { return FloydSteinberg{} },
	"fs":              func() Ditherer { return FloydSteinberg{} },
	"positional":      func() Ditherer { return NewPositional() },
	"pattern":         func() Ditherer { return NewPattern() },
	"atkinson":        func() Ditherer { return Atkinson{} },
	"bayer":           func() Ditherer { return Bayer{Size: DefaultBayerSize} },
}

// ByName resolves a ditherer from its configuration name.
func ByName(name string) (Ditherer, error) {
	factory, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown ditherer %q, expected one of %s", name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Names lists every name accepted by ByName.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

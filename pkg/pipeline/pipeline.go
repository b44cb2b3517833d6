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

// Package pipeline turns arbitrary images into badge-ready binary buffers.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ZaparooProject/zebadge/pkg/carve"
	"github.com/ZaparooProject/zebadge/pkg/codec"
	"github.com/ZaparooProject/zebadge/pkg/dither"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"golang.org/x/sync/errgroup"
)

// Badge display size.
const (
	DefaultWidth  = 296
	DefaultHeight = 128
)

// Options selects the processing steps. A zero Width or Height keeps the
// input size, a nil Ditherer means Floyd-Steinberg.
type Options struct {
	Ditherer dither.Ditherer
	Width    int
	Height   int
	// Carve fits the image by scaling and seam carving instead of plain
	// nearest-neighbour scaling.
	Carve  bool
	Invert bool
}

// DefaultOptions fits images to the badge display.
func DefaultOptions() Options {
	return Options{
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Ditherer: dither.FloydSteinberg{},
	}
}

// Process reduces b to grayscale, resizes, dithers and optionally inverts
// it. The input is not modified.
func Process(b pixels.Buffer, opts Options) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}

	out := pixels.Grayscale(b)
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = b.Width
	}
	if h <= 0 {
		h = b.Height
	}
	if w != b.Width || h != b.Height {
		var err error
		if opts.Carve {
			out, err = carve.ResizeAndCarve(out, w, h)
		} else {
			out, err = pixels.Resize(out, w, h)
		}
		if err != nil {
			return pixels.Buffer{}, fmt.Errorf("failed to resize to %dx%d: %w", w, h, err)
		}
	}

	d := opts.Ditherer
	if d == nil {
		d = dither.FloydSteinberg{}
	}
	out, err := d.Dither(out)
	if err != nil {
		return pixels.Buffer{}, fmt.Errorf("%s dithering failed: %w", d.Name(), err)
	}

	if opts.Invert {
		out = pixels.Invert(out)
	}
	return out, nil
}

// Encode processes b and returns the badge payload for it.
func Encode(b pixels.Buffer, opts Options) (string, error) {
	out, err := Process(b, opts)
	if err != nil {
		return "", err
	}
	return codec.EncodePayload(out)
}

// ProcessAll runs Process over every buffer concurrently. Results keep the
// input order; the first error cancels the rest.
func ProcessAll(ctx context.Context, bufs []pixels.Buffer, opts Options) ([]pixels.Buffer, error) {
	out := make([]pixels.Buffer, len(bufs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, b := range bufs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Process(b, opts)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

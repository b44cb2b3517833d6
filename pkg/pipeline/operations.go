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

package pipeline

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zebadge/pkg/carve"
	"github.com/ZaparooProject/zebadge/pkg/dither"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
)

// Operation kinds accepted in an operation chain.
const (
	OpFloydSteinberg = "FloydSteinberg"
	OpResize         = "Resize"
	OpThreshold      = "Threshold"
	OpInvert         = "Invert"
	OpGrayscale      = "Grayscale"
	OpPositional     = "Positional"
	OpPattern        = "Pattern"
	OpCarve          = "Carve"
)

var ErrUnknownOperation = errors.New("unknown operation")

// Operation is one step of a client supplied chain. Width and Height are used
// by Resize and Carve, Threshold by Threshold. FloydSteinberg accepts them
// for compatibility and dithers at the current size.
type Operation struct {
	Type      string `json:"type" validate:"required,oneof=FloydSteinberg Resize Threshold Invert Grayscale Positional Pattern Carve"`
	Width     int    `json:"width,omitempty" validate:"gte=0,lte=4096"`
	Height    int    `json:"height,omitempty" validate:"gte=0,lte=4096"`
	Threshold int    `json:"threshold,omitempty" validate:"gte=0,lte=255"`
}

// Apply runs the operation on b.
func (op Operation) Apply(b pixels.Buffer) (pixels.Buffer, error) {
	switch op.Type {
	case OpFloydSteinberg:
		return dither.FloydSteinberg{}.Dither(b)
	case OpPositional:
		return dither.NewPositional().Dither(b)
	case OpPattern:
		return dither.NewPattern().Dither(b)
	case OpThreshold:
		return dither.Threshold{Limit: op.Threshold}.Dither(b)
	case OpResize:
		return pixels.Resize(b, op.Width, op.Height)
	case OpCarve:
		return carve.ResizeAndCarve(b, op.Width, op.Height)
	case OpInvert:
		return pixels.Invert(b), nil
	case OpGrayscale:
		return pixels.Grayscale(b), nil
	default:
		return pixels.Buffer{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
}

// Apply runs ops in order.
func Apply(b pixels.Buffer, ops []Operation) (pixels.Buffer, error) {
	if err := b.Validate(); err != nil {
		return pixels.Buffer{}, err
	}
	out := b
	for i, op := range ops {
		var err error
		out, err = op.Apply(out)
		if err != nil {
			return pixels.Buffer{}, fmt.Errorf("operation %d (%s): %w", i, op.Type, err)
		}
	}
	return out, nil
}

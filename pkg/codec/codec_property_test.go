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

package codec

import (
	"bytes"
	"testing"

	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"pgregory.net/rapid"
)

// TestPropertyInflateDeflateRoundTrip verifies compression is lossless for
// any input, including the empty one.
func TestPropertyInflateDeflateRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 2048).Draw(t, "data")

		compressed, err := Deflate(data)
		if err != nil {
			t.Fatalf("deflate: %v", err)
		}
		out, err := Inflate(compressed)
		if err != nil {
			t.Fatalf("inflate: %v", err)
		}
		if !bytes.Equal(data, out) {
			t.Fatalf("round trip mismatch for %d bytes", len(data))
		}
	})
}

// TestPropertyPackUnpackRoundTrip verifies binary buffers survive packing at
// any size, not only multiples of eight.
func TestPropertyPackUnpackRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(0, 24).Draw(t, "width")
		height := rapid.IntRange(0, 24).Draw(t, "height")
		bits := rapid.SliceOfN(rapid.Bool(), width*height, width*height).Draw(t, "bits")

		in := pixels.Blank(width, height, pixels.Black)
		for i, set := range bits {
			if set {
				in.Pixels[i] = pixels.White
			}
		}

		out, err := Unpack(Pack(in), width, height)
		if err != nil {
			t.Fatalf("unpack: %v", err)
		}
		if !out.Equal(in) {
			t.Fatalf("round trip mismatch for %dx%d", width, height)
		}
	})
}

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
	"testing"

	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	b = pixels.Black
	w = pixels.White
)

// helloWorldBestCompression is "Hello, world!" deflated at level 9 by the
// reference zlib.
var helloWorldBestCompression = []byte{
	120, 218, 243, 72, 205, 201, 201, 215, 81, 40, 207, 47, 202, 73, 81, 4, 0, 32, 94, 4, 138,
}

func TestPack_MSBFirst(t *testing.T) {
	t.Parallel()

	in, err := pixels.New(4, 2, []uint32{
		w, b, b, b,
		b, b, b, w,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81}, Pack(in))
}

func TestPack_OnlyFullGreenCounts(t *testing.T) {
	t.Parallel()

	in, err := pixels.New(8, 1, []uint32{
		pixels.RGB(0, 255, 0), pixels.RGB(255, 254, 255), w, b, b, b, b, b,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA0}, Pack(in))
}

func TestPack_PadsTrailingByte(t *testing.T) {
	t.Parallel()

	in := pixels.Blank(10, 1, w)
	assert.Equal(t, []byte{0xFF, 0xC0}, Pack(in))
}

func TestUnpack_RoundTrip(t *testing.T) {
	t.Parallel()

	sizes := []struct{ w, h int }{{4, 2}, {8, 5}, {3, 3}}
	for _, size := range sizes {
		in := pixels.Blank(size.w, size.h, b)
		for i := range in.Pixels {
			if i%3 == 0 {
				in.Pixels[i] = w
			}
		}
		out, err := Unpack(Pack(in), size.w, size.h)
		require.NoError(t, err)
		assert.True(t, out.Equal(in), "%dx%d", size.w, size.h)
	}
}

func TestUnpack_ShortData(t *testing.T) {
	t.Parallel()

	_, err := Unpack([]byte{0xFF}, 8, 2)
	require.ErrorIs(t, err, ErrShortData)
}

func TestUnpack_TruncatedTailIsBlack(t *testing.T) {
	t.Parallel()

	out, err := Unpack([]byte{0xFF}, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{w, w, w, w, w, w, w, w, b, b}, out.Pixels)
}

func TestDeflate_HelloWorld(t *testing.T) {
	t.Parallel()

	data := []byte("Hello, world!")
	compressed, err := Deflate(data)
	require.NoError(t, err)

	// Only the header and the Adler-32 trailer are compared. The deflate body
	// differs from C zlib in block framing alone: klauspost opens with a
	// non-final block (0xf2) and closes with an empty stored block (0x04 0x0c
	// 0x00), where the reference is one final block (0xf3 ... 0x04 0x00). Both
	// inflate to the same bytes.
	require.GreaterOrEqual(t, len(compressed), 6)
	assert.Equal(t, []byte{0x78, 0xDA}, compressed[:2])
	assert.Equal(t, helloWorldBestCompression[len(helloWorldBestCompression)-4:], compressed[len(compressed)-4:])

	inflated, err := Inflate(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, inflated)
}

func TestInflate_ReferenceStream(t *testing.T) {
	t.Parallel()

	out, err := Inflate(helloWorldBestCompression)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", string(out))
}

func TestInflate_Empty(t *testing.T) {
	t.Parallel()

	compressed, err := Deflate(nil)
	require.NoError(t, err)
	out, err := Inflate(compressed)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestInflate_Garbage(t *testing.T) {
	t.Parallel()

	_, err := Inflate([]byte("not a zlib stream"))
	require.Error(t, err)

	var cerr *CompressionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "inflate", cerr.Op)
}

func TestDecodeBase64_Invalid(t *testing.T) {
	t.Parallel()

	_, err := DecodeBase64("***")
	require.Error(t, err)
}

func TestDecodePayload_LegacyReference(t *testing.T) {
	t.Parallel()

	// A 10x10 Floyd-Steinberg render packed by an encoder that dropped the
	// trailing partial byte.
	const payload = "eNpjYHBYIMHHcHCBV/19ABJOBBA="
	packed := []byte{0, 0, 64, 160, 24, 14, 0, 193, 160, 74, 127, 223}

	compressed, err := DecodeBase64(payload)
	require.NoError(t, err)
	raw, err := Inflate(compressed)
	require.NoError(t, err)
	assert.Equal(t, packed, raw)

	out, err := DecodePayload(payload, 10, 10)
	require.NoError(t, err)
	assert.True(t, out.IsBinary())
	assert.Equal(t, append(packed, 0), Pack(out))
}

func TestEncodePayload_RoundTrip(t *testing.T) {
	t.Parallel()

	in := pixels.Blank(10, 10, b)
	for i := range in.Pixels {
		if (i/10+i%10)%2 == 0 {
			in.Pixels[i] = w
		}
	}

	payload, err := EncodePayload(in)
	require.NoError(t, err)
	out, err := DecodePayload(payload, 10, 10)
	require.NoError(t, err)
	assert.True(t, out.Equal(in))
}

func TestEncodePayload_RejectsBrokenBuffer(t *testing.T) {
	t.Parallel()

	_, err := EncodePayload(pixels.Buffer{Width: 3, Height: 3})
	require.ErrorIs(t, err, pixels.ErrSizeMismatch)
}

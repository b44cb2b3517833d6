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

// Package codec converts binary pixel buffers to and from the badge wire
// payload: one bit per pixel, zlib compressed, base64 framed.
package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/klauspost/compress/zlib"
)

// ErrShortData is returned when there are not enough packed bytes for the
// requested dimensions.
var ErrShortData = errors.New("packed data too short")

// CompressionError wraps a failure of the deflate or inflate stage.
type CompressionError struct {
	Err error
	Op  string
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *CompressionError) Unwrap() error {
	return e.Err
}

// Pack stores one bit per pixel, row-major and MSB first. A pixel is set when
// its green channel is 255. The last byte is padded with zero bits.
func Pack(b pixels.Buffer) []byte {
	out := make([]byte, (b.Len()+7)/8)
	for i, p := range b.Pixels {
		if pixels.Green(p) == 255 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Unpack expands packed bits into a width x height buffer. Payloads from
// encoders that dropped the trailing partial byte are accepted; the missing
// pixels decode as black.
func Unpack(data []byte, width, height int) (pixels.Buffer, error) {
	if width < 0 || height < 0 {
		return pixels.Buffer{}, &pixels.SizeMismatchError{Width: width, Height: height, Length: len(data) * 8}
	}
	n := width * height
	if len(data) < n/8 {
		return pixels.Buffer{}, fmt.Errorf("%w: %d bytes for %dx%d", ErrShortData, len(data), width, height)
	}

	out := pixels.Blank(width, height, pixels.Black)
	for i := range n {
		if i/8 >= len(data) {
			break
		}
		if data[i/8]&(0x80>>(i%8)) != 0 {
			out.Pixels[i] = pixels.White
		}
	}
	return out, nil
}

// Deflate compresses data as a zlib stream at best compression.
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, &CompressionError{Op: "deflate", Err: err}
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, &CompressionError{Op: "deflate", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &CompressionError{Op: "deflate", Err: err}
	}
	return buf.Bytes(), nil
}

// Inflate reverses Deflate.
func Inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &CompressionError{Op: "inflate", Err: err}
	}
	defer func() {
		_ = r.Close()
	}()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &CompressionError{Op: "inflate", Err: err}
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// EncodeBase64 frames data with the standard padded alphabet.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 reverses EncodeBase64.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}

// EncodePayload produces the text payload the badge expects for b.
func EncodePayload(b pixels.Buffer) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	compressed, err := Deflate(Pack(b))
	if err != nil {
		return "", err
	}
	return EncodeBase64(compressed), nil
}

// DecodePayload turns a payload back into a width x height binary buffer.
func DecodePayload(s string, width, height int) (pixels.Buffer, error) {
	compressed, err := DecodeBase64(s)
	if err != nil {
		return pixels.Buffer{}, err
	}
	packed, err := Inflate(compressed)
	if err != nil {
		return pixels.Buffer{}, err
	}
	return Unpack(packed, width, height)
}

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

package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{
			name:     "no user",
			input:    "/dev/serial/by-id/usb-Badger_2040-if00",
			expected: "/dev/serial/by-id/usb-Badger_2040-if00",
		},
		{
			name:     "linux home",
			input:    "/home/sam/.config/zebadge/zebadge.toml",
			expected: "/home/<user>/.config/zebadge/zebadge.toml",
		},
		{
			name:     "linux home uppercase",
			input:    "/Home/Sam/pictures/cat.png",
			expected: "/home/<user>/pictures/cat.png",
		},
		{
			name:     "macos users",
			input:    "/Users/sam/Library/Application Support/zebadge",
			expected: "/Users/<user>/Library/Application Support/zebadge",
		},
		{
			name:     "windows",
			input:    "D:\\Users\\sam\\Pictures\\cat.png",
			expected: "C:\\Users\\<user>\\Pictures\\cat.png",
		},
		{
			name:     "several paths",
			input:    "copying /home/alice/a.png to /home/bob/b.png",
			expected: "copying /home/<user>/a.png to /home/<user>/b.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestSanitizeEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "sams-laptop",
		Message:    "failed to load /home/sam/cat.png",
		Extra:      map[string]any{"path": "/Users/sam/cat.png", "bytes": 12},
		Exception: []sentry.Exception{
			{Stacktrace: nil},
			{Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{{
				AbsPath:  "/home/sam/src/zebadge/pkg/badge/manager.go",
				Filename: "pkg/badge/manager.go",
			}}}},
		},
	}

	got := sanitizeEvent(event)
	require.NotNil(t, got)
	assert.Empty(t, got.ServerName)
	assert.Equal(t, "failed to load /home/<user>/cat.png", got.Message)
	assert.Equal(t, "/Users/<user>/cat.png", got.Extra["path"])
	assert.Equal(t, 12, got.Extra["bytes"])
	frame := got.Exception[1].Stacktrace.Frames[0]
	assert.Equal(t, "/home/<user>/src/zebadge/pkg/badge/manager.go", frame.AbsPath)
	assert.Equal(t, "pkg/badge/manager.go", frame.Filename)
}

func TestInit_EmptyDSN(t *testing.T) {
	t.Parallel()

	require.NoError(t, Init("", "test"))
	assert.False(t, Enabled())
	Close()
}

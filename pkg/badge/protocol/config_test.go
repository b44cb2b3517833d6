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

package protocol

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const sampleConfig = "wifi_attached=False user.uuid=4d3f6ca7-d256-4f84-a6c6-099a26055d4c " +
	"user.description=Edward$SPACE#Bernard,$SPACE#a$SPACE#veteran " +
	"user.name=Edward$SPACE#Bernard developer_mode=True " +
	"user.iconB64=AQIDBA=="

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expected any
		literal  string
	}{
		{literal: `"John$SPACE#Doe"`, expected: "John Doe"},
		{literal: `'single'`, expected: "single"},
		{literal: `""`, expected: ""},
		{literal: "None", expected: nil},
		{literal: "True", expected: true},
		{literal: "False", expected: false},
		{literal: "42", expected: 42},
		{literal: "-7", expected: -7},
		{literal: "1.5", expected: 1.5},
		{literal: "nan", expected: "nan"},
		{literal: "plain$SPACE#text", expected: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParseValue(tt.literal))
		})
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "None", FormatValue(nil))
	assert.Equal(t, `"John$SPACE#Doe"`, FormatValue("John Doe"))
	assert.Equal(t, "True", FormatValue(true))
	assert.Equal(t, "False", FormatValue(false))
	assert.Equal(t, "3", FormatValue(3))
	assert.Equal(t, "2.0", FormatValue(2.0))
	assert.Equal(t, "0.25", FormatValue(float32(0.25)))
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	got := ParseConfig("wifi_attached=True   brightness=3 user.name=\"John$SPACE#Doe\" junk ratio=0.5 missing=None")
	assert.Equal(t, map[string]any{
		"wifi_attached": true,
		"brightness":    3,
		"user.name":     "John Doe",
		"ratio":         0.5,
		"missing":       nil,
	}, got)
}

func TestParseConfig_ValueContainsEquals(t *testing.T) {
	t.Parallel()

	got := ParseConfig("user.iconB64=eNpjYGBg==")
	assert.Equal(t, "eNpjYGBg==", got["user.iconB64"])
}

func TestEncodeConfig_SortedKeys(t *testing.T) {
	t.Parallel()

	encoded := EncodeConfig(map[string]any{
		"user.name":      "John Doe",
		"developer_mode": true,
		"brightness":     3,
		"note":           nil,
	})
	assert.Equal(t, `brightness=3 developer_mode=True note=None user.name="John$SPACE#Doe"`, encoded)
	assert.Empty(t, EncodeConfig(nil))
}

func TestParseBadgeConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseBadgeConfig(sampleConfig)
	require.NoError(t, err)
	require.NotNil(t, cfg.User)
	assert.Equal(t, uuid.MustParse("4d3f6ca7-d256-4f84-a6c6-099a26055d4c"), cfg.User.ID)
	assert.Equal(t, "Edward Bernard", cfg.User.Name)
	assert.Equal(t, "Edward Bernard, a veteran", cfg.User.Description)
	assert.Equal(t, []byte{1, 2, 3, 4}, cfg.User.ProfilePhoto)
	assert.False(t, cfg.WiFiAttached)
	assert.True(t, cfg.DeveloperMode)
}

func TestParseBadgeConfig_MissingUser(t *testing.T) {
	t.Parallel()

	cfg, err := ParseBadgeConfig("wifi_attached=True developer_mode=False")
	require.NoError(t, err)
	assert.Nil(t, cfg.User)
	assert.True(t, cfg.WiFiAttached)
	assert.False(t, cfg.DeveloperMode)
}

func TestParseBadgeConfig_PartialUser(t *testing.T) {
	t.Parallel()

	cfg, err := ParseBadgeConfig("user.uuid=4d3f6ca7-d256-4f84-a6c6-099a26055d4c user.name=John$SPACE#Doe wifi_attached=True")
	require.NoError(t, err)
	assert.Nil(t, cfg.User)
	assert.True(t, cfg.WiFiAttached)
}

func TestParseBadgeConfig_InvalidUUID(t *testing.T) {
	t.Parallel()

	_, err := ParseBadgeConfig("user.uuid=invalid-uuid user.name=John$SPACE#Doe user.description=Test user.iconB64=AQID")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid-uuid")
}

func TestParseBadgeConfig_MultipleSpaces(t *testing.T) {
	t.Parallel()

	cfg, err := ParseBadgeConfig("wifi_attached=True     developer_mode=True    user.uuid=4d3f6ca7-d256-4f84-a6c6-099a26055d4c")
	require.NoError(t, err)
	assert.Nil(t, cfg.User)
	assert.True(t, cfg.WiFiAttached)
	assert.True(t, cfg.DeveloperMode)
}

// TestPropertyConfigRoundTrip verifies string, int and bool values survive
// encoding and parsing.
func TestPropertyConfigRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		values := make(map[string]any)
		n := rapid.IntRange(0, 6).Draw(t, "n")
		for i := range n {
			key := rapid.StringMatching(`[a-z][a-z_.]{0,10}`).Draw(t, "key")
			switch i % 3 {
			case 0:
				values[key] = rapid.StringMatching(`[A-Za-z][A-Za-z ,]{0,12}`).Draw(t, "string")
			case 1:
				values[key] = rapid.IntRange(-1000, 1000).Draw(t, "int")
			default:
				values[key] = rapid.Bool().Draw(t, "bool")
			}
		}

		parsed := ParseConfig(EncodeConfig(values))
		if len(parsed) != len(values) {
			t.Fatalf("expected %d keys, got %d", len(values), len(parsed))
		}
		for k, v := range values {
			if parsed[k] != v {
				t.Fatalf("key %q: expected %#v, got %#v", k, v, parsed[k])
			}
		}
	})
}

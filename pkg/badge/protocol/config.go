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
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SpaceEscape stands in for a space inside a configuration value.
const SpaceEscape = "$SPACE#"

// Well known configuration keys.
const (
	KeyWiFiAttached    = "wifi_attached"
	KeyDeveloperMode   = "developer_mode"
	KeyUserUUID        = "user.uuid"
	KeyUserName        = "user.name"
	KeyUserDescription = "user.description"
	KeyUserIcon        = "user.iconB64"
)

func escapeSpaces(s string) string   { return strings.ReplaceAll(s, " ", SpaceEscape) }
func unescapeSpaces(s string) string { return strings.ReplaceAll(s, SpaceEscape, " ") }

// rawPairs splits a configuration line into key=value pairs, skipping
// anything without an equals sign. Later duplicates win.
func rawPairs(response string) map[string]string {
	pairs := make(map[string]string)
	for _, field := range strings.Fields(response) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			continue
		}
		pairs[key] = value
	}
	return pairs
}

// ParseValue converts a python literal into a Go value: quoted strings,
// None (nil), int, float64, True and False. Anything else is returned as a
// string with escaped spaces restored.
func ParseValue(literal string) any {
	if q := unquote(literal); q != literal {
		return unescapeSpaces(q)
	}
	switch literal {
	case "None":
		return nil
	case "True":
		return true
	case "False":
		return false
	}
	if i, err := strconv.Atoi(literal); err == nil {
		return i
	}
	if strings.ContainsAny(literal, "0123456789") {
		if f, err := strconv.ParseFloat(literal, 64); err == nil {
			return f
		}
	}
	return unescapeSpaces(literal)
}

// FormatValue renders v as the python literal the firmware expects.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return `"` + escapeSpaces(val) + `"`
	case bool:
		if val {
			return "True"
		}
		return "False"
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	default:
		return escapeSpaces(fmt.Sprint(val))
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// ParseConfig decodes a config_list response into typed values.
func ParseConfig(response string) map[string]any {
	pairs := rawPairs(response)
	out := make(map[string]any, len(pairs))
	for k, v := range pairs {
		out[k] = ParseValue(v)
	}
	return out
}

// EncodeConfig is the inverse of ParseConfig. Keys are sorted so the same map
// always produces the same line.
func EncodeConfig(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+FormatValue(values[k]))
	}
	return strings.Join(parts, " ")
}

// UserInfo is the owner profile stored on the badge.
type UserInfo struct {
	Name         string
	Description  string
	ProfilePhoto []byte
	ID           uuid.UUID
}

// BadgeConfig is the typed view of the settings the companion tools use.
// User is nil unless every user field is present.
type BadgeConfig struct {
	User          *UserInfo
	WiFiAttached  bool
	DeveloperMode bool
}

// ParseBadgeConfig reads the well known keys of a config_list response.
func ParseBadgeConfig(response string) (BadgeConfig, error) {
	pairs := rawPairs(response)
	cfg := BadgeConfig{
		WiFiAttached:  parseBool(pairs[KeyWiFiAttached]),
		DeveloperMode: parseBool(pairs[KeyDeveloperMode]),
	}

	rawID, hasID := pairs[KeyUserUUID]
	var id uuid.UUID
	if hasID {
		var err error
		id, err = uuid.Parse(unquote(rawID))
		if err != nil {
			return BadgeConfig{}, fmt.Errorf("invalid %s %q: %w", KeyUserUUID, rawID, err)
		}
	}

	rawIcon, hasIcon := pairs[KeyUserIcon]
	var icon []byte
	if hasIcon {
		var err error
		icon, err = base64.StdEncoding.DecodeString(unquote(rawIcon))
		if err != nil {
			return BadgeConfig{}, fmt.Errorf("invalid %s: %w", KeyUserIcon, err)
		}
	}

	name, hasName := pairs[KeyUserName]
	desc, hasDesc := pairs[KeyUserDescription]
	if hasID && hasIcon && hasName && hasDesc {
		cfg.User = &UserInfo{
			ID:           id,
			Name:         unescapeSpaces(unquote(name)),
			Description:  unescapeSpaces(unquote(desc)),
			ProfilePhoto: icon,
		}
	}
	return cfg, nil
}

func parseBool(s string) bool {
	return strings.EqualFold(unquote(s), "true")
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

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

import "strings"

// Type names a badge command.
type Type string

// Command types understood by the badge firmware.
const (
	TypePreview      Type = "preview"
	TypeStore        Type = "store"
	TypeShow         Type = "show"
	TypeList         Type = "list"
	TypeDelete       Type = "delete"
	TypeConfig       Type = "config"
	TypeConfigList   Type = "config_list"
	TypeConfigUpdate Type = "config_update"
	TypeConfigSave   Type = "config_save"
	TypeHelp         Type = "help"
	TypeReload       Type = "reload"
	TypeExit         Type = "exit"
	TypeTerminal     Type = "terminal"
	TypeRefresh      Type = "refresh"
)

const (
	// Separator joins the parts of a command line.
	Separator = ":"
	// DebugPrefix asks the firmware to echo diagnostics for a command.
	DebugPrefix = "debug" + Separator
)

var knownTypes = map[Type]struct{}{
	TypePreview:      {},
	TypeStore:        {},
	TypeShow:         {},
	TypeList:         {},
	TypeDelete:       {},
	TypeConfig:       {},
	TypeConfigList:   {},
	TypeConfigUpdate: {},
	TypeConfigSave:   {},
	TypeHelp:         {},
	TypeReload:       {},
	TypeExit:         {},
	TypeTerminal:     {},
	TypeRefresh:      {},
}

// Known reports whether t is a command the firmware implements.
func (t Type) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// Command is one line sent to the badge.
type Command struct {
	Type    Type
	Meta    string
	Payload string
	Debug   bool
}

// String renders the command as "[debug:]<type>:<meta>:<payload>". No line
// terminator is appended.
func (c Command) String() string {
	var sb strings.Builder
	sb.Grow(len(DebugPrefix) + len(c.Type) + len(c.Meta) + len(c.Payload) + 2)
	if c.Debug {
		sb.WriteString(DebugPrefix)
	}
	sb.WriteString(string(c.Type))
	sb.WriteString(Separator)
	sb.WriteString(c.Meta)
	sb.WriteString(Separator)
	sb.WriteString(c.Payload)
	return sb.String()
}

// Bytes returns the wire form of the command.
func (c Command) Bytes() []byte {
	return []byte(c.String())
}

// WithDebug returns a copy with the debug flag set to debug.
func (c Command) WithDebug(debug bool) Command {
	c.Debug = debug
	return c
}

// Preview shows payload immediately without storing it.
func Preview(payload string) Command {
	return Command{Type: TypePreview, Payload: payload}
}

// Store saves payload on the badge under name.
func Store(name, payload string) Command {
	return Command{Type: TypeStore, Meta: name, Payload: payload}
}

// Show displays the stored image name.
func Show(name string) Command {
	return Command{Type: TypeShow, Meta: name}
}

// List asks for the names of stored images.
func List() Command {
	return Command{Type: TypeList}
}

// Delete removes the stored image name.
func Delete(name string) Command {
	return Command{Type: TypeDelete, Meta: name}
}

// ConfigList asks for the configuration as key=value pairs.
func ConfigList() Command {
	return Command{Type: TypeConfigList}
}

// ConfigUpdate applies the encoded key=value pairs without persisting them.
func ConfigUpdate(encoded string) Command {
	return Command{Type: TypeConfigUpdate, Payload: encoded}
}

// ConfigSave persists the active configuration.
func ConfigSave() Command {
	return Command{Type: TypeConfigSave}
}

func Help() Command     { return Command{Type: TypeHelp} }
func Reload() Command   { return Command{Type: TypeReload} }
func Exit() Command     { return Command{Type: TypeExit} }
func Terminal() Command { return Command{Type: TypeTerminal} }
func Refresh() Command  { return Command{Type: TypeRefresh} }

// ParseList splits a list response into stored names. Empty entries and
// surrounding whitespace are dropped.
func ParseList(response string) []string {
	parts := strings.Split(response, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParseRaw reads a command typed by a user as "<type> [meta] [payload]".
// Anything after the second space belongs to the payload.
func ParseRaw(s string) Command {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 3)
	cmd := Command{Type: Type(parts[0])}
	if len(parts) > 1 {
		cmd.Meta = parts[1]
	}
	if len(parts) > 2 {
		cmd.Payload = parts[2]
	}
	return cmd
}

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

package helpers

import (
	"path/filepath"

	"github.com/ZaparooProject/zebadge/pkg/config"
	"github.com/adrg/xdg"
)

// ConfigDir is where zebadge.toml lives, e.g. ~/.config/zebadge.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.CfgDir)
}

// LogDir holds the rotating log file, e.g. ~/.local/state/zebadge/logs.
func LogDir() string {
	return filepath.Join(xdg.StateHome, config.CfgDir, "logs")
}

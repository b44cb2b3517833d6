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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ZaparooProject/zebadge/pkg/config"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfgDir := filepath.Join(root, "config", "nested")
	logDir := filepath.Join(root, "logs", "nested")

	require.NoError(t, EnsureDirectories(cfgDir, logDir))
	require.NoError(t, EnsureDirectories(cfgDir, logDir), "existing directories are fine")

	for _, dir := range []string{cfgDir, logDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		if runtime.GOOS != "windows" {
			assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
		}
	}
}

func TestEnsureDirectories_Invalid(t *testing.T) {
	t.Parallel()

	err := EnsureDirectories(t.TempDir(), "/proc/invalid\x00path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}

func TestInitLogging(t *testing.T) {
	// modifies the global logger, not parallel
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	logDir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	require.NoError(t, InitLogging(logDir, true, []io.Writer{&buf}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Debug().Str("device", "/dev/ttyACM0").Msg("badge: discovered")
	assert.Contains(t, buf.String(), "badge: discovered")
	assert.Contains(t, buf.String(), "/dev/ttyACM0")

	data, err := os.ReadFile(filepath.Join(logDir, config.LogFile))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "badge: discovered"))

	assert.NotEqual(t, os.Stderr, LogWriter())

	require.NoError(t, InitLogging(logDir, false, nil))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestDirs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join(xdg.ConfigHome, config.CfgDir), ConfigDir())
	assert.True(t, strings.HasPrefix(LogDir(), xdg.StateHome))
	assert.Equal(t, "logs", filepath.Base(LogDir()))
}

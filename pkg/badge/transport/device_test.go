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

package transport_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zebadge/pkg/badge/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enumerate(devices ...transport.Device) transport.Enumerator {
	return transport.EnumeratorFunc(func() ([]transport.Device, error) {
		return devices, nil
	})
}

func TestFindDevice(t *testing.T) {
	t.Parallel()

	other := transport.Device{Path: "/dev/ttyUSB0", Product: "Other Device"}
	d, err := transport.FindDevice(
		enumerate(other, badgeDevice),
		transport.ProductNameMatcher{Name: transport.DefaultProductName},
	)
	require.NoError(t, err)
	assert.Equal(t, badgeDevice, d)
}

func TestFindDevice_NotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contains []string
		devices  []transport.Device
	}{
		{
			name:     "other device",
			devices:  []transport.Device{{Path: "/dev/ttyUSB0", Product: "Other Device"}},
			contains: []string{"product name 'Badger 2040'", "found product(s): Other Device"},
		},
		{
			name: "unnamed devices",
			devices: []transport.Device{
				{Path: "/dev/ttyS0"},
				{Path: "/dev/ttyUSB0", Product: "CP2102"},
			},
			contains: []string{"found product(s): <none>, CP2102"},
		},
		{
			name:     "nothing attached",
			contains: []string{"no serial devices connected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := transport.FindDevice(
				enumerate(tt.devices...),
				transport.ProductNameMatcher{Name: transport.DefaultProductName},
			)
			var notFound *transport.DeviceNotFoundError
			require.ErrorAs(t, err, &notFound)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestFindDevice_EnumeratorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := transport.FindDevice(
		transport.EnumeratorFunc(func() ([]transport.Device, error) { return nil, boom }),
		transport.ProductNameMatcher{Name: transport.DefaultProductName},
	)
	require.ErrorIs(t, err, boom)
}

func TestUSBIDMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		matcher transport.USBIDMatcher
		device  transport.Device
		match   bool
	}{
		{"exact", transport.USBIDMatcher{VID: "2E8A", PID: "0005"}, badgeDevice, true},
		{"any product", transport.USBIDMatcher{VID: "2e8a"}, badgeDevice, true},
		{"wrong pid", transport.USBIDMatcher{VID: "2e8a", PID: "000a"}, badgeDevice, false},
		{"wrong vid", transport.USBIDMatcher{VID: "239a"}, badgeDevice, false},
		{"not usb", transport.USBIDMatcher{VID: "2e8a"}, transport.Device{VID: "2e8a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.match, tt.matcher.Match(tt.device))
		})
	}

	assert.Equal(t, "usb id 2e8a:0005", transport.USBIDMatcher{VID: "2E8A", PID: "0005"}.Expected())
	assert.Equal(t, "usb vendor 2e8a", transport.USBIDMatcher{VID: "2e8a"}.Expected())
}

func TestAnyMatcher(t *testing.T) {
	t.Parallel()

	m := transport.AnyMatcher{
		transport.ProductNameMatcher{Name: "Badger 2040 W"},
		transport.USBIDMatcher{VID: "2e8a"},
	}
	assert.True(t, m.Match(badgeDevice))
	assert.False(t, m.Match(transport.Device{Product: "Other Device"}))
	assert.Equal(t, "product name 'Badger 2040 W' or usb vendor 2e8a", m.Expected())
}

func TestFileAccessBroker(t *testing.T) {
	t.Parallel()

	node := filepath.Join(t.TempDir(), "ttyACM0")
	require.NoError(t, os.WriteFile(node, nil, 0o600))

	broker := transport.NewFileAccessBroker()
	d := transport.Device{Path: node}
	assert.True(t, broker.HasPermission(d))
	assert.False(t, broker.HasPermission(transport.Device{Path: filepath.Join(t.TempDir(), "missing")}))

	var events []transport.PermissionEvent
	unregister := broker.Register(transport.ActionUSBPermission, func(ev transport.PermissionEvent) {
		events = append(events, ev)
	})
	otherUnregister := broker.Register("OTHER", func(transport.PermissionEvent) {
		t.Error("listener for another action must not be called")
	})
	assert.Equal(t, 2, broker.Listeners())

	err := broker.RequestPermission(transport.PermissionRequest{
		Action:      transport.ActionUSBPermission,
		RequestCode: transport.ActionUSBPermissionRequestCode,
		Device:      d,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Granted)
	require.NotNil(t, events[0].Device)
	assert.Equal(t, node, events[0].Device.Path)

	unregister()
	unregister()
	otherUnregister()
	assert.Equal(t, 0, broker.Listeners())
}

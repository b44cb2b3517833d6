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

package discovery

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfig struct {
	name    string
	port    int
	enabled bool
}

func (c fakeConfig) DiscoveryEnabled() bool        { return c.enabled }
func (c fakeConfig) DiscoveryInstanceName() string { return c.name }
func (c fakeConfig) APIPort() int                  { return c.port }

func TestServiceType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "_zebadge._tcp", ServiceType)
}

func TestFilterInterfaces(t *testing.T) {
	t.Parallel()

	upMulti := net.FlagUp | net.FlagMulticast
	ifaces := []net.Interface{
		{Name: "eth0", Flags: upMulti},
		{Name: "wlan0", Flags: upMulti | net.FlagBroadcast},
		{Name: "lo", Flags: upMulti | net.FlagLoopback},
		{Name: "eth1", Flags: net.FlagMulticast},
		{Name: "ppp0", Flags: net.FlagUp},
		{Name: "docker0", Flags: upMulti},
		{Name: "veth12ab", Flags: upMulti},
		{Name: "WG0", Flags: upMulti},
	}

	got := filterInterfaces(ifaces)
	names := make([]string, len(got))
	for i, iface := range got {
		names[i] = iface.Name
	}
	assert.Equal(t, []string{"eth0", "wlan0"}, names)
	assert.Empty(t, filterInterfaces(nil))
}

func TestIsVirtualInterface(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"docker0", "br-1234", "virbr0", "lxcbr0", "cni0", "flannel.1", "tunl0", "wg0"} {
		assert.True(t, isVirtualInterface(name), name)
	}
	for _, name := range []string{"eth0", "enp3s0", "wlan0", "en0"} {
		assert.False(t, isVirtualInterface(name), name)
	}
}

func TestResolveInstanceName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hostErr  error
		name     string
		cfgName  string
		hostname string
		want     string
	}{
		{name: "configured", cfgName: "hall badge", hostname: "pi", want: "hall badge"},
		{name: "blank configured", cfgName: "  ", hostname: "pi", want: "pi"},
		{name: "hostname", hostname: "pi", want: "pi"},
		{name: "hostname error", hostErr: errors.New("no hostname"), want: "zebadge"},
		{name: "empty hostname", want: "zebadge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New(fakeConfig{name: tt.cfgName})
			s.hostname = func() (string, error) { return tt.hostname, tt.hostErr }
			assert.Equal(t, tt.want, s.resolveInstanceName())
		})
	}
}

func TestStart_Disabled(t *testing.T) {
	t.Parallel()

	s := New(fakeConfig{port: 8000})
	require.NoError(t, s.Start())
	assert.Empty(t, s.InstanceName())
	assert.Nil(t, s.server)
}

func TestStart_InvalidPort(t *testing.T) {
	t.Parallel()

	s := New(fakeConfig{enabled: true})
	require.Error(t, s.Start())
}

func TestStopIdempotent(t *testing.T) {
	t.Parallel()

	s := New(fakeConfig{})
	s.Stop()
	s.Stop()
	assert.True(t, s.stopped)
	assert.Nil(t, s.server)
}

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
	"sync"
	"testing"

	"github.com/ZaparooProject/zebadge/pkg/badge/transport"
	"github.com/stretchr/testify/assert"
)

func TestIsValidTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from  transport.State
		to    transport.State
		valid bool
	}{
		{transport.StateDisconnected, transport.StateDiscovered, true},
		{transport.StateDisconnected, transport.StateReady, false},
		{transport.StateDisconnected, transport.StateBusy, false},
		{transport.StateDiscovered, transport.StatePermissionPending, true},
		{transport.StateDiscovered, transport.StateReady, true},
		{transport.StateDiscovered, transport.StateDisconnected, true},
		{transport.StateDiscovered, transport.StateBusy, false},
		{transport.StatePermissionPending, transport.StateReady, true},
		{transport.StatePermissionPending, transport.StateDisconnected, true},
		{transport.StatePermissionPending, transport.StateBusy, false},
		{transport.StateReady, transport.StateBusy, true},
		{transport.StateReady, transport.StateDiscovered, true},
		{transport.StateReady, transport.StateDisconnected, true},
		{transport.StateBusy, transport.StateReady, true},
		{transport.StateBusy, transport.StateDisconnected, true},
		{transport.StateBusy, transport.StateDiscovered, false},
		{transport.StateReady, transport.StateClosed, true},
		{transport.StateBusy, transport.StateClosed, true},
		{transport.StateClosed, transport.StateDisconnected, false},
		{transport.StateClosed, transport.StateReady, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, transport.IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Disconnected", transport.StateDisconnected.String())
	assert.Equal(t, "PermissionPending", transport.StatePermissionPending.String())
	assert.Equal(t, "Closed", transport.StateClosed.String())
	assert.Equal(t, "Unknown", transport.State(42).String())
}

func TestStateManager(t *testing.T) {
	t.Parallel()

	sm := transport.NewStateManager()
	assert.Equal(t, transport.StateDisconnected, sm.GetState())

	assert.False(t, sm.SetState(transport.StateBusy))
	assert.Equal(t, transport.StateDisconnected, sm.GetState())

	assert.True(t, sm.SetState(transport.StateDiscovered))
	assert.True(t, sm.SetState(transport.StateReady))
	assert.True(t, sm.SetState(transport.StateBusy))
	assert.True(t, sm.SetState(transport.StateClosed))
	assert.False(t, sm.SetState(transport.StateReady))

	sm.ForceState(transport.StateDisconnected)
	assert.Equal(t, transport.StateDisconnected, sm.GetState())
}

func TestStateManager_ConcurrentSetState(t *testing.T) {
	t.Parallel()

	sm := transport.NewStateManager()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sm.SetState(transport.StateDiscovered) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Discovered -> Discovered is not a transition, so exactly one goroutine wins
	assert.Equal(t, 1, wins)
	assert.Equal(t, transport.StateDiscovered, sm.GetState())
}

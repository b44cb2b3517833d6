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

package transport

import "sync/atomic"

// State is where the transport is in its connection lifecycle.
type State int32

const (
	// StateDisconnected means no badge has been located yet, or the last
	// operation lost it.
	StateDisconnected State = iota
	// StateDiscovered means a matching badge was found on the bus.
	StateDiscovered
	// StatePermissionPending means an access request is outstanding.
	StatePermissionPending
	// StateReady means the badge can be opened.
	StateReady
	// StateBusy means a port is open and I/O is in flight.
	StateBusy
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateDiscovered:
		return "Discovered"
	case StatePermissionPending:
		return "PermissionPending"
	case StateReady:
		return "Ready"
	case StateBusy:
		return "Busy"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// IsValidTransition reports whether moving from one state to another is
// allowed. Every live state may fall back to Disconnected on failure or move
// to Closed on shutdown.
func IsValidTransition(from, to State) bool {
	if from == StateClosed {
		return false
	}
	if to == StateClosed {
		return true
	}

	switch from {
	case StateDisconnected:
		return to == StateDiscovered
	case StateDiscovered:
		return to == StatePermissionPending || to == StateReady || to == StateDisconnected
	case StatePermissionPending:
		return to == StateReady || to == StateDisconnected
	case StateReady:
		// rediscovery before each operation, the device may have been replugged
		return to == StateBusy || to == StateDiscovered || to == StateDisconnected
	case StateBusy:
		return to == StateReady || to == StateDisconnected
	default:
		return false
	}
}

// StateManager holds a State that can be changed from several goroutines.
type StateManager struct {
	state atomic.Int32
}

// NewStateManager returns a manager in StateDisconnected.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// GetState returns the current state.
func (sm *StateManager) GetState() State {
	return State(sm.state.Load())
}

// SetState moves to newState if the transition is valid.
func (sm *StateManager) SetState(newState State) bool {
	for {
		current := sm.state.Load()
		if !IsValidTransition(State(current), newState) {
			return false
		}
		if sm.state.CompareAndSwap(current, int32(newState)) {
			return true
		}
	}
}

// ForceState sets the state without validation.
func (sm *StateManager) ForceState(newState State) {
	sm.state.Store(int32(newState))
}

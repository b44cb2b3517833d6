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

package mocks

import (
	"github.com/ZaparooProject/zebadge/pkg/badge/transport"
	"github.com/ZaparooProject/zebadge/pkg/helpers/syncutil"
	"github.com/stretchr/testify/mock"
)

// MockPermissionBroker is a testify mock of transport.PermissionBroker that
// also keeps real listener bookkeeping so tests can fire events and check
// deregistration.
type MockPermissionBroker struct {
	mock.Mock
	listeners map[int]transport.PermissionListener
	next      int
	mu        syncutil.Mutex
}

func NewMockPermissionBroker() *MockPermissionBroker {
	return &MockPermissionBroker{listeners: make(map[int]transport.PermissionListener)}
}

func (m *MockPermissionBroker) HasPermission(d transport.Device) bool {
	args := m.Called(d)
	return args.Bool(0)
}

func (m *MockPermissionBroker) Register(action string, listener transport.PermissionListener) func() {
	m.Called(action)

	m.mu.Lock()
	id := m.next
	m.next++
	m.listeners[id] = listener
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *MockPermissionBroker) RequestPermission(req transport.PermissionRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

// Fire delivers ev to every registered listener.
func (m *MockPermissionBroker) Fire(ev transport.PermissionEvent) {
	m.mu.Lock()
	targets := make([]transport.PermissionListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		targets = append(targets, l)
	}
	m.mu.Unlock()

	for _, l := range targets {
		l(ev)
	}
}

// Listeners returns how many listeners are still registered.
func (m *MockPermissionBroker) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

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

import (
	"os"

	"github.com/ZaparooProject/zebadge/pkg/helpers/syncutil"
)

// FileAccessBroker answers permission requests from the access rights of the
// device node. There is nothing to prompt for on a desktop, so a request is
// answered immediately from the current rights.
type FileAccessBroker struct {
	listeners map[uint64]registration
	check     func(path string) bool
	next      uint64
	mu        syncutil.Mutex
}

type registration struct {
	listener PermissionListener
	action   string
}

// NewFileAccessBroker returns a broker backed by the OS access check.
func NewFileAccessBroker() *FileAccessBroker {
	return &FileAccessBroker{
		listeners: make(map[uint64]registration),
		check:     canReadWrite,
	}
}

func (b *FileAccessBroker) HasPermission(d Device) bool {
	return b.check(d.Path)
}

func (b *FileAccessBroker) Register(action string, listener PermissionListener) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = registration{action: action, listener: listener}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Listeners returns how many listeners are registered.
func (b *FileAccessBroker) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *FileAccessBroker) RequestPermission(req PermissionRequest) error {
	ev := PermissionEvent{Action: req.Action, Granted: b.check(req.Device.Path)}
	if _, err := os.Stat(req.Device.Path); err == nil {
		d := req.Device
		ev.Device = &d
	}

	b.mu.Lock()
	targets := make([]PermissionListener, 0, len(b.listeners))
	for _, r := range b.listeners {
		if r.action == req.Action {
			targets = append(targets, r.listener)
		}
	}
	b.mu.Unlock()

	for _, l := range targets {
		l(ev)
	}
	return nil
}

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
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Permission request identity understood by the host's USB access service.
const (
	ActionUSBPermission            = "ACTION_USB_PERMISSION"
	ActionUSBPermissionRequestCode = 4711
)

var (
	// ErrPermissionDenied is returned when the host refuses access to the badge.
	ErrPermissionDenied = errors.New("could not request permission to access the badge")
	// ErrNoBoundDevice is returned when access was granted without a device.
	ErrNoBoundDevice = errors.New("permission granted but no device bound")
)

// PermissionRequest asks the host for access to Device.
type PermissionRequest struct {
	Action      string
	Device      Device
	RequestCode int
}

// PermissionEvent is the host's answer to a PermissionRequest. Device is the
// device the grant was bound to, if any.
type PermissionEvent struct {
	Device  *Device
	Action  string
	Granted bool
}

// PermissionListener receives permission events for a registered action.
type PermissionListener func(PermissionEvent)

// PermissionBroker is the host's asynchronous access control.
type PermissionBroker interface {
	HasPermission(d Device) bool
	// Register subscribes listener to events for action. The returned function
	// removes the subscription and is safe to call more than once.
	Register(action string, listener PermissionListener) (unregister func())
	RequestPermission(req PermissionRequest) error
}

// awaitPermission requests access to d and blocks until the broker answers or
// ctx ends. The listener is removed on every path out of this function.
func awaitPermission(ctx context.Context, broker PermissionBroker, d Device) error {
	events := make(chan PermissionEvent, 1)
	unregister := broker.Register(ActionUSBPermission, func(ev PermissionEvent) {
		if ev.Action != ActionUSBPermission {
			return
		}
		select {
		case events <- ev:
		default:
		}
	})
	defer unregister()

	err := broker.RequestPermission(PermissionRequest{
		Action:      ActionUSBPermission,
		RequestCode: ActionUSBPermissionRequestCode,
		Device:      d,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	select {
	case ev := <-events:
		if !ev.Granted {
			log.Error().Str("device", d.Path).Msg("badge: permission denied")
			return ErrPermissionDenied
		}
		if ev.Device == nil {
			return ErrNoBoundDevice
		}
		log.Debug().Str("device", ev.Device.Path).Msg("badge: permission granted")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for badge permission: %w", ctx.Err())
	}
}

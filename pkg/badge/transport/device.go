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
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// DefaultProductName is the USB product string of the badge.
const DefaultProductName = "Badger 2040"

// unnamedProduct stands in for devices that report no product string.
const unnamedProduct = "<none>"

// Device describes one serial endpoint found on the bus.
type Device struct {
	// Path is what gets passed to the port factory, e.g. /dev/ttyACM0 or COM3.
	Path         string
	Product      string
	VID          string
	PID          string
	SerialNumber string
	IsUSB        bool
}

// DisplayName is the product string, or <none> for unnamed devices.
func (d Device) DisplayName() string {
	if d.Product == "" {
		return unnamedProduct
	}
	return d.Product
}

// Enumerator lists the serial devices currently attached.
type Enumerator interface {
	Devices() ([]Device, error)
}

// EnumeratorFunc adapts a function to Enumerator.
type EnumeratorFunc func() ([]Device, error)

func (f EnumeratorFunc) Devices() ([]Device, error) { return f() }

// SerialEnumerator asks the OS for serial ports with their USB descriptors.
type SerialEnumerator struct{}

func (SerialEnumerator) Devices() ([]Device, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	devices := make([]Device, 0, len(ports))
	for _, p := range ports {
		if p == nil {
			continue
		}
		devices = append(devices, Device{
			Path:         p.Name,
			Product:      p.Product,
			VID:          strings.ToLower(p.VID),
			PID:          strings.ToLower(p.PID),
			SerialNumber: p.SerialNumber,
			IsUSB:        p.IsUSB,
		})
	}
	return devices, nil
}

// Matcher decides whether a device is the badge.
type Matcher interface {
	Match(d Device) bool
	// Expected describes what is being looked for, for diagnostics.
	Expected() string
}

// ProductNameMatcher matches on the exact USB product string.
type ProductNameMatcher struct {
	Name string
}

func (m ProductNameMatcher) Match(d Device) bool { return d.Product == m.Name }

func (m ProductNameMatcher) Expected() string { return fmt.Sprintf("product name '%s'", m.Name) }

// USBIDMatcher matches on vendor and product ID. An empty PID matches any
// product of the vendor.
type USBIDMatcher struct {
	VID string
	PID string
}

func (m USBIDMatcher) Match(d Device) bool {
	if !d.IsUSB || !strings.EqualFold(d.VID, m.VID) {
		return false
	}
	return m.PID == "" || strings.EqualFold(d.PID, m.PID)
}

func (m USBIDMatcher) Expected() string {
	if m.PID == "" {
		return fmt.Sprintf("usb vendor %s", strings.ToLower(m.VID))
	}
	return fmt.Sprintf("usb id %s:%s", strings.ToLower(m.VID), strings.ToLower(m.PID))
}

// AnyMatcher matches when any of its matchers does.
type AnyMatcher []Matcher

func (m AnyMatcher) Match(d Device) bool {
	for _, matcher := range m {
		if matcher.Match(d) {
			return true
		}
	}
	return false
}

func (m AnyMatcher) Expected() string {
	parts := make([]string, 0, len(m))
	for _, matcher := range m {
		parts = append(parts, matcher.Expected())
	}
	return strings.Join(parts, " or ")
}

// DeviceNotFoundError is returned when no attached device matches. Found
// lists the product names of everything else on the bus.
type DeviceNotFoundError struct {
	Expected string
	Found    []string
}

func (e *DeviceNotFoundError) Error() string {
	if len(e.Found) == 0 {
		return fmt.Sprintf("could not find usb device with %s, no serial devices connected", e.Expected)
	}
	return fmt.Sprintf("could not find usb device with %s, found product(s): %s",
		e.Expected, strings.Join(e.Found, ", "))
}

// FindDevice returns the first device accepted by m.
func FindDevice(e Enumerator, m Matcher) (Device, error) {
	devices, err := e.Devices()
	if err != nil {
		return Device{}, err
	}

	found := make([]string, 0, len(devices))
	for _, d := range devices {
		if m.Match(d) {
			return d, nil
		}
		found = append(found, d.DisplayName())
	}
	return Device{}, &DeviceNotFoundError{Expected: m.Expected(), Found: found}
}

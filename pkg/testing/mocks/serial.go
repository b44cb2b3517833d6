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
	"errors"
	"time"

	"github.com/ZaparooProject/zebadge/pkg/helpers/syncutil"
)

// ErrPortClosed is returned by MockPort after Close.
var ErrPortClosed = errors.New("port closed")

// MockPort is an in-memory serial port. Writes are recorded, reads are
// served from ReadData, and an empty read waits out the read timeout.
type MockPort struct {
	WriteError   error
	ReadError    error
	CloseError   error
	TimeoutError error
	DTRError     error
	// WriteFunc replaces the default recording write when set.
	WriteFunc   func(p []byte) (int, error)
	ReadData    []byte
	written     []byte
	closedCh    chan struct{}
	readTimeout time.Duration
	readIndex   int
	closeCount  int
	// MaxWrite caps how many bytes a single Write accepts, 0 means no cap.
	MaxWrite int
	dtr      bool
	closed   bool
	mu       syncutil.Mutex
}

// NewMockPort returns a port that will answer reads with data.
func NewMockPort(data string) *MockPort {
	return &MockPort{ReadData: []byte(data)}
}

func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	closed, writeErr, writeFunc, maxWrite := m.closed, m.WriteError, m.WriteFunc, m.MaxWrite
	m.mu.Unlock()

	if closed {
		return 0, ErrPortClosed
	}
	if writeFunc != nil {
		return writeFunc(p)
	}
	if writeErr != nil {
		return 0, writeErr
	}

	n := len(p)
	if maxWrite > 0 && n > maxWrite {
		n = maxWrite
	}
	m.mu.Lock()
	m.written = append(m.written, p[:n]...)
	m.mu.Unlock()
	return n, nil
}

func (m *MockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrPortClosed
	}
	if m.ReadError != nil {
		err := m.ReadError
		m.mu.Unlock()
		return 0, err
	}
	if m.readIndex >= len(m.ReadData) {
		wait := m.readTimeout
		m.mu.Unlock()
		time.Sleep(min(wait, 5*time.Millisecond))
		return 0, nil
	}
	n := copy(p, m.ReadData[m.readIndex:])
	m.readIndex += n
	m.mu.Unlock()
	return n, nil
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		if m.closedCh != nil {
			close(m.closedCh)
		}
	}
	m.closeCount++
	return m.CloseError
}

// ClosedChan is closed once the port is closed, for write functions that
// simulate a stalled device.
func (m *MockPort) ClosedChan() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closedCh == nil {
		m.closedCh = make(chan struct{})
		if m.closed {
			close(m.closedCh)
		}
	}
	return m.closedCh
}

func (m *MockPort) SetReadTimeout(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readTimeout = t
	return m.TimeoutError
}

func (m *MockPort) SetDTR(dtr bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DTRError != nil {
		return m.DTRError
	}
	m.dtr = dtr
	return nil
}

// Written returns everything written so far.
func (m *MockPort) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.written)
}

// IsClosed reports whether Close was called.
func (m *MockPort) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// CloseCount reports how many times Close was called.
func (m *MockPort) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// DTR reports the last DTR level set.
func (m *MockPort) DTR() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dtr
}

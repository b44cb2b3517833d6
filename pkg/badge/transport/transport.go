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

// Package transport finds the badge on the serial bus, negotiates access and
// runs one bounded write or read per port session.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/zebadge/pkg/badge/protocol"
	"github.com/ZaparooProject/zebadge/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	// DefaultTimeout bounds a single write or read.
	DefaultTimeout = 3000 * time.Millisecond
	// DefaultReadIdle is how long the badge may stay silent before a
	// response is considered complete.
	DefaultReadIdle = 200 * time.Millisecond

	readChunkSize = 1024
)

var (
	// ErrWriteFailure wraps any failure while sending to the badge.
	ErrWriteFailure = errors.New("failed to write to badge")
	// ErrReadFailure wraps any failure while reading from the badge.
	ErrReadFailure = errors.New("failed to read from badge")
	// ErrNoResponse is returned when the badge sent nothing before the timeout.
	ErrNoResponse = errors.New("no response from badge")
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("badge transport closed")
)

// Options configures a Transport. Zero values are replaced by defaults.
type Options struct {
	Matcher     Matcher
	Enumerator  Enumerator
	Broker      PermissionBroker
	PortFactory PortFactory
	Mode        *serial.Mode
	// Path skips discovery and uses this port directly.
	Path     string
	Timeout  time.Duration
	ReadIdle time.Duration
}

func (o Options) withDefaults() Options {
	if o.Matcher == nil {
		o.Matcher = ProductNameMatcher{Name: DefaultProductName}
	}
	if o.Enumerator == nil {
		o.Enumerator = SerialEnumerator{}
	}
	if o.Broker == nil {
		o.Broker = NewFileAccessBroker()
	}
	if o.PortFactory == nil {
		o.PortFactory = DefaultPortFactory
	}
	if o.Mode == nil {
		o.Mode = DefaultMode()
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ReadIdle <= 0 {
		o.ReadIdle = DefaultReadIdle
	}
	return o
}

// Transport talks to one badge. Only one port is open at a time; concurrent
// callers are serialized.
type Transport struct {
	state *StateManager
	opts  Options
	mu    syncutil.Mutex
}

// New returns a Transport in StateDisconnected.
func New(opts Options) *Transport {
	return &Transport{
		opts:  opts.withDefaults(),
		state: NewStateManager(),
	}
}

// State returns the current lifecycle state.
func (t *Transport) State() State {
	return t.state.GetState()
}

// IsConnected reports whether a matching badge is attached right now. It
// does not touch the state machine.
func (t *Transport) IsConnected() bool {
	if t.opts.Path != "" {
		return t.opts.Broker.HasPermission(Device{Path: t.opts.Path})
	}
	_, err := FindDevice(t.opts.Enumerator, t.opts.Matcher)
	return err == nil
}

// Close moves the transport to StateClosed. Later operations fail with
// ErrClosed.
func (t *Transport) Close() error {
	t.state.SetState(StateClosed)
	return nil
}

func (t *Transport) fail() {
	t.state.SetState(StateDisconnected)
}

// acquire discovers the badge and makes sure it may be opened.
func (t *Transport) acquire(ctx context.Context) (Device, error) {
	switch t.state.GetState() {
	case StateClosed:
		return Device{}, ErrClosed
	case StateDiscovered, StatePermissionPending, StateBusy:
		// left over from an interrupted attempt
		t.state.ForceState(StateDisconnected)
	case StateDisconnected, StateReady:
	}

	var d Device
	if t.opts.Path != "" {
		d = Device{Path: t.opts.Path}
	} else {
		var err error
		d, err = FindDevice(t.opts.Enumerator, t.opts.Matcher)
		if err != nil {
			log.Error().Err(err).Msg("badge: discovery failed")
			t.fail()
			return Device{}, err
		}
	}
	if !t.state.SetState(StateDiscovered) {
		return Device{}, t.stateError(StateDiscovered)
	}
	log.Debug().Str("device", d.Path).Str("product", d.Product).Msg("badge: discovered")

	if !t.opts.Broker.HasPermission(d) {
		t.state.SetState(StatePermissionPending)
		if err := awaitPermission(ctx, t.opts.Broker, d); err != nil {
			t.fail()
			return Device{}, err
		}
	}

	if !t.state.SetState(StateReady) {
		return Device{}, t.stateError(StateReady)
	}
	return d, nil
}

func (t *Transport) stateError(to State) error {
	current := t.state.GetState()
	if current == StateClosed {
		return ErrClosed
	}
	return fmt.Errorf("invalid transport state change from %s to %s", current, to)
}

// session opens the badge port, hands it to fn and closes it again on every
// path out, including panics in fn and context cancellation.
func (t *Transport) session(ctx context.Context, fn func(Port) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, err := t.acquire(ctx)
	if err != nil {
		return err
	}
	if !t.state.SetState(StateBusy) {
		return t.stateError(StateBusy)
	}

	port, err := t.opts.PortFactory(d.Path, t.opts.Mode)
	if err != nil {
		t.fail()
		return err
	}

	ok := false
	defer func() {
		if closeErr := port.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Str("device", d.Path).Msg("badge: failed to close port")
		}
		if ok {
			t.state.SetState(StateReady)
		} else {
			t.fail()
		}
	}()

	if err := port.SetDTR(true); err != nil {
		return fmt.Errorf("could not set dtr on %s: %w", d.Path, err)
	}

	if err := fn(port); err != nil {
		return err
	}
	ok = true
	return nil
}

// Write sends data in one port session and returns the byte count.
func (t *Transport) Write(ctx context.Context, data []byte) (int, error) {
	var written int
	err := t.session(ctx, func(p Port) error {
		var err error
		written, err = t.write(ctx, p, data)
		return err
	})
	if err != nil {
		return written, wrapFailure(ErrWriteFailure, err)
	}
	return written, nil
}

// Send writes cmd and returns the byte count.
func (t *Transport) Send(ctx context.Context, cmd protocol.Command) (int, error) {
	n, err := t.Write(ctx, cmd.Bytes())
	if err != nil {
		return n, err
	}
	log.Info().Str("type", string(cmd.Type)).Str("meta", cmd.Meta).Int("bytes", n).Msg("badge: sent command")
	return n, nil
}

// Read collects whatever the badge prints until it goes quiet.
func (t *Transport) Read(ctx context.Context) (string, error) {
	var response string
	err := t.session(ctx, func(p Port) error {
		var err error
		response, err = t.read(ctx, p)
		return err
	})
	if err != nil {
		return "", wrapFailure(ErrReadFailure, err)
	}
	return response, nil
}

// Exchange writes cmd, runs wait, then reads the response, all within one
// port session so nothing the badge prints is lost between opens.
func (t *Transport) Exchange(
	ctx context.Context,
	cmd protocol.Command,
	wait func(context.Context) error,
) (string, error) {
	var response string
	writing := true
	err := t.session(ctx, func(p Port) error {
		if _, err := t.write(ctx, p, cmd.Bytes()); err != nil {
			return err
		}
		if wait != nil {
			if err := wait(ctx); err != nil {
				return err
			}
		}
		writing = false
		var err error
		response, err = t.read(ctx, p)
		return err
	})
	if err != nil {
		if writing {
			return "", wrapFailure(ErrWriteFailure, err)
		}
		return "", wrapFailure(ErrReadFailure, err)
	}
	return response, nil
}

type writeResult struct {
	err error
	n   int
}

// write pushes all of data, bounded by the timeout. go.bug.st/serial has no
// write deadline and closing the port does not interrupt a blocked write on
// every platform, so on timeout the port is closed and write returns at once.
// The writer goroutine finishes into the buffered channel whenever the OS
// lets go.
func (t *Transport) write(ctx context.Context, p Port, data []byte) (int, error) {
	done := make(chan writeResult, 1)
	var progress atomic.Int64
	go func() {
		offset := 0
		for offset < len(data) {
			n, err := p.Write(data[offset:])
			offset += n
			progress.Store(int64(offset))
			if err != nil {
				done <- writeResult{n: offset, err: err}
				return
			}
			if n == 0 {
				done <- writeResult{n: offset, err: errors.New("short write")}
				return
			}
		}
		done <- writeResult{n: offset}
	}()

	timer := time.NewTimer(t.opts.Timeout)
	defer timer.Stop()

	// A blocked Write may outlive Close; the goroutine finishes into the
	// buffered done channel without a reader.
	select {
	case res := <-done:
		return res.n, res.err
	case <-timer.C:
		_ = p.Close()
		return int(progress.Load()), fmt.Errorf("write timed out after %s", t.opts.Timeout)
	case <-ctx.Done():
		_ = p.Close()
		return int(progress.Load()), ctx.Err()
	}
}

// read accumulates chunks until the badge has said something and then stays
// quiet for ReadIdle, or until the timeout.
func (t *Transport) read(ctx context.Context, p Port) (string, error) {
	deadline := time.Now().Add(t.opts.Timeout)
	var sb strings.Builder
	buf := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := p.SetReadTimeout(min(t.opts.ReadIdle, remaining)); err != nil {
			return "", fmt.Errorf("failed to set read timeout: %w", err)
		}

		n, err := p.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			if sb.Len() > 0 {
				break
			}
			continue
		}
		sb.Write(buf[:n])
	}

	if sb.Len() == 0 {
		return "", ErrNoResponse
	}
	response := strings.TrimSpace(sb.String())
	log.Debug().Int("bytes", sb.Len()).Msg("badge: read response")
	return response, nil
}

// wrapFailure tags err with kind unless it is already a discovery or
// permission error the caller should see as-is.
func wrapFailure(kind, err error) error {
	var notFound *DeviceNotFoundError
	switch {
	case errors.As(err, &notFound),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrNoBoundDevice),
		errors.Is(err, ErrClosed):
		return err
	default:
		return fmt.Errorf("%w: %w", kind, err)
	}
}

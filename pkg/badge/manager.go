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

// Package badge drives a connected badge: it encodes images into commands,
// sends them and reads back what the badge answers.
package badge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/ZaparooProject/zebadge/pkg/badge/protocol"
	"github.com/ZaparooProject/zebadge/pkg/codec"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultSettle is how long the badge gets to process a command before its
// answer is read or the next command is sent.
const DefaultSettle = 300 * time.Millisecond

var (
	// ErrEmptyName is returned when a page operation is given no name.
	ErrEmptyName = errors.New("page name must not be empty")
	// ErrInvalidName matches every *InvalidNameError.
	ErrInvalidName = errors.New("invalid page name")
)

// InvalidNameError reports a page name that would break the command line,
// i.e. one containing the field separator or whitespace.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid page name %q: must not contain ':' or whitespace", e.Name)
}

func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// pageName trims name and checks it can travel as a command meta field.
func pageName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsFunc(name, func(r rune) bool { return r == ':' || unicode.IsSpace(r) }) {
		return "", &InvalidNameError{Name: name}
	}
	return name, nil
}

// Transport is the connection to the badge.
type Transport interface {
	Send(ctx context.Context, cmd protocol.Command) (int, error)
	Exchange(ctx context.Context, cmd protocol.Command, wait func(context.Context) error) (string, error)
	IsConnected() bool
	Close() error
}

// Options tunes a Manager. Zero values are replaced by defaults.
type Options struct {
	Clock  clockwork.Clock
	Settle time.Duration
	// Debug prefixes every command so the badge echoes what it does.
	Debug bool
}

// Manager sends pages and configuration to one badge.
type Manager struct {
	transport Transport
	clock     clockwork.Clock
	settle    time.Duration
	debug     bool
}

// NewManager returns a Manager talking through t.
func NewManager(t Transport, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	return &Manager{
		transport: t,
		clock:     opts.Clock,
		settle:    opts.Settle,
		debug:     opts.Debug,
	}
}

// IsConnected reports whether a badge is attached.
func (m *Manager) IsConnected() bool {
	return m.transport.IsConnected()
}

// Close releases the transport.
func (m *Manager) Close() error {
	return m.transport.Close()
}

func (m *Manager) wait(ctx context.Context) error {
	select {
	case <-m.clock.After(m.settle):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Raw sends cmd as-is and returns the number of bytes written.
func (m *Manager) Raw(ctx context.Context, cmd protocol.Command) (int, error) {
	n, err := m.transport.Send(ctx, cmd.WithDebug(m.debug || cmd.Debug))
	if err != nil {
		return n, fmt.Errorf("failed to send %s: %w", cmd.Type, err)
	}
	return n, nil
}

// Query sends cmd and returns the badge's answer.
func (m *Manager) Query(ctx context.Context, cmd protocol.Command) (string, error) {
	resp, err := m.transport.Exchange(ctx, cmd.WithDebug(m.debug || cmd.Debug), m.wait)
	if err != nil {
		return "", fmt.Errorf("failed to query %s: %w", cmd.Type, err)
	}
	return resp, nil
}

// Preview shows b on the badge without storing it.
func (m *Manager) Preview(ctx context.Context, b pixels.Buffer) (int, error) {
	payload, err := codec.EncodePayload(b)
	if err != nil {
		return 0, fmt.Errorf("failed to encode preview: %w", err)
	}
	return m.Raw(ctx, protocol.Preview(payload))
}

// Store saves b on the badge under name and returns the name used. An empty
// name is replaced by a random one.
func (m *Manager) Store(ctx context.Context, name string, b pixels.Buffer) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = uuid.NewString()
	}
	name, err := pageName(name)
	if err != nil {
		return "", err
	}
	payload, err := codec.EncodePayload(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode page %q: %w", name, err)
	}
	if _, err := m.Raw(ctx, protocol.Store(name, payload)); err != nil {
		return "", err
	}
	log.Info().Str("name", name).Msg("badge: stored page")
	return name, nil
}

// Show displays a stored page.
func (m *Manager) Show(ctx context.Context, name string) error {
	name, err := pageName(name)
	if err != nil {
		return err
	}
	_, err = m.Raw(ctx, protocol.Show(name))
	return err
}

// Delete removes a stored page.
func (m *Manager) Delete(ctx context.Context, name string) error {
	name, err := pageName(name)
	if err != nil {
		return err
	}
	_, err = m.Raw(ctx, protocol.Delete(name))
	return err
}

// List returns the names of the pages stored on the badge.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	resp, err := m.Query(ctx, protocol.List())
	if err != nil {
		return nil, err
	}
	return protocol.ParseList(resp), nil
}

// Help returns the badge's command overview.
func (m *Manager) Help(ctx context.Context) (string, error) {
	return m.Query(ctx, protocol.Help())
}

// RawConfig returns the badge configuration as typed values.
func (m *Manager) RawConfig(ctx context.Context) (map[string]any, error) {
	resp, err := m.Query(ctx, protocol.ConfigList())
	if err != nil {
		return nil, err
	}
	return protocol.ParseConfig(resp), nil
}

// Config returns the badge configuration.
func (m *Manager) Config(ctx context.Context) (protocol.BadgeConfig, error) {
	resp, err := m.Query(ctx, protocol.ConfigList())
	if err != nil {
		return protocol.BadgeConfig{}, err
	}
	cfg, err := protocol.ParseBadgeConfig(resp)
	if err != nil {
		return protocol.BadgeConfig{}, fmt.Errorf("invalid badge configuration: %w", err)
	}
	return cfg, nil
}

// UpdateConfig writes values to the badge and persists them.
func (m *Manager) UpdateConfig(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	if _, err := m.Raw(ctx, protocol.ConfigUpdate(protocol.EncodeConfig(values))); err != nil {
		return err
	}
	if err := m.wait(ctx); err != nil {
		return fmt.Errorf("config update not saved: %w", err)
	}
	if _, err := m.Raw(ctx, protocol.ConfigSave()); err != nil {
		return err
	}
	log.Info().Int("keys", len(values)).Msg("badge: configuration saved")
	return nil
}

// Reload restarts the badge firmware's main program.
func (m *Manager) Reload(ctx context.Context) error {
	_, err := m.Raw(ctx, protocol.Reload())
	return err
}

// Refresh redraws the current page.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err := m.Raw(ctx, protocol.Refresh())
	return err
}

// Exit leaves the command loop on the badge.
func (m *Manager) Exit(ctx context.Context) error {
	_, err := m.Raw(ctx, protocol.Exit())
	return err
}

// Terminal switches the badge into its terminal page.
func (m *Manager) Terminal(ctx context.Context) error {
	_, err := m.Raw(ctx, protocol.Terminal())
	return err
}

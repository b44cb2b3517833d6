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
	"context"

	"github.com/ZaparooProject/zebadge/pkg/badge/protocol"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/stretchr/testify/mock"
)

// MockBadgeTransport is a testify mock of badge.Transport. Exchange runs the
// wait function it is given before returning the programmed response, so
// settle delays can be driven from a fake clock.
type MockBadgeTransport struct {
	mock.Mock
}

func (m *MockBadgeTransport) Send(ctx context.Context, cmd protocol.Command) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

func (m *MockBadgeTransport) Exchange(
	ctx context.Context,
	cmd protocol.Command,
	wait func(context.Context) error,
) (string, error) {
	args := m.Called(ctx, cmd)
	if wait != nil {
		if err := wait(ctx); err != nil {
			return "", err
		}
	}
	return args.String(0), args.Error(1)
}

func (m *MockBadgeTransport) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockBadgeTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockBadgeManager is a testify mock of the badge operations the API uses.
type MockBadgeManager struct {
	mock.Mock
}

func (m *MockBadgeManager) Preview(ctx context.Context, b pixels.Buffer) (int, error) {
	args := m.Called(ctx, b)
	return args.Int(0), args.Error(1)
}

func (m *MockBadgeManager) Store(ctx context.Context, name string, b pixels.Buffer) (string, error) {
	args := m.Called(ctx, name, b)
	return args.String(0), args.Error(1)
}

func (m *MockBadgeManager) Show(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockBadgeManager) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockBadgeManager) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if pages, ok := args.Get(0).([]string); ok {
		return pages, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBadgeManager) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockBadgeManager) Help(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockBadgeManager) RawConfig(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	if values, ok := args.Get(0).(map[string]any); ok {
		return values, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBadgeManager) Config(ctx context.Context) (protocol.BadgeConfig, error) {
	args := m.Called(ctx)
	if cfg, ok := args.Get(0).(protocol.BadgeConfig); ok {
		return cfg, args.Error(1)
	}
	return protocol.BadgeConfig{}, args.Error(1)
}

func (m *MockBadgeManager) UpdateConfig(ctx context.Context, values map[string]any) error {
	args := m.Called(ctx, values)
	return args.Error(0)
}

func (m *MockBadgeManager) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockBadgeManager) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockBadgeManager) Exit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockBadgeManager) Terminal(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockBadgeManager) Raw(ctx context.Context, cmd protocol.Command) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

func (m *MockBadgeManager) Query(ctx context.Context, cmd protocol.Command) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

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

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ZaparooProject/zebadge/internal/telemetry"
	"github.com/ZaparooProject/zebadge/pkg/api"
	"github.com/ZaparooProject/zebadge/pkg/api/discovery"
	"github.com/ZaparooProject/zebadge/pkg/badge"
	"github.com/ZaparooProject/zebadge/pkg/badge/transport"
	"github.com/ZaparooProject/zebadge/pkg/config"
	"github.com/ZaparooProject/zebadge/pkg/helpers"
	"github.com/rs/zerolog/log"
)

// Setup prepares directories, loads the config and starts logging.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaults config.Values, debug bool, writers []io.Writer) (*config.Instance, error) {
	if err := helpers.EnsureDirectories(helpers.ConfigDir(), helpers.LogDir()); err != nil {
		return nil, err
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.SetDebugLogging(true)
	}

	if err := helpers.InitLogging(helpers.LogDir(), cfg.DebugLogging(), writers); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := telemetry.Init(cfg.SentryDSN(), config.AppVersion); err != nil {
		log.Warn().Err(err).Msg("error reporting unavailable")
	}
	log.Info().Str("version", config.AppVersion).Str("config", cfg.Path()).Msg("zebadge starting")
	return cfg, nil
}

// DeviceMatcher picks the badge by USB ID when configured, falling back to
// the product name.
func DeviceMatcher(dev config.Device) transport.Matcher {
	var matchers transport.AnyMatcher
	if dev.VendorID != "" {
		matchers = append(matchers, transport.USBIDMatcher{VID: dev.VendorID, PID: dev.ProductID})
	}
	if name := strings.TrimSpace(dev.ProductName); name != "" {
		matchers = append(matchers, transport.ProductNameMatcher{Name: name})
	}
	switch len(matchers) {
	case 0:
		return transport.ProductNameMatcher{Name: transport.DefaultProductName}
	case 1:
		return matchers[0]
	default:
		return matchers
	}
}

// TransportOptions maps the [device] config section onto the transport.
func TransportOptions(cfg *config.Instance) transport.Options {
	dev := cfg.Device()
	mode := transport.DefaultMode()
	if dev.BaudRate > 0 {
		mode.BaudRate = dev.BaudRate
	}
	return transport.Options{
		Matcher: DeviceMatcher(dev),
		Mode:    mode,
		Path:    dev.Port,
		Timeout: cfg.DeviceTimeout(),
	}
}

// NewBadge builds the badge manager from the config.
func NewBadge(cfg *config.Instance) *badge.Manager {
	t := transport.New(TransportOptions(cfg))
	return badge.NewManager(t, badge.Options{
		Settle: cfg.SettleDelay(),
		Debug:  cfg.Device().Debug,
	})
}

// ListPorts prints every serial device and marks the ones that look like a
// badge.
func ListPorts(out io.Writer, e transport.Enumerator, m transport.Matcher) error {
	devices, err := e.Devices()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}
	if len(devices) == 0 {
		_, _ = fmt.Fprintln(out, "no serial devices connected")
		return nil
	}
	for _, d := range devices {
		marker := " "
		if m.Match(d) {
			marker = "*"
		}
		ids := ""
		if d.IsUSB {
			ids = fmt.Sprintf(" [%s:%s]", strings.ToLower(d.VID), strings.ToLower(d.PID))
		}
		_, _ = fmt.Fprintf(out, "%s %s %s%s\n", marker, d.Path, d.DisplayName(), ids)
	}
	return nil
}

// Serve runs the API server until ctx is done, advertising it over mDNS
// when enabled.
func Serve(ctx context.Context, cfg *config.Instance, b api.BadgeManager) error {
	mdns := discovery.New(cfg)
	if err := mdns.Start(); err != nil {
		log.Warn().Err(err).Msg("mDNS advertising unavailable")
	}
	defer mdns.Stop()

	return api.NewServer(cfg, b).Start(ctx)
}

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

// Package discovery advertises the API server over mDNS so clients on the
// local network can find a badge host without knowing its address.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ZaparooProject/zebadge/pkg/config"
	"github.com/ZaparooProject/zebadge/pkg/helpers/syncutil"
	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog/log"
)

// ServiceType is the DNS-SD type of the zebadge API.
const ServiceType = "_zebadge._tcp"

const (
	// registration is retried while the network comes up
	retryInterval    = 30 * time.Second
	maxRetryDuration = 5 * time.Minute
	fallbackName     = "zebadge"
)

var virtualInterfacePrefixes = []string{
	"docker", "br-", "veth", "virbr", "lxc", "lxd",
	"cni", "flannel", "cali", "tunl", "wg",
}

// Config is the part of the config the advertiser reads.
type Config interface {
	DiscoveryEnabled() bool
	DiscoveryInstanceName() string
	APIPort() int
}

// filterInterfaces keeps interfaces that are up, multicast capable, not
// loopback and not a container or VPN bridge.
func filterInterfaces(ifaces []net.Interface) []net.Interface {
	var preferred []net.Interface
	for _, iface := range ifaces {
		switch {
		case iface.Flags&net.FlagUp == 0,
			iface.Flags&net.FlagLoopback != 0,
			iface.Flags&net.FlagMulticast == 0,
			isVirtualInterface(iface.Name):
			continue
		}
		preferred = append(preferred, iface)
	}
	return preferred
}

func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Service owns one mDNS registration.
type Service struct {
	cfg          Config
	server       *zeroconf.Server
	cancelFunc   context.CancelFunc
	hostname     func() (string, error)
	instanceName string
	mu           syncutil.Mutex
	stopped      bool
}

func New(cfg Config) *Service {
	return &Service{cfg: cfg, hostname: os.Hostname}
}

// Start registers the service. When no interface is usable yet it keeps
// retrying in the background and still returns nil.
func (s *Service) Start() error {
	if !s.cfg.DiscoveryEnabled() {
		log.Debug().Msg("mDNS advertising disabled")
		return nil
	}
	if s.cfg.APIPort() <= 0 {
		return fmt.Errorf("cannot advertise api on port %d", s.cfg.APIPort())
	}

	s.mu.Lock()
	s.instanceName = s.resolveInstanceName()
	s.mu.Unlock()

	if s.tryRegister() {
		return nil
	}

	log.Info().
		Dur("retryInterval", retryInterval).
		Dur("maxDuration", maxRetryDuration).
		Msg("mDNS registration failed, retrying in background")

	ctx, cancel := context.WithTimeout(context.Background(), maxRetryDuration)
	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	go s.retryLoop(ctx)
	return nil
}

func (s *Service) tryRegister() bool {
	all, err := net.Interfaces()
	if err != nil {
		log.Debug().Err(err).Msg("failed to list network interfaces")
		return false
	}
	ifaces := filterInterfaces(all)
	if len(ifaces) == 0 {
		log.Debug().Msg("no network interfaces suitable for mDNS")
		return false
	}

	names := make([]string, len(ifaces))
	for i, iface := range ifaces {
		names[i] = iface.Name
	}

	port := s.cfg.APIPort()
	server, err := zeroconf.Register(
		s.InstanceName(),
		ServiceType,
		"local.",
		port,
		[]string{"version=" + config.AppVersion, "path=/api"},
		ifaces,
	)
	if err != nil {
		log.Debug().Err(err).Msg("mDNS registration attempt failed")
		return false
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		server.Shutdown()
		return false
	}
	s.server = server
	s.mu.Unlock()

	log.Info().
		Str("instance", s.InstanceName()).
		Int("port", port).
		Strs("interfaces", names).
		Msg("advertising api over mDNS")
	return true
}

func (s *Service) retryLoop(ctx context.Context) {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.tryRegister() {
				return
			}
		case <-ctx.Done():
			log.Warn().Msg("gave up on mDNS registration")
			return
		}
	}
}

// Stop sends goodbye packets and ends any retry loop. Safe to call more than
// once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	if s.server != nil {
		s.server.Shutdown()
		s.server = nil
	}
}

// InstanceName is the advertised name, empty before Start.
func (s *Service) InstanceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instanceName
}

// resolveInstanceName prefers the configured name, then the hostname.
func (s *Service) resolveInstanceName() string {
	if name := strings.TrimSpace(s.cfg.DiscoveryInstanceName()); name != "" {
		return name
	}
	hostname, err := s.hostname()
	if err != nil || hostname == "" {
		log.Warn().Err(err).Msg("failed to get hostname, using fallback")
		return fallbackName
	}
	return hostname
}

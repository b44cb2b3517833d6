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

// Package config loads and saves the zebadge TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zebadge/pkg/api/validation"
	"github.com/ZaparooProject/zebadge/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgEnv        = "ZEBADGE_CFG"
	// AuthTokenEnv overrides api.auth_token.
	AuthTokenEnv = "ZEBADGE_AUTH_TOKEN"
)

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Device         Device         `toml:"device"`
	Image          Image          `toml:"image"`
	API            API            `toml:"api"`
	ErrorReporting ErrorReporting `toml:"error_reporting"`
	ConfigSchema   int            `toml:"config_schema"`
	DebugLogging   bool           `toml:"debug_logging"`
}

// Device selects and talks to the badge. Durations are Go duration strings.
type Device struct {
	ProductName string `toml:"product_name" validate:"required_without=VendorID"`
	VendorID    string `toml:"vendor_id,omitempty" validate:"omitempty,hexadecimal,len=4"`
	ProductID   string `toml:"product_id,omitempty" validate:"omitempty,hexadecimal,len=4"`
	// Port skips discovery when set.
	Port        string `toml:"port,omitempty"`
	Timeout     string `toml:"timeout" validate:"omitempty,duration"`
	SettleDelay string `toml:"settle_delay" validate:"omitempty,duration"`
	BaudRate    int    `toml:"baud_rate" validate:"gte=0,lte=4000000"`
	Debug       bool   `toml:"debug_commands"`
}

type Image struct {
	Ditherer string `toml:"ditherer" validate:"ditherer"`
	Width    int    `toml:"width" validate:"gte=0,lte=4096"`
	Height   int    `toml:"height" validate:"gte=0,lte=4096"`
	Carve    bool   `toml:"carve"`
	Invert   bool   `toml:"invert"`
}

type API struct {
	Listen     string   `toml:"listen,omitempty"`
	AuthToken  string   `toml:"auth_token,omitempty"`
	AllowedIPs []string `toml:"allowed_ips,omitempty" validate:"dive,ip|cidr"`
	// InstanceName is the mDNS name, the hostname when empty.
	InstanceName string `toml:"instance_name,omitempty"`
	Port         int    `toml:"port" validate:"gte=0,lte=65535"`
	Advertise    bool   `toml:"advertise"`
}

// ErrorReporting sends error level logs to a Sentry project when a DSN is
// set. Nothing is reported by default.
type ErrorReporting struct {
	SentryDSN string `toml:"sentry_dsn,omitempty" validate:"omitempty,url"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Device: Device{
		ProductName: "Badger 2040",
		BaudRate:    115200,
		Timeout:     "3s",
		SettleDelay: "300ms",
	},
	Image: Image{
		Width:    296,
		Height:   128,
		Ditherer: "floyd-steinberg",
	},
	API: API{
		Port: 8000,
	},
}

type Instance struct {
	fs       afero.Fs
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// Validate checks vals against the field rules.
//
//nolint:gocritic // config struct copied for immutability
func Validate(vals Values) error {
	if err := validation.DefaultValidator.Validate(&vals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewConfig loads the config from configDir on the OS filesystem, writing
// defaults first if no file exists.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	return NewConfigWithFs(afero.NewOsFs(), configDir, defaults)
}

// NewConfigWithFs is NewConfig on an arbitrary filesystem.
//
//nolint:gocritic // config struct copied for immutability
func NewConfigWithFs(fs afero.Fs, configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		log.Info().Msg("saving new default config to disk")

		if err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the config file location.
func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// fields missing from the file keep their defaults
	newVals := c.defaults
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if err := Validate(newVals); err != nil {
		return err
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Values returns a copy of the current settings.
func (c *Instance) Values() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vals := c.vals
	vals.API.AllowedIPs = append([]string(nil), c.vals.API.AllowedIPs...)
	return vals
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func (c *Instance) Device() Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Device
}

func (c *Instance) SetDevicePort(port string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Device.Port = port
}

// DeviceTimeout is the per-operation I/O bound, 0 when unset or invalid.
func (c *Instance) DeviceTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Device.Timeout)
}

// SettleDelay is the pause between a command and reading its answer.
func (c *Instance) SettleDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Device.SettleDelay)
}

func (c *Instance) Image() Image {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Image
}

func (c *Instance) SetImage(img Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Image = img
}

// APIAddress is the listen address for the image service.
func (c *Instance) APIAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("%s:%d", c.vals.API.Listen, c.vals.API.Port)
}

// APIAuthToken returns the shared secret for protected endpoints. The
// environment takes precedence over the file.
func (c *Instance) APIAuthToken() string {
	if token := os.Getenv(AuthTokenEnv); token != "" {
		return token
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.AuthToken
}

func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.Port
}

// DiscoveryEnabled reports whether the API is advertised over mDNS.
func (c *Instance) DiscoveryEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.Advertise
}

func (c *Instance) DiscoveryInstanceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.InstanceName
}

func (c *Instance) SentryDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReporting.SentryDSN
}

func (c *Instance) APIAllowedIPs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.API.AllowedIPs...)
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn().Str("value", s).Msg("invalid duration in config")
		return 0
	}
	return d
}

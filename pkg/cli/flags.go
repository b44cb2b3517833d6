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
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zebadge/pkg/dither"
)

// Step kinds. Image steps run on the input image in the order given; badge
// steps run before any image is loaded.
const (
	StepFloydSteinberg = "floyd-steinberg"
	StepThreshold      = "threshold"
	StepInvert         = "invert"
	StepGrayscale      = "grayscale"
	StepResize         = "resize"
	StepFluid          = "fluid"
	StepDither         = "dither"
	StepFit            = "fit"
	StepPreview        = "preview"
	StepStore          = "store"

	StepList       = "list"
	StepShow       = "show"
	StepDelete     = "delete"
	StepBadgeHelp  = "badge-help"
	StepConfigList = "config-list"
	StepBadgeInfo  = "badge-info"
	StepStoreDir   = "store-dir"
	StepConfigSet  = "config-set"
	StepReload     = "reload"
	StepRefresh    = "refresh"
	StepExit       = "exit"
	StepTerminal   = "terminal"
	StepRaw        = "raw"
)

var ErrInvalidSize = errors.New("size must look like WIDTHxHEIGHT")

// Step is one queued action and its argument.
type Step struct {
	Name string
	Arg  string
}

type Flags struct {
	Input   *string
	Output  *string
	Port    *string
	Debug   *bool
	Version *bool
	Ports   *bool
	Serve   *bool

	ImageSteps []Step
	BadgeSteps []Step

	set *flag.FlagSet
}

// stepFlag queues a Step each time its flag appears, so the command line
// order is kept across different flags.
type stepFlag struct {
	queue    *[]Step
	validate func(string) error
	name     string
	boolean  bool
}

func (s *stepFlag) String() string { return "" }

func (s *stepFlag) Set(v string) error {
	if s.validate != nil {
		if err := s.validate(v); err != nil {
			return err
		}
	}
	if s.boolean {
		if enabled, err := strconv.ParseBool(v); err != nil || !enabled {
			return err
		}
		v = ""
	}
	*s.queue = append(*s.queue, Step{Name: s.name, Arg: v})
	return nil
}

func (s *stepFlag) IsBoolFlag() bool { return s.boolean }

// ParseSize reads "WIDTHxHEIGHT".
func ParseSize(s string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	width, err = strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	height, err = strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return width, height, nil
}

func validateSize(s string) error {
	_, _, err := ParseSize(s)
	return err
}

func validateLimit(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > 255 {
		return fmt.Errorf("threshold must be between 0 and 255, got %q", s)
	}
	return nil
}

func validateDitherer(s string) error {
	_, err := dither.ByName(s)
	return err
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("page name must not be empty")
	}
	return nil
}

func validateConfigSet(s string) error {
	if k, _, ok := strings.Cut(s, "="); !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	return nil
}

// SetupFlags defines every CLI flag on set.
func SetupFlags(set *flag.FlagSet) *Flags {
	f := &Flags{
		set: set,
		Input: set.String(
			"input",
			"",
			"read image to be converted",
		),
		Output: set.String(
			"output",
			"",
			"save the converted image as PNG",
		),
		Port: set.String(
			"port",
			"",
			"serial port of the badge, skips discovery",
		),
		Debug: set.Bool(
			"debug",
			false,
			"enable debug logging and badge debug output",
		),
		Version: set.Bool(
			"version",
			false,
			"print version and exit",
		),
		Ports: set.Bool(
			"ports",
			false,
			"list attached serial devices",
		),
		Serve: set.Bool(
			"serve",
			false,
			"run the image conversion API server",
		),
	}

	img := func(name, usage string, boolean bool, validate func(string) error) {
		set.Var(&stepFlag{queue: &f.ImageSteps, name: name, boolean: boolean, validate: validate}, name, usage)
	}
	img(StepFloydSteinberg, "dither with Floyd-Steinberg error diffusion", true, nil)
	img(StepThreshold, "threshold at `LIMIT`, brighter pixels become white", false, validateLimit)
	img(StepInvert, "swap black and white", true, nil)
	img(StepGrayscale, "convert to grayscale", true, nil)
	img(StepResize, "scale to `WIDTHxHEIGHT`", false, validateSize)
	img(StepFluid, "scale and seam carve to `WIDTHxHEIGHT`", false, validateSize)
	img(StepDither, "dither with the named `ALGORITHM`", false, validateDitherer)
	img(StepFit, "resize and dither for the display using the config", true, nil)
	img(StepPreview, "show the current image on the badge", true, nil)
	img(StepStore, "store the current image on the badge as `NAME`, empty for a random name", false, nil)

	badge := func(name, usage string, boolean bool, validate func(string) error) {
		set.Var(&stepFlag{queue: &f.BadgeSteps, name: name, boolean: boolean, validate: validate}, name, usage)
	}
	badge(StepList, "list pages stored on the badge", true, nil)
	badge(StepShow, "show the stored page `NAME`", false, validateName)
	badge(StepDelete, "delete the stored page `NAME`", false, validateName)
	badge(StepBadgeHelp, "print the badge's command help", true, nil)
	badge(StepConfigList, "print the badge configuration", true, nil)
	badge(StepBadgeInfo, "print the badge owner and wifi status", true, nil)
	badge(StepStoreDir, "fit every image in `DIR` and store each under its file name", false, validateName)
	badge(StepConfigSet, "set and save a badge config `KEY=VALUE`", false, validateConfigSet)
	badge(StepReload, "reload the badge", true, nil)
	badge(StepRefresh, "redraw the badge display", true, nil)
	badge(StepExit, "leave the badge app", true, nil)
	badge(StepTerminal, "switch the badge to its terminal", true, nil)
	badge(StepRaw, "send a raw `COMMAND` such as \"show cat\"", false, nil)

	return f
}

// Parse parses args. Positional arguments are queued as raw badge commands.
func (f *Flags) Parse(args []string) error {
	if err := f.set.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	for _, arg := range f.set.Args() {
		f.BadgeSteps = append(f.BadgeSteps, Step{Name: StepRaw, Arg: arg})
	}
	return nil
}

// Empty reports whether nothing was asked for.
func (f *Flags) Empty() bool {
	return *f.Input == "" && len(f.BadgeSteps) == 0 && !*f.Ports && !*f.Serve && !*f.Version
}

// hasResult reports whether the image chain ends anywhere.
func (f *Flags) hasResult() bool {
	if *f.Output != "" {
		return true
	}
	for _, s := range f.ImageSteps {
		if s.Name == StepPreview || s.Name == StepStore {
			return true
		}
	}
	return false
}

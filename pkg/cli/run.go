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
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ZaparooProject/zebadge/pkg/api/client"
	"github.com/ZaparooProject/zebadge/pkg/badge/protocol"
	"github.com/ZaparooProject/zebadge/pkg/carve"
	"github.com/ZaparooProject/zebadge/pkg/dither"
	"github.com/ZaparooProject/zebadge/pkg/imageio"
	"github.com/ZaparooProject/zebadge/pkg/pipeline"
	"github.com/ZaparooProject/zebadge/pkg/pixels"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrNoResultTarget = errors.New("no result operation specified, use -output, -preview or -store")

// Badge is everything the CLI can ask of a badge.
type Badge interface {
	Preview(ctx context.Context, b pixels.Buffer) (int, error)
	Store(ctx context.Context, name string, b pixels.Buffer) (string, error)
	Show(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Help(ctx context.Context) (string, error)
	RawConfig(ctx context.Context) (map[string]any, error)
	Config(ctx context.Context) (protocol.BadgeConfig, error)
	UpdateConfig(ctx context.Context, values map[string]any) error
	Reload(ctx context.Context) error
	Refresh(ctx context.Context) error
	Exit(ctx context.Context) error
	Terminal(ctx context.Context) error
	Query(ctx context.Context, cmd protocol.Command) (string, error)
	IsConnected() bool
}

// Fetcher downloads images given as http(s) URLs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (pixels.Buffer, error)
}

// Runner executes parsed flags.
type Runner struct {
	Badge   Badge
	Fs      afero.Fs
	Fetcher Fetcher
	Out     io.Writer
	// Fit is used by the fit step.
	Fit pipeline.Options
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.Out, format, args...)
}

// Run performs the badge steps in order, then converts the input image if
// one was given.
func (r *Runner) Run(ctx context.Context, f *Flags) error {
	for _, step := range f.BadgeSteps {
		if err := r.badgeStep(ctx, step); err != nil {
			return fmt.Errorf("%s failed: %w", step.Name, err)
		}
	}

	if *f.Input == "" {
		return nil
	}
	if !f.hasResult() {
		return ErrNoResultTarget
	}
	return r.convert(ctx, *f.Input, *f.Output, f.ImageSteps)
}

func (r *Runner) badgeStep(ctx context.Context, step Step) error {
	switch step.Name {
	case StepList:
		pages, err := r.Badge.List(ctx)
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			r.printf("no pages stored\n")
		}
		for _, p := range pages {
			r.printf(".. %s\n", p)
		}
	case StepShow:
		if err := r.Badge.Show(ctx, step.Arg); err != nil {
			return err
		}
		r.printf("showing %q\n", step.Arg)
	case StepDelete:
		if err := r.Badge.Delete(ctx, step.Arg); err != nil {
			return err
		}
		r.printf("deleted %q\n", step.Arg)
	case StepBadgeHelp:
		help, err := r.Badge.Help(ctx)
		if err != nil {
			return err
		}
		r.printf("%s\n", help)
	case StepConfigList:
		values, err := r.Badge.RawConfig(ctx)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.printf("%s = %s\n", k, protocol.FormatValue(values[k]))
		}
	case StepBadgeInfo:
		cfg, err := r.Badge.Config(ctx)
		if err != nil {
			return err
		}
		r.printBadgeInfo(cfg)
	case StepStoreDir:
		return r.storeDir(ctx, step.Arg)
	case StepConfigSet:
		key, value, _ := strings.Cut(step.Arg, "=")
		key = strings.TrimSpace(key)
		parsed := protocol.ParseValue(strings.TrimSpace(value))
		if err := r.Badge.UpdateConfig(ctx, map[string]any{key: parsed}); err != nil {
			return err
		}
		r.printf("set %s = %s\n", key, protocol.FormatValue(parsed))
	case StepReload:
		return r.Badge.Reload(ctx)
	case StepRefresh:
		return r.Badge.Refresh(ctx)
	case StepExit:
		return r.Badge.Exit(ctx)
	case StepTerminal:
		return r.Badge.Terminal(ctx)
	case StepRaw:
		cmd := protocol.ParseRaw(step.Arg)
		if cmd.Type == "" {
			return errors.New("empty command")
		}
		if !cmd.Type.Known() {
			log.Warn().Str("type", string(cmd.Type)).Msg("sending unknown command type")
		}
		resp, err := r.Badge.Query(ctx, cmd)
		if err != nil {
			return err
		}
		r.printf("%s\n", cmd)
		for _, line := range strings.Split(resp, ",") {
			r.printf(".. %s\n", line)
		}
	default:
		return fmt.Errorf("unknown step %q", step.Name)
	}
	return nil
}

func (r *Runner) printBadgeInfo(cfg protocol.BadgeConfig) {
	if cfg.User == nil {
		r.printf("user: not set\n")
	} else {
		r.printf("user: %s (%s)\n", cfg.User.Name, cfg.User.ID)
		if cfg.User.Description != "" {
			r.printf("description: %s\n", cfg.User.Description)
		}
		r.printf("profile photo: %d bytes\n", len(cfg.User.ProfilePhoto))
	}
	r.printf("wifi attached: %s\n", yesNo(cfg.WiFiAttached))
	r.printf("developer mode: %s\n", yesNo(cfg.DeveloperMode))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".webp": {},
}

// pageNameFor derives a badge page name from a file name, replacing the
// characters the command line cannot carry.
func pageNameFor(file string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return strings.Map(func(r rune) rune {
		if r == ':' || unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, base)
}

// storeDir fits all images in dir concurrently, then stores them one by one
// in file name order.
func (r *Runner) storeDir(ctx context.Context, dir string) error {
	entries, err := afero.ReadDir(r.Fs, dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	var imgs []pixels.Buffer
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageExts[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		img, err := imageio.Load(r.Fs, path)
		if err != nil {
			return err
		}
		files = append(files, e.Name())
		imgs = append(imgs, img)
	}
	if len(imgs) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	fitted, err := pipeline.ProcessAll(ctx, imgs, r.Fit)
	if err != nil {
		return err
	}
	for i, img := range fitted {
		name, err := r.Badge.Store(ctx, pageNameFor(files[i]), img)
		if err != nil {
			return fmt.Errorf("%s: %w", files[i], err)
		}
		r.printf("stored %q as %q\n", files[i], name)
	}
	return nil
}

func (r *Runner) convert(ctx context.Context, input, output string, steps []Step) error {
	var img pixels.Buffer
	var err error
	if client.IsURL(input) && r.Fetcher != nil {
		img, err = r.Fetcher.Fetch(ctx, input)
	} else {
		img, err = imageio.Load(r.Fs, input)
	}
	if err != nil {
		return err
	}
	r.printf("processing image %q (%dx%d)\n", input, img.Width, img.Height)

	for _, step := range steps {
		r.printf("... %s\n", step.Name)
		img, err = r.imageStep(ctx, img, step)
		if err != nil {
			return fmt.Errorf("%s failed: %w", step.Name, err)
		}
	}

	if output == "" {
		return nil
	}
	if err := imageio.Save(r.Fs, output, img); err != nil {
		return err
	}
	r.printf("saved image to %q\n", output)
	return nil
}

func (r *Runner) imageStep(ctx context.Context, img pixels.Buffer, step Step) (pixels.Buffer, error) {
	switch step.Name {
	case StepFloydSteinberg:
		return dither.FloydSteinberg{}.Dither(img)
	case StepThreshold:
		limit, err := strconv.Atoi(step.Arg)
		if err != nil {
			return pixels.Buffer{}, fmt.Errorf("invalid threshold: %w", err)
		}
		return dither.Threshold{Limit: limit}.Dither(img)
	case StepInvert:
		return pixels.Invert(img), nil
	case StepGrayscale:
		return pixels.Grayscale(img), nil
	case StepResize, StepFluid:
		w, h, err := ParseSize(step.Arg)
		if err != nil {
			return pixels.Buffer{}, err
		}
		if step.Name == StepFluid {
			return carve.ResizeAndCarve(img, w, h)
		}
		return pixels.Resize(img, w, h)
	case StepDither:
		d, err := dither.ByName(step.Arg)
		if err != nil {
			return pixels.Buffer{}, err
		}
		return d.Dither(img)
	case StepFit:
		return pipeline.Process(img, r.Fit)
	case StepPreview:
		n, err := r.Badge.Preview(ctx, img)
		if err != nil {
			return pixels.Buffer{}, err
		}
		r.printf("sent image to badge (%d bytes)\n", n)
		return img, nil
	case StepStore:
		name, err := r.Badge.Store(ctx, step.Arg, img)
		if err != nil {
			return pixels.Buffer{}, err
		}
		r.printf("stored image as %q\n", name)
		return img, nil
	default:
		return pixels.Buffer{}, fmt.Errorf("unknown step %q", step.Name)
	}
}

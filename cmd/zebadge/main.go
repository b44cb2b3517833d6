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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zebadge/internal/telemetry"
	"github.com/ZaparooProject/zebadge/pkg/api/client"
	"github.com/ZaparooProject/zebadge/pkg/badge/transport"
	"github.com/ZaparooProject/zebadge/pkg/cli"
	"github.com/ZaparooProject/zebadge/pkg/config"
	"github.com/ZaparooProject/zebadge/pkg/helpers"
	"github.com/ZaparooProject/zebadge/pkg/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnErr error) {
	set := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	flags := cli.SetupFlags(set)
	set.Usage = func() {
		_, _ = fmt.Fprintf(set.Output(), "Usage: %s [flags] [raw command...]\n\n", config.AppName)
		_, _ = fmt.Fprintln(set.Output(), "Badge steps run first, in order. Image steps run on -input in order.")
		set.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *flags.Version {
		_, _ = fmt.Printf("Zebadge v%s\n", config.AppVersion)
		return nil
	}
	if flags.Empty() {
		set.Usage()
		return nil
	}

	var writers []io.Writer
	if *flags.Debug || *flags.Serve {
		writers = append(writers, helpers.ConsoleWriter())
	}
	cfg, err := cli.Setup(config.BaseDefaults, *flags.Debug, writers)
	if err != nil {
		return err
	}
	defer telemetry.Close()
	if *flags.Port != "" {
		cfg.SetDevicePort(*flags.Port)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *flags.Ports {
		opts := cli.TransportOptions(cfg)
		return cli.ListPorts(os.Stdout, transport.SerialEnumerator{}, opts.Matcher)
	}

	mgr := cli.NewBadge(cfg)
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close badge")
		}
	}()

	if *flags.Serve {
		return cli.Serve(ctx, cfg, mgr)
	}

	fit, err := pipeline.FromConfig(cfg.Image())
	if err != nil {
		return err
	}
	runner := &cli.Runner{
		Badge:   mgr,
		Fs:      afero.NewOsFs(),
		Fetcher: client.New("", ""),
		Out:     os.Stdout,
		Fit:     fit,
	}
	return runner.Run(ctx, flags)
}

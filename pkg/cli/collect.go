// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/tracecollect/pkg/collector"
	"github.com/NVIDIA/tracecollect/pkg/config"
	"github.com/NVIDIA/tracecollect/pkg/defaults"
	"github.com/NVIDIA/tracecollect/pkg/detect"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
	"github.com/NVIDIA/tracecollect/pkg/provider"
	"github.com/NVIDIA/tracecollect/pkg/serializer"
)

const defaultProfile = "default"

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		EnableShellCompletion: true,
		Usage:                 "Collect a trace from a running application",
		Description: `Collect a trace from a running managed application.

Filters are built from any combination of:
  - profiles (--profile), appended in order
  - provider specs (--provider name[:keywords[:level]])
  - logger specs (--logger prefix[:level]), folded into the logging provider

When no filter is given the default profile is used.

By default the control file handshake is used: the configuration is written
next to the application and the trace segments it produces are drained and
decoded. Use --session to record through an OS trace session instead.

The collection ends when the target exits, --duration elapses, or the
command is interrupted.`,
		Flags: []cli.Flag{
			pidFlag(),
			configPathFlag(),
			&cli.BoolFlag{
				Name:  "session",
				Usage: "Record through an OS trace session instead of the control file handshake",
			},
			&cli.StringFlag{
				Name:  "session-file",
				Usage: fmt.Sprintf("Session output file (default: {output}/%s)", defaults.SessionFileName),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory trace output is written to",
				Sources: cli.EnvVars("TRACECOLLECT_OUTPUT"),
			},
			&cli.IntFlag{
				Name:  "buffer-mb",
				Usage: "Circular buffer size in megabytes (runtime default when omitted)",
			},
			&cli.StringSliceFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Provider spec name[:keywords[:level]] (can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:    "logger",
				Aliases: []string{"l"},
				Usage:   "Logger spec prefix[:level] (can be repeated)",
			},
			&cli.StringSliceFlag{
				Name: "profile",
				Usage: fmt.Sprintf("Profile to apply (can be repeated, supported values: %s)",
					strings.Join(provider.Default().ProfileNames(), ", ")),
			},
			&cli.DurationFlag{
				Name:  "flush-interval",
				Usage: "Interval between checks for completed trace segments",
				Value: defaults.FlushInterval,
			},
			&cli.DurationFlag{
				Name:  "duration",
				Usage: "Stop collecting after this long (default: until the target exits)",
			},
			&cli.StringFlag{
				Name:  "events",
				Usage: "Write decoded events to this file ('-' for stdout)",
			},
			formatFlag(),
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write collection metrics in Prometheus text format to this file on exit",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			kind := collector.KindHandshake
			if cmd.Bool("session") {
				kind = collector.KindSession
			}

			var t target
			if kind == collector.KindHandshake {
				d := detect.New()
				t, err = resolveTarget(ctx, cmd, d)
				if err != nil {
					return err
				}
				if t, err = withOwner(ctx, t, d); err != nil {
					return err
				}
			} else {
				t.pid = cmd.Int("pid")
			}

			catalog := provider.Default()
			cfg, err := buildConfiguration(cmd, t.pid, catalog)
			if err != nil {
				return err
			}

			c, err := collector.New(kind, cfg,
				collector.WithControlPath(t.controlPath),
				collector.WithSessionFile(cmd.String("session-file")),
				collector.WithFlushInterval(cmd.Duration("flush-interval")),
				collector.WithLogger(slog.Default()),
				collector.WithCatalog(catalog),
			)
			if err != nil {
				return err
			}

			sink, closeSink, err := newEventSink(cmd.String("events"), outFormat)
			if err != nil {
				return err
			}
			defer closeSink()

			err = runCollection(ctx, c, sink, t.pid, cmd.Duration("duration"), detect.System{})

			if path := cmd.String("metrics-file"); path != "" {
				if merr := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); merr != nil {
					slog.Warn("failed to write metrics file", "path", path, "error", merr)
				}
			}
			return err
		},
	}
}

// buildConfiguration assembles the collection configuration from flags.
func buildConfiguration(cmd *cli.Command, pid int, catalog *provider.Catalog) (*config.Configuration, error) {
	var opts []config.Option
	if pid > 0 {
		opts = append(opts, config.WithProcessID(pid))
	}
	if out := cmd.String("output"); out != "" {
		opts = append(opts, config.WithOutputPath(out))
	}
	if cmd.IsSet("buffer-mb") {
		opts = append(opts, config.WithCircularBufferMB(cmd.Int("buffer-mb")))
	}
	cfg := config.New(opts...)

	for _, n := range cmd.StringSlice("profile") {
		p, ok := catalog.FindProfile(n)
		if !ok {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown profile %q", n),
				map[string]any{"supported": catalog.ProfileNames()})
		}
		cfg.AddProfile(p)
	}

	for _, token := range cmd.StringSlice("provider") {
		spec, err := catalog.ParseEventSpec(token)
		if err != nil {
			return nil, err
		}
		cfg.AddProvider(spec)
	}

	for _, token := range cmd.StringSlice("logger") {
		spec, err := provider.ParseLoggerSpec(token)
		if err != nil {
			return nil, err
		}
		cfg.AddLogger(spec)
	}

	if !cfg.HasFilters() {
		p, ok := catalog.FindProfile(defaultProfile)
		if !ok {
			return nil, cnserrors.New(cnserrors.ErrCodeInternal, "default profile missing from catalog")
		}
		slog.Info("no filters given, using default profile")
		cfg.AddProfile(p)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEventSink returns a sink writing events to path, or one that only
// counts them when path is empty.
func newEventSink(path string, format serializer.Format) (collector.Sink, func(), error) {
	var count atomic.Int64
	counted := func(n int) {
		total := count.Add(int64(n))
		slog.Debug("events received", "batch", n, "total", total)
	}

	if path == "" {
		sink := collector.SinkFunc(func(_ context.Context, events []collector.Event) error {
			counted(len(events))
			return nil
		})
		return sink, func() {}, nil
	}

	w, err := serializer.NewFileWriterOrStdout(format, path)
	if err != nil {
		return nil, nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "cannot open events output", err)
	}

	sink := collector.SinkFunc(func(ctx context.Context, events []collector.Event) error {
		for _, e := range events {
			if err := w.Serialize(ctx, e); err != nil {
				return err
			}
		}
		counted(len(events))
		return nil
	})
	closeFn := func() {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close events output", "path", path, "error", err)
		}
	}
	return sink, closeFn, nil
}

// runCollection starts c, drains it until ctx is done, the duration elapses
// or the target exits, then stops it and hands the remaining events to sink.
func runCollection(ctx context.Context, c collector.Collector, sink collector.Sink, pid int, duration time.Duration, lc livenessChecker) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	if duration > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, duration)
		defer cancelTimeout()
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancelRun()
		return collector.Run(gctx, c, sink, defaults.IdleWait)
	})
	if pid > 0 && lc != nil {
		g.Go(func() error {
			return watchTarget(gctx, pid, defaults.TargetWatchInterval, lc, cancelRun)
		})
	}
	runErr := g.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.WithoutCancel(ctx), defaults.StopTimeout)
	defer cancelStop()
	if err := c.Stop(stopCtx); err != nil {
		return errors.Join(runErr, err)
	}

	drainErr := drainRemaining(stopCtx, c, sink)
	if runErr == nil && drainErr == nil {
		slog.Info("collection stopped")
	}
	return errors.Join(runErr, drainErr)
}

func drainRemaining(ctx context.Context, c collector.Collector, sink collector.Sink) error {
	events, err := c.Drain(ctx)
	if len(events) > 0 {
		if werr := sink.Write(ctx, events); werr != nil {
			return errors.Join(err, werr)
		}
	}
	return err
}

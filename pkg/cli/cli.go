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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/tracecollect/pkg/logging"
	"github.com/NVIDIA/tracecollect/pkg/serializer"
)

const (
	name           = "tracecollect"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

func pidFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "pid",
		Usage:   "Target process id (when omitted, taken from the application using --config-path, or discovered when a single managed application runs)",
		Sources: cli.EnvVars("TRACECOLLECT_PID"),
	}
}

func configPathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config-path",
		Usage: "Control file path (detected from the target process when omitted)",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (supported values: %v)", serializer.SupportedFormats()),
	}
}

// Execute runs the root command with the process arguments. It exits with
// status 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Collect diagnostic traces from running managed applications",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars(logging.EnvLogLevel),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.String("log-level")
			logging.SetDefaultStructuredLoggerWithLevel(name, version, logLevel)
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"logLevel", logLevel)
			return ctx, nil
		},
		Commands: []*cli.Command{
			collectCmd(),
			profilesCmd(),
			statusCmd(),
			stopCmd(),
		},
	}
}

// commandLister prints visible sub-command names for shell completion.
func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil {
		return
	}
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	for _, c := range cmd.Commands {
		if c.Hidden {
			continue
		}
		fmt.Fprintln(w, c.Name)
	}
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	return serializer.ParseFormat(cmd.String("format"))
}

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
	"io/fs"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/tracecollect/pkg/config"
	"github.com/NVIDIA/tracecollect/pkg/detect"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
	"github.com/NVIDIA/tracecollect/pkg/header"
	"github.com/NVIDIA/tracecollect/pkg/serializer"
)

type statusView struct {
	header.Header `json:",inline" yaml:",inline"`

	ControlFile      string   `json:"controlFile" yaml:"controlFile"`
	Active           bool     `json:"active" yaml:"active"`
	ProcessID        *int     `json:"processId,omitempty" yaml:"processId,omitempty"`
	OutputPath       string   `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`
	CircularBufferMB *int     `json:"circularBufferMB,omitempty" yaml:"circularBufferMB,omitempty"`
	Providers        []string `json:"providers,omitempty" yaml:"providers,omitempty"`
	Loggers          []string `json:"loggers,omitempty" yaml:"loggers,omitempty"`
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:                  "status",
		EnableShellCompletion: true,
		Usage:                 "Report whether a collection is active for an application",
		Flags: []cli.Flag{
			pidFlag(),
			configPathFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			t, err := resolveTarget(ctx, cmd, detect.New())
			if err != nil {
				return err
			}

			v, err := describeControlFile(t.controlPath)
			if err != nil {
				return err
			}

			w, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			if err != nil {
				return err
			}
			defer w.Close()

			return w.Serialize(ctx, v)
		},
	}
}

func describeControlFile(path string) (statusView, error) {
	v := statusView{
		Header:      header.New(header.KindCollectionStatus, header.WithVersion(version)),
		ControlFile: path,
	}

	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return v, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"control file cannot be read", err, map[string]any{"path": path})
	}

	v.Active = true
	v.ProcessID = cfg.ProcessID()
	v.OutputPath = cfg.OutputPath()
	v.CircularBufferMB = cfg.CircularBufferMB()
	for _, s := range cfg.Providers() {
		v.Providers = append(v.Providers, s.String())
	}
	for _, l := range cfg.Loggers() {
		v.Loggers = append(v.Loggers, l.String())
	}
	return v, nil
}

func stopCmd() *cli.Command {
	return &cli.Command{
		Name:                  "stop",
		EnableShellCompletion: true,
		Usage:                 "Remove a stale control file left by an interrupted collection",
		Description: `Remove the control file of an application, which makes its runtime stop
writing trace segments. Only use this when the collecting process is gone;
a running collect command removes the file itself when it stops.`,
		Flags: []cli.Flag{
			pidFlag(),
			configPathFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			t, err := resolveTarget(ctx, cmd, detect.New())
			if err != nil {
				return err
			}
			if err := removeControlFile(t.controlPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "removed %s\n", t.controlPath)
			return nil
		},
	}
}

func removeControlFile(path string) error {
	err := os.Remove(path)
	switch {
	case err == nil:
		slog.Info("control file removed", "path", path)
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
			"no collection is active for this application", err, map[string]any{"path": path})
	default:
		return cnserrors.WrapWithContext(cnserrors.ErrCodeCleanup,
			"failed to remove control file", err, map[string]any{"path": path})
	}
}

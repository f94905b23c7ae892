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
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/tracecollect/pkg/detect"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

// target identifies the application a command operates on.
type target struct {
	pid         int
	controlPath string
}

// resolveTarget determines the target from --config-path and --pid. An
// explicit path wins; a pid is resolved through module detection; with
// neither, the single managed application on the host is discovered.
func resolveTarget(ctx context.Context, cmd *cli.Command, d *detect.Detector) (target, error) {
	t := target{
		pid:         cmd.Int("pid"),
		controlPath: cmd.String("config-path"),
	}
	if t.pid < 0 {
		return target{}, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"process id must be positive", map[string]any{"pid": t.pid})
	}

	switch {
	case t.controlPath != "":
		return t, nil
	case t.pid > 0:
		path, err := d.Detect(ctx, t.pid)
		if err != nil {
			return target{}, err
		}
		t.controlPath = path
	default:
		pid, path, err := d.Discover(ctx)
		if err != nil {
			return target{}, err
		}
		slog.Info("discovered target process", "pid", pid, "controlFile", path)
		t.pid, t.controlPath = pid, path
	}
	return t, nil
}

// withOwner fills in the pid of a target given only by --config-path from
// the running process that uses that control file path.
func withOwner(ctx context.Context, t target, d *detect.Detector) (target, error) {
	if t.pid > 0 {
		return t, nil
	}
	pid, err := d.Owner(ctx, t.controlPath)
	if err != nil {
		return target{}, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"--pid is required with --config-path unless exactly one running application uses that path",
			err, map[string]any{"path": t.controlPath})
	}
	slog.Info("resolved target process from control file path", "pid", pid, "controlFile", t.controlPath)
	t.pid = pid
	return t, nil
}

// livenessChecker reports whether a process is still running.
type livenessChecker interface {
	Alive(ctx context.Context, pid int) (bool, error)
}

// watchTarget polls pid every interval and calls onExit once it is gone.
// It returns when ctx is done or the target exited.
func watchTarget(ctx context.Context, pid int, interval time.Duration, lc livenessChecker, onExit func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			alive, err := lc.Alive(ctx, pid)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Debug("target liveness check failed", "pid", pid, "error", err)
				continue
			}
			if !alive {
				slog.Info("target process exited", "pid", pid)
				onExit()
				return nil
			}
		}
	}
}

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

package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/tracecollect/pkg/defaults"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

const discoverConcurrency = 8

// ProcessLister enumerates process ids on the host.
type ProcessLister interface {
	Processes(ctx context.Context) ([]int, error)
}

// Discover returns the only process on the host that hosts a managed
// application with a resolvable control file path. Zero or several
// candidates is an error.
func (d *Detector) Discover(ctx context.Context) (int, string, error) {
	found, err := d.scan(ctx)
	if err != nil {
		return 0, "", err
	}

	switch len(found) {
	case 0:
		return 0, "", cnserrors.Wrap(cnserrors.ErrCodeNotFound,
			"no process hosts a managed application", ErrNoManagedAppFound)
	case 1:
		for pid, path := range found {
			return pid, path, nil
		}
	}

	return 0, "", cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
		"several processes host managed applications, select one with --pid",
		map[string]any{"candidates": sortedPIDs(found)})
}

// Owner returns the only process whose detected control file path is
// controlPath.
func (d *Detector) Owner(ctx context.Context, controlPath string) (int, error) {
	want, err := filepath.Abs(controlPath)
	if err != nil {
		return 0, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"invalid control file path", err, map[string]any{"path": controlPath})
	}

	found, err := d.scan(ctx)
	if err != nil {
		return 0, err
	}
	for pid, path := range found {
		if abs, err := filepath.Abs(path); err != nil || abs != want {
			delete(found, pid)
		}
	}

	switch len(found) {
	case 0:
		return 0, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
			"no process uses this control file path", ErrNoManagedAppFound,
			map[string]any{"path": controlPath})
	case 1:
		for pid := range found {
			return pid, nil
		}
	}

	return 0, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
		"several processes use this control file path, select one with --pid",
		map[string]any{"path": controlPath, "candidates": sortedPIDs(found)})
}

// scan detects the control file path of every process except this one.
func (d *Detector) scan(ctx context.Context) (map[int]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.DiscoverTimeout)
	defer cancel()

	pids, err := d.processes.Processes(ctx)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to list processes", err)
	}

	self := os.Getpid()

	var (
		mu    sync.Mutex
		found = map[int]string{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(discoverConcurrency)
	for _, pid := range pids {
		if pid == self {
			continue
		}
		g.Go(func() error {
			path, err := d.Detect(gctx, pid)
			if err != nil {
				// processes exit or deny access during the scan
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return nil
			}
			mu.Lock()
			found[pid] = path
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeTimeout, "process discovery interrupted", err)
	}
	return found, nil
}

func sortedPIDs(found map[int]string) []int {
	pids := make([]int, 0, len(found))
	for pid := range found {
		pids = append(pids, pid)
	}
	slices.Sort(pids)
	return pids
}

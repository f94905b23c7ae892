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
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/shirou/gopsutil/v3/process"

	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

// System reads modules and processes from the host through gopsutil.
type System struct{}

// Modules returns the absolute paths of file-backed mappings of pid,
// de-duplicated, in mapping order.
func (System) Modules(ctx context.Context, pid int) ([]string, error) {
	id, err := processID(pid)
	if err != nil {
		return nil, err
	}

	p, err := process.NewProcessWithContext(ctx, id)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
			"target process not found", err, map[string]any{"pid": pid})
	}

	maps, err := p.MemoryMapsWithContext(ctx, false)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to read process modules", err, map[string]any{"pid": pid})
	}
	if maps == nil {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(*maps))
	modules := make([]string, 0, len(*maps))
	for _, m := range *maps {
		path := strings.TrimSpace(m.Path)
		// anonymous and pseudo mappings such as [heap] or [vdso]
		if path == "" || !filepath.IsAbs(path) {
			continue
		}
		path = strings.TrimSuffix(path, " (deleted)")
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		modules = append(modules, path)
	}
	return modules, nil
}

// Processes returns the ids of all processes on the host.
func (System) Processes(ctx context.Context) ([]int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]int, 0, len(pids))
	for _, pid := range pids {
		res = append(res, int(pid))
	}
	return res, nil
}

// Alive reports whether pid is still running.
func (System) Alive(ctx context.Context, pid int) (bool, error) {
	id, err := processID(pid)
	if err != nil {
		return false, err
	}
	return process.PidExistsWithContext(ctx, id)
}

func processID(pid int) (int32, error) {
	id, err := safecast.Conv[int32](pid)
	if err != nil {
		return 0, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"process id out of range", err, map[string]any{"pid": pid})
	}
	return id, nil
}

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
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/tracecollect/pkg/defaults"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

// ErrNoManagedAppFound is returned when no loaded module qualifies as the
// application.
var ErrNoManagedAppFound = errors.New("no managed application found in target process")

// ModuleLister enumerates the file-backed modules of a process in load order.
type ModuleLister interface {
	Modules(ctx context.Context, pid int) ([]string, error)
}

// Detector resolves control file paths for target processes.
type Detector struct {
	lister     ModuleLister
	classifier ModuleClassifier
	exists     func(path string) bool
	processes  ProcessLister
	logger     *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithModuleLister overrides module enumeration.
func WithModuleLister(l ModuleLister) Option {
	return func(d *Detector) {
		d.lister = l
	}
}

// WithClassifier overrides module classification.
func WithClassifier(c ModuleClassifier) Option {
	return func(d *Detector) {
		d.classifier = c
	}
}

// WithExists overrides the file existence check.
func WithExists(fn func(path string) bool) Option {
	return func(d *Detector) {
		d.exists = fn
	}
}

// WithProcessLister overrides process enumeration used by Discover.
func WithProcessLister(l ProcessLister) Option {
	return func(d *Detector) {
		d.processes = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = l
	}
}

// New returns a Detector backed by the host process table.
func New(opts ...Option) *Detector {
	d := &Detector{
		lister:     System{},
		classifier: ExtensionClassifier{Platform: CurrentPlatform()},
		exists:     fileExists,
		processes:  System{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the control file path for the application hosted by pid.
func (d *Detector) Detect(ctx context.Context, pid int) (string, error) {
	if pid <= 0 {
		return "", cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"process id must be positive", map[string]any{"pid": pid})
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.DetectTimeout)
	defer cancel()

	modules, err := d.lister.Modules(ctx, pid)
	if err != nil {
		return "", err
	}

	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !d.classifier.IsManaged(m) {
			continue
		}
		dir := filepath.Dir(m)
		for _, name := range appNames(m) {
			if !d.exists(filepath.Join(dir, name+defaults.DependencyManifestSuffix)) {
				continue
			}
			path := filepath.Join(dir, name+defaults.ControlFileExtension)
			d.logger.Debug("detected managed application",
				"pid", pid,
				"module", m,
				"controlFile", path,
			)
			return path, nil
		}
	}

	return "", cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
		"control file path detection failed", ErrNoManagedAppFound,
		map[string]any{"pid": pid, "modules": len(modules)})
}

// managedExtensions are stripped to form the application name. Any other
// suffix may belong to an extension-less host such as My.App.
var managedExtensions = map[string]bool{".dll": true, ".exe": true}

// appNames returns the application names a module may carry, most likely
// first.
func appNames(path string) []string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stripped := strings.TrimSuffix(base, ext)
	switch {
	case ext == "":
		return []string{base}
	case managedExtensions[strings.ToLower(ext)]:
		return []string{stripped}
	default:
		return []string{base, stripped}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

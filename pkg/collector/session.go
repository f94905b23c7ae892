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

package collector

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/tracecollect/pkg/config"
	"github.com/NVIDIA/tracecollect/pkg/defaults"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
	"github.com/NVIDIA/tracecollect/pkg/provider"
)

// SessionOptions configures a new OS trace session.
type SessionOptions struct {
	Name             string
	OutputFile       string
	CircularBufferMB int
}

// ProviderEnable enables one provider in a trace session.
type ProviderEnable struct {
	GUID     uuid.UUID
	Name     string
	Keywords uint64
	Level    provider.Level
	// ProcessID scopes the provider to one process; zero means all.
	ProcessID int
	// Arguments is the provider filter data in Key=Value form.
	Arguments string
}

// SessionProvider opens OS trace sessions.
type SessionProvider interface {
	// Available returns an error when sessions cannot be opened on this host.
	Available() error
	Open(ctx context.Context, opts SessionOptions) (TraceSession, error)
}

// TraceSession is an open OS trace session.
type TraceSession interface {
	EnableProvider(ctx context.Context, p ProviderEnable) error
	// Close flushes buffered events to the output file and ends the session.
	Close(ctx context.Context) error
}

// unsupportedSessions is the provider used where no session backend exists.
type unsupportedSessions struct{}

func (unsupportedSessions) Available() error {
	return cnserrors.WrapWithContext(cnserrors.ErrCodePlatform,
		"session collection is unavailable", ErrUnsupportedPlatform,
		map[string]any{"os": runtime.GOOS})
}

func (u unsupportedSessions) Open(context.Context, SessionOptions) (TraceSession, error) {
	return nil, u.Available()
}

// SessionCollector records through an OS trace session. Events are persisted
// by the session, so ReadLatest never returns any.
type SessionCollector struct {
	cfg        *config.Configuration
	outputFile string
	opts       *options

	state   State
	session TraceSession
}

func newSessionCollector(cfg *config.Configuration, o *options) *SessionCollector {
	out := o.sessionFile
	if out == "" {
		out = filepath.Join(cfg.OutputPath(), defaults.SessionFileName)
	}
	return &SessionCollector{
		cfg:        cfg,
		outputFile: out,
		opts:       o,
		state:      StateIdle,
	}
}

// OutputFile returns the file the session writes to.
func (c *SessionCollector) OutputFile() string {
	return c.outputFile
}

// State implements Collector.
func (c *SessionCollector) State() State {
	return c.state
}

// Start opens the session and enables every configured provider. Platform
// support is checked before anything is created.
func (c *SessionCollector) Start(ctx context.Context) error {
	if c.state != StateIdle {
		return invalidState("start", c.state)
	}
	if err := c.opts.sessions.Available(); err != nil {
		if cnserrors.CodeOf(err) == "" {
			err = cnserrors.Wrap(cnserrors.ErrCodePlatform, "session collection is unavailable", err)
		}
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	if _, err := os.Stat(c.outputFile); err == nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodePrecondition,
			"session output file already exists", ErrOutputAlreadyExists,
			map[string]any{"path": c.outputFile})
	} else if !errors.Is(err, fs.ErrNotExist) {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to check session output file", err, map[string]any{"path": c.outputFile})
	}

	name := "tracecollect-" + uuid.NewString()
	session, err := c.opts.sessions.Open(ctx, SessionOptions{
		Name:             name,
		OutputFile:       c.outputFile,
		CircularBufferMB: ptr.Deref(c.cfg.CircularBufferMB(), 0),
	})
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to open trace session", err, map[string]any{"session": name})
	}

	pid := ptr.Deref(c.cfg.ProcessID(), 0)
	for _, spec := range c.cfg.EffectiveProviders() {
		enable := ProviderEnable{
			GUID:      c.opts.catalog.GUID(spec.Provider),
			Name:      spec.Provider,
			Keywords:  spec.Keywords,
			Level:     spec.Level,
			ProcessID: pid,
			Arguments: spec.FilterData,
		}
		if err := session.EnableProvider(ctx, enable); err != nil {
			if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
				c.opts.logger.Warn("failed to close trace session", "session", name, "error", closeErr)
			}
			return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
				"failed to enable provider", err, map[string]any{"provider": spec.Provider})
		}
		c.opts.logger.Debug("provider enabled",
			"provider", spec.Provider,
			"guid", enable.GUID.String(),
			"keywords", spec.Keywords,
			"level", spec.Level.String(),
		)
	}

	c.session = session
	c.state = StateCollecting
	c.opts.logger.Info("trace session started", "session", name, "output", c.outputFile)
	return nil
}

// ReadLatest implements Collector. The session owns its events.
func (c *SessionCollector) ReadLatest(ctx context.Context) ([]Event, error) {
	if c.state != StateCollecting {
		return nil, invalidState("read", c.state)
	}
	return nil, ctx.Err()
}

// Stop flushes and closes the session.
func (c *SessionCollector) Stop(ctx context.Context) error {
	if c.state != StateCollecting {
		return invalidState("stop", c.state)
	}
	c.state = StateStopped

	if err := c.session.Close(ctx); err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to close trace session", err, map[string]any{"output": c.outputFile})
	}
	c.opts.logger.Info("trace session stopped", "output", c.outputFile)
	return nil
}

// Drain implements Collector. Close already flushed the session.
func (c *SessionCollector) Drain(ctx context.Context) ([]Event, error) {
	if c.state != StateStopped {
		return nil, invalidState("drain", c.state)
	}
	return nil, ctx.Err()
}

var _ Collector = (*SessionCollector)(nil)

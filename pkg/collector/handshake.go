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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/tracecollect/pkg/config"
	"github.com/NVIDIA/tracecollect/pkg/defaults"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

// SegmentResult is the outcome of consuming one trace segment.
type SegmentResult struct {
	Index     int
	Path      string
	Events    []Event
	Attempts  int
	Abandoned bool
	// Err is the last decode failure of an abandoned segment.
	Err error
}

// SegmentObserver is notified after each segment is consumed.
type SegmentObserver interface {
	ObserveSegment(res SegmentResult)
}

// SegmentObserverFunc adapts a function to SegmentObserver.
type SegmentObserverFunc func(res SegmentResult)

// ObserveSegment implements SegmentObserver.
func (f SegmentObserverFunc) ObserveSegment(res SegmentResult) {
	f(res)
}

// HandshakeCollector collects through a control file and the numbered
// segments the target runtime writes in response.
type HandshakeCollector struct {
	cfg         *config.Configuration
	controlPath string
	segmentDir  string
	prefix      string
	pid         int
	opts        *options
	waitLog     rate.Sometimes

	state   State
	drained bool
	// counter is the index of the segment currently being written.
	counter int
}

func newHandshakeCollector(cfg *config.Configuration, o *options) (*HandshakeCollector, error) {
	if o.controlPath == "" {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "control file path is required")
	}
	pid := ptr.Deref(cfg.ProcessID(), 0)
	if pid <= 0 {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "handshake collection requires a target process id")
	}

	dir := cfg.OutputPath()
	if dir == "" {
		dir = filepath.Dir(o.controlPath)
	}
	base := filepath.Base(o.controlPath)

	return &HandshakeCollector{
		cfg:         cfg,
		controlPath: o.controlPath,
		segmentDir:  dir,
		prefix:      strings.TrimSuffix(base, filepath.Ext(base)),
		pid:         pid,
		opts:        o,
		waitLog:     rate.Sometimes{First: 1, Interval: 30 * time.Second},
		state:       StateIdle,
		counter:     1,
	}, nil
}

// ControlPath returns the control file path.
func (c *HandshakeCollector) ControlPath() string {
	return c.controlPath
}

// State implements Collector.
func (c *HandshakeCollector) State() State {
	return c.state
}

// SegmentPath returns the path of segment n.
func (c *HandshakeCollector) SegmentPath(n int) string {
	return filepath.Join(c.segmentDir, fmt.Sprintf("%s.%d.%d%s", c.prefix, c.pid, n, defaults.SegmentExtension))
}

// Start publishes the control file. It fails with ErrControlFileExists
// when one is already present and never overwrites it.
func (c *HandshakeCollector) Start(ctx context.Context) error {
	if c.state != StateIdle {
		return invalidState("start", c.state)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	// advisory; publish below is create-or-fail
	if _, err := os.Stat(c.controlPath); err == nil {
		return controlFileExists(c.controlPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to check control file", err, map[string]any{"path": c.controlPath})
	}

	if err := publish(c.controlPath, []byte(c.cfg.Serialize())); err != nil {
		return err
	}

	c.state = StateCollecting
	c.opts.logger.Info("control file published",
		"path", c.controlPath,
		"pid", c.pid,
		"segments", c.segmentDir,
	)
	return nil
}

// ReadLatest consumes at most one completed segment. While the next segment
// is absent it waits for the flush interval and checks again, or returns no
// events when no flush interval is configured. Cancellation returns
// ctx.Err() without consuming anything.
func (c *HandshakeCollector) ReadLatest(ctx context.Context) ([]Event, error) {
	if c.state != StateCollecting {
		return nil, invalidState("read", c.state)
	}

	current, next := c.SegmentPath(c.counter), c.SegmentPath(c.counter+1)
	for !exists(next) {
		if c.opts.flushInterval <= 0 {
			return nil, nil
		}
		c.waitLog.Do(func() {
			c.opts.logger.Debug("waiting for next segment", "path", next)
		})
		if err := c.sleep(ctx, c.opts.flushInterval); err != nil {
			return nil, err
		}
	}

	res, err := c.decode(ctx, current)
	if err != nil {
		return nil, err
	}

	c.record(res)
	c.counter++
	c.cleanup(current)

	return res.Events, nil
}

// Stop removes the control file, which tells the runtime to stop writing
// segments. Segments not yet consumed are left for Drain. Failure to remove
// the control file is logged and not returned.
func (c *HandshakeCollector) Stop(_ context.Context) error {
	if c.state != StateCollecting {
		return invalidState("stop", c.state)
	}
	c.state = StateStopped

	if err := os.Remove(c.controlPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cleanupFailures.Inc()
		c.opts.logger.Warn("failed to remove control file",
			"error", cnserrors.WrapWithContext(cnserrors.ErrCodeCleanup,
				"control file removal failed", err, map[string]any{"path": c.controlPath}),
		)
		return nil
	}

	c.opts.logger.Info("control file removed", "path", c.controlPath, "lastSegment", c.counter)
	return nil
}

// Drain consumes every segment left on disk after Stop, starting with the
// one the runtime was writing. It waits up to the final segment wait for that
// segment to appear, then decodes each with the same retry policy as
// ReadLatest. A cancelled Drain may be called again.
func (c *HandshakeCollector) Drain(ctx context.Context) ([]Event, error) {
	if c.state != StateStopped || c.drained {
		return nil, invalidState("drain", c.state)
	}

	current := c.SegmentPath(c.counter)
	if err := c.awaitSegment(ctx, current); err != nil {
		return nil, err
	}

	var events []Event
	for exists(current) {
		res, err := c.decode(ctx, current)
		if err != nil {
			return events, err
		}
		c.record(res)
		c.counter++
		c.cleanup(current)

		events = append(events, res.Events...)
		current = c.SegmentPath(c.counter)
	}

	c.drained = true
	c.opts.logger.Info("segments drained", "lastSegment", c.counter-1, "events", len(events))
	return events, nil
}

func (c *HandshakeCollector) awaitSegment(ctx context.Context, path string) error {
	deadline := c.opts.clock.Now().Add(c.opts.finalWait)
	for !exists(path) {
		remaining := deadline.Sub(c.opts.clock.Now())
		if remaining <= 0 {
			c.opts.logger.Debug("no final segment", "path", path)
			return nil
		}
		if err := c.sleep(ctx, min(remaining, defaults.FinalSegmentPoll)); err != nil {
			return err
		}
	}
	return nil
}

func (c *HandshakeCollector) decode(ctx context.Context, path string) (SegmentResult, error) {
	start := c.opts.clock.Now()
	defer func() {
		segmentDecodeDuration.Observe(c.opts.clock.Now().Sub(start).Seconds())
	}()

	res := SegmentResult{Index: c.counter, Path: path}

	var lastErr error
	for attempt := 1; attempt <= defaults.SegmentDecodeAttempts; attempt++ {
		res.Attempts = attempt
		segmentDecodeAttempts.Inc()

		events, err := c.opts.decoder.Decode(ctx, path)
		if err == nil {
			res.Events = events
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return SegmentResult{}, ctxErr
		}

		lastErr = err
		c.opts.logger.Debug("segment decode failed",
			"path", path,
			"attempt", attempt,
			"error", err,
		)

		if attempt < defaults.SegmentDecodeAttempts {
			if err := c.sleep(ctx, c.opts.retryDelay); err != nil {
				return SegmentResult{}, err
			}
		}
	}

	res.Abandoned = true
	res.Err = cnserrors.WrapWithContext(cnserrors.ErrCodeTransientIO,
		"segment abandoned after decode retries", lastErr,
		map[string]any{"path": path, "attempts": res.Attempts})
	return res, nil
}

func (c *HandshakeCollector) record(res SegmentResult) {
	if res.Abandoned {
		segmentsTotal.WithLabelValues(statusAbandoned).Inc()
		c.opts.logger.Warn("segment abandoned",
			"index", res.Index,
			"path", res.Path,
			"error", res.Err,
		)
	} else {
		segmentsTotal.WithLabelValues(statusDecoded).Inc()
		eventsTotal.Add(float64(len(res.Events)))
		c.opts.logger.Debug("segment decoded",
			"index", res.Index,
			"events", len(res.Events),
			"attempts", res.Attempts,
		)
	}

	if c.opts.observer != nil {
		c.opts.observer.ObserveSegment(res)
	}
}

// cleanup deletes a consumed segment and its decode artifact.
func (c *HandshakeCollector) cleanup(segment string) {
	artifact := strings.TrimSuffix(segment, defaults.SegmentExtension) + defaults.ArtifactExtension
	for _, path := range []string{segment, artifact} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			cleanupFailures.Inc()
			c.opts.logger.Warn("failed to delete consumed segment file",
				"error", cnserrors.WrapWithContext(cnserrors.ErrCodeCleanup,
					"segment cleanup failed", err, map[string]any{"path": path}),
			)
		}
	}
}

func (c *HandshakeCollector) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := c.opts.clock.Timer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}

// publish writes data to a temporary file and hard-links it to path, so the
// runtime never observes a partial control file and an existing file is
// never replaced.
func publish(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to create control file", err, map[string]any{"path": path})
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to write control file", err, map[string]any{"path": path})
	}
	if err := tmp.Chmod(defaults.ControlFileMode); err != nil {
		tmp.Close()
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to set control file mode", err, map[string]any{"path": path})
	}
	if err := tmp.Close(); err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to close control file", err, map[string]any{"path": path})
	}

	err = os.Link(tmpName, path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return controlFileExists(path)
	}

	// filesystems without hard links
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaults.ControlFileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return controlFileExists(path)
		}
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to create control file", err, map[string]any{"path": path})
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to write control file", err, map[string]any{"path": path})
	}
	return f.Close()
}

func controlFileExists(path string) error {
	return cnserrors.WrapWithContext(cnserrors.ErrCodePrecondition,
		"a collection is already in progress for this application", ErrControlFileExists,
		map[string]any{"path": path})
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var _ Collector = (*HandshakeCollector)(nil)

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

// Package collector runs one trace collection against a target process.
//
// # Overview
//
// Two implementations share the Collector interface:
//
//   - SessionCollector opens an operating-system trace session, enables every
//     configured provider in it and lets the session persist events to a
//     file. It is only available where the host provides such sessions.
//   - HandshakeCollector publishes the serialized configuration as a control
//     file next to the target application. The target runtime picks it up and
//     writes numbered trace segments, which the collector drains, decodes and
//     deletes. Removing the control file ends the collection.
//
// # Core Interface
//
//	type Collector interface {
//	    Start(ctx context.Context) error
//	    ReadLatest(ctx context.Context) ([]Event, error)
//	    Stop(ctx context.Context) error
//	    Drain(ctx context.Context) ([]Event, error)
//	    State() State
//	}
//
// A collector moves Idle -> Collecting -> Stopped exactly once. Calls made
// in any other state fail with ErrInvalidState.
//
// # Draining
//
// Segments are named {app}.{pid}.{n}.nettrace with n starting at 1. The
// runtime only opens segment n+1 after it finished writing segment n, so
// ReadLatest waits for the next segment before decoding the current one.
// Decoding is retried up to five times; a segment that still fails is
// reported as abandoned and the drain moves on. Consumed segments and their
// .etlx decode artifacts are deleted best effort.
//
// The segment being written when Stop removes the control file is only
// complete afterwards. Drain waits briefly for it and consumes it along with
// anything else still on disk.
//
// # Usage
//
//	c, err := collector.New(collector.KindHandshake, cfg,
//	    collector.WithControlPath(path),
//	    collector.WithFlushInterval(time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := c.Start(ctx); err != nil {
//	    return err
//	}
//	err = collector.Run(ctx, c, sink, defaults.IdleWait)
//	if err := c.Stop(context.WithoutCancel(ctx)); err != nil {
//	    return err
//	}
//	rest, err := c.Drain(context.WithoutCancel(ctx))
//
// # Metrics
//
// Drain progress is exported through Prometheus:
//   - tracecollect_segments_total{status}: segments decoded or abandoned
//   - tracecollect_segment_decode_attempts_total: decoder invocations
//   - tracecollect_segment_decode_duration_seconds: time spent per segment
//   - tracecollect_events_total: events returned to callers
//   - tracecollect_cleanup_failures_total: artifacts that could not be deleted
package collector

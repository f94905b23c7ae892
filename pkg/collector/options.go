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
	"log/slog"
	"time"

	"github.com/NVIDIA/tracecollect/pkg/defaults"
	"github.com/NVIDIA/tracecollect/pkg/provider"
)

type options struct {
	logger        *slog.Logger
	clock         Clock
	flushInterval time.Duration
	retryDelay    time.Duration
	finalWait     time.Duration
	decoder       Decoder
	observer      SegmentObserver
	controlPath   string
	sessions      SessionProvider
	sessionFile   string
	catalog       *provider.Catalog
}

// Option configures a Collector.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock overrides the clock used for waits.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithFlushInterval sets how long ReadLatest waits between checks for the
// next segment. Zero makes ReadLatest return immediately when no segment
// is complete.
func WithFlushInterval(d time.Duration) Option {
	return func(o *options) {
		o.flushInterval = d
	}
}

// WithRetryDelay sets the pause between decode attempts of one segment.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		o.retryDelay = d
	}
}

// WithFinalSegmentWait sets how long Drain waits for the last segment to
// appear after Stop. Zero drains only what is already on disk.
func WithFinalSegmentWait(d time.Duration) Option {
	return func(o *options) {
		o.finalWait = d
	}
}

// WithDecoder sets the segment decoder.
func WithDecoder(d Decoder) Option {
	return func(o *options) {
		o.decoder = d
	}
}

// WithObserver receives the outcome of every consumed segment.
func WithObserver(obs SegmentObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithControlPath sets the control file path of a handshake collection.
func WithControlPath(path string) Option {
	return func(o *options) {
		o.controlPath = path
	}
}

// WithSessionProvider sets the OS trace session backend.
func WithSessionProvider(p SessionProvider) Option {
	return func(o *options) {
		o.sessions = p
	}
}

// WithSessionFile sets the file a session collection writes to.
func WithSessionFile(path string) Option {
	return func(o *options) {
		o.sessionFile = path
	}
}

// WithCatalog sets the catalog used to resolve provider GUIDs.
func WithCatalog(c *provider.Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:     slog.Default(),
		clock:      realClock{},
		retryDelay: defaults.SegmentDecodeRetryDelay,
		finalWait:  defaults.FinalSegmentWait,
		decoder:    HeaderDecoder{},
		sessions:   unsupportedSessions{},
		catalog:    provider.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

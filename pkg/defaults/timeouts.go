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

package defaults

import "time"

// Drain loop timings.
const (
	// FlushInterval is the default delay between polls for the next trace segment.
	FlushInterval = 1 * time.Second

	// IdleWait is how long the run loop pauses after a read that returned
	// nothing because streaming reads are disabled.
	IdleWait = 1 * time.Second

	// SegmentDecodeRetryDelay is the pause between decode attempts of one segment.
	SegmentDecodeRetryDelay = 200 * time.Millisecond

	// TargetWatchInterval is how often the target process is checked for exit.
	TargetWatchInterval = 2 * time.Second

	// FinalSegmentWait bounds how long Drain waits for the runtime to
	// produce the segment it was writing when the control file was removed.
	FinalSegmentWait = 2 * time.Second

	// FinalSegmentPoll is the pause between checks for the final segment.
	FinalSegmentPoll = 100 * time.Millisecond
)

// Retry bounds.
const (
	// SegmentDecodeAttempts is the number of decode attempts made on a
	// completed segment before it is abandoned.
	SegmentDecodeAttempts = 5
)

// Handshake file naming.
const (
	// ControlFileExtension is appended to the application name to form the
	// control file the runtime polls for.
	ControlFileExtension = ".eventpipeconfig"

	// DependencyManifestSuffix marks the application entry module.
	DependencyManifestSuffix = ".deps.json"

	// SegmentExtension is the extension of trace segments written by the runtime.
	SegmentExtension = ".nettrace"

	// ArtifactExtension is the extension of intermediate decode artifacts.
	ArtifactExtension = ".etlx"

	// SessionFileName is the default OS session output file name.
	SessionFileName = "trace.etl"

	// ControlFileMode is the permission mode of published control files.
	ControlFileMode = 0o644
)

// Detection timeouts.
const (
	// DetectTimeout bounds module scanning of a single process.
	DetectTimeout = 10 * time.Second

	// DiscoverTimeout bounds ambient discovery across all processes.
	DiscoverTimeout = 30 * time.Second
)

// CLI timeouts.
const (
	// StopTimeout bounds collector shutdown after an interrupt.
	StopTimeout = 10 * time.Second
)

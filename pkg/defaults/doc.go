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

// Package defaults provides centralized configuration constants for tracecollect.
//
// This package defines poll intervals, retry bounds, file naming conventions
// and other defaults used across the codebase. Centralizing these values
// ensures consistency and makes tuning easier.
//
// # Categories
//
//   - Drain timings: flush interval, idle wait, decode retry delay
//   - Retry bounds: segment decode attempts
//   - Handshake file names: control file and segment extensions
//   - Detection timeouts: module scanning and process discovery
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/tracecollect/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.DetectTimeout)
//	defer cancel()
//
// # Guidelines
//
//   - SegmentDecodeAttempts is part of the collection contract and must stay 5
//   - Flush interval: 1s balances latency against directory polling
//   - Retry delay must stay well below the flush interval
package defaults

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

// Package cli implements the tracecollect command-line interface.
//
// # Commands
//
// collect - Collect a trace from a running application:
//
//	tracecollect collect --pid 4242 --profile aspnetcore --events events.json
//
// Builds a collection configuration from profiles, provider specs and logger
// specs, starts a collector against the target and drains its output until
// the target exits, --duration elapses or the command is interrupted. By
// default the control file handshake is used; --session records through an
// OS trace session instead.
//
// profiles - List compiled-in profiles and known providers:
//
//	tracecollect profiles --providers --format table
//
// status - Report whether a collection is active for an application:
//
//	tracecollect status --pid 4242
//
// stop - Remove a stale control file left by an interrupted collection:
//
//	tracecollect stop --config-path /app/MyApp.eventpipeconfig
//
// # Provider Specs
//
//	name[:keywords[:level[:filterdata]]]
//
// Keywords are a 0x-prefixed hex mask, '*', or comma-separated keyword
// names of a known provider. Level is 0-5 or a level name. Logger specs
// are prefix[:level] with logging levels Trace through None.
//
// # Global Flags
//
//	--log-level    Logging verbosity (debug, info, warn, error)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
//	LOG_LEVEL            Set logging verbosity
//	TRACECOLLECT_PID     Default target process id
//	TRACECOLLECT_OUTPUT  Default trace output directory
//
// # Exit Codes
//
//	0  Success, including a clean stop on interrupt
//	1  Invalid configuration or collection failure
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/tracecollect/pkg/cli.version=1.0.0'"
package cli

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

// Package config builds the collection configuration for one tracecollect run
// and serializes it into the control file format consumed by the target
// runtime.
//
// # Control file format
//
// The control file is UTF-8 text with one Key=Value pair per line:
//
//	ProcessId=4242
//	OutputPath=/var/traces
//	CircularMB=256
//	Providers=Microsoft-Windows-DotNETRuntime:0x8001:4,Microsoft-Extensions-Logging:0x04:4:FilterSpecs=App;App.Web:Warning
//
// Keys are written in that order and only when set. Providers is a
// comma-separated list of canonical event specs; logger filters are folded
// into a single logging-bridge entry whose FilterSpecs argument joins the
// logger specs with ';'. This shape is a wire contract with the runtime:
// key names, separators and numeric encodings must not change.
//
// # Usage
//
//	cfg := config.New(
//	    config.WithProcessID(4242),
//	    config.WithOutputPath("/var/traces"),
//	)
//	prof, _ := provider.Default().FindProfile("aspnetcore")
//	cfg.AddProfile(prof)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	text := cfg.Serialize()
//
// A Configuration is built once per invocation and owned by exactly one
// collector; it is not safe for concurrent mutation.
package config

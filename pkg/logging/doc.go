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

// Package logging configures the process-wide slog logger for tracecollect.
//
// Records are JSON on stderr and carry the module name and build version of
// the binary. Debug records also carry their source location.
//
// The CLI installs the default logger from its --log-level flag, which
// falls back to the LOG_LEVEL environment variable and then INFO:
//
//	logging.SetDefaultStructuredLoggerWithLevel("tracecollect", version, level)
//
// Levels are parsed case-insensitively; "warning" is accepted for WARN and
// anything unrecognized becomes INFO.
//
// A collect run at debug level reports segment polling, for example:
//
//	{"time":"...","level":"DEBUG","source":{...},"msg":"waiting for next segment",
//	 "module":"tracecollect","version":"v0.3.1","path":"/app/MyApp.4242.3.nettrace"}
//
// Libraries in this module log through slog.Default or an injected
// *slog.Logger and never configure the handler themselves.
package logging

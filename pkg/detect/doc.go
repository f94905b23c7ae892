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

// Package detect locates the control file path of a managed application
// running in a target process.
//
// The detector enumerates the modules loaded by the process and picks the
// first one that looks like a managed application: its extension is not a
// native library extension of the platform, its name is not in the
// platform's runtime-native exclusion set, and a dependency manifest
// ({name}.deps.json) sits next to it. The control file path is then
// {dir}/{name}.eventpipeconfig.
//
// This is a heuristic. Processes hosting several applications, or with
// unusual layouts, may resolve to the wrong module; callers that know the
// path should pass it explicitly instead.
//
// Usage:
//
//	d := detect.New()
//	path, err := d.Detect(ctx, pid)
//	if errors.Is(err, detect.ErrNoManagedAppFound) {
//	    // fall back to an explicit --config-path
//	}
//
// Platform knowledge (native extensions and exclusions) is a data table
// keyed by GOOS; supporting a new platform means adding an entry.
package detect

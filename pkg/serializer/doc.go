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

// Package serializer writes collected events and catalog listings in
// multiple formats.
//
// # Supported Formats
//
// JSON:
//   - One compact document per line, so event streams can be piped into
//     line-oriented tools
//
// YAML:
//   - Human-readable, one document per value separated by "---"
//   - gopkg.in/yaml.v3 package
//
// Table:
//   - Flattened FIELD/VALUE rows for terminal viewing
//   - Write-only
//
// # Usage
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	if err != nil {
//	    return err
//	}
//	defer w.Close() // flushes the YAML stream and closes files
//	if err := w.Serialize(ctx, data); err != nil {
//	    return err
//	}
//
// A Writer is safe for concurrent use; values are written whole and never
// interleaved.
package serializer

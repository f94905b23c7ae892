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

// Package provider holds the compiled-in vocabulary of trace providers and
// collection profiles, and parses the compact textual filters operators pass
// on the command line.
//
// # Event specs
//
// An event spec selects one provider at a keyword mask and verbosity level:
//
//	name[:keywords[:level]]
//
// Keywords are '*' (all bits), a 0x-prefixed hexadecimal mask, or a
// comma-separated list of symbolic names known to the catalog for that
// provider. An unknown name fails parsing with ErrUnknownKeyword instead of
// being dropped, since a dropped name would silently widen collection.
// Level is an integer 0-5 or a case-insensitive level name. Omitted parts
// default to all keywords and Verbose.
//
// Specs render in canonical wire form:
//
//	spec, err := provider.ParseEventSpec("Microsoft-Windows-DotNETRuntime:GC,Exception:Warning")
//	fmt.Println(spec) // Microsoft-Windows-DotNETRuntime:0x8001:3
//
// # Logger specs
//
// A logger spec filters logging-bridge categories by prefix:
//
//	prefix[:level]
//
// where level is one of Trace, Debug, Information, Warning, Error, Critical
// or None.
//
// # Catalog
//
// The catalog is loaded once from providers.yaml embedded in the binary and
// is read-only afterwards. Default returns the shared instance.
package provider

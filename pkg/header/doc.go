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

// Package header provides the Kubernetes-style envelope stamped on every
// document tracecollect prints.
//
// Status reports and catalog listings carry the same three fields so they
// can be told apart once captured to a file:
//
//	kind: CollectionStatus
//	apiVersion: tracecollect.nvidia.com/v1alpha1
//	metadata:
//	  timestamp: "2025-06-01T12:00:00Z"
//	  version: v0.3.1
//
// Embed Header inline in the document struct and initialize it with New:
//
//	type report struct {
//	    header.Header `json:",inline" yaml:",inline"`
//	    Active bool `json:"active" yaml:"active"`
//	}
//
//	r := report{Header: header.New(header.KindCollectionStatus, header.WithVersion(v))}
package header

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

package header

import (
	"time"
)

// APIVersion is the schema version of every document kind below.
const APIVersion = "tracecollect.nvidia.com/v1alpha1"

// Metadata keys set by New.
const (
	MetadataTimestamp = "timestamp"
	MetadataVersion   = "version"
)

// Kind identifies the type of document a Header prefixes.
type Kind string

const (
	// KindCollectionStatus describes the control file of one application.
	KindCollectionStatus Kind = "CollectionStatus"
	// KindProviderCatalog lists compiled-in profiles and known providers.
	KindProviderCatalog Kind = "ProviderCatalog"
	// KindCollectionConfiguration is a parsed control file.
	KindCollectionConfiguration Kind = "CollectionConfiguration"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindCollectionStatus, KindProviderCatalog, KindCollectionConfiguration:
		return true
	default:
		return false
	}
}

// Header carries the kind, schema version and free-form metadata of a document.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithVersion records the version of the tool that produced the document.
// An empty version is ignored.
func WithVersion(version string) Option {
	return func(h *Header) {
		if version != "" {
			h.Metadata[MetadataVersion] = version
		}
	}
}

// WithTimestamp overrides the creation time, which defaults to now.
func WithTimestamp(t time.Time) Option {
	return func(h *Header) {
		h.Metadata[MetadataTimestamp] = t.UTC().Format(time.RFC3339)
	}
}

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		h.Metadata[key] = value
	}
}

// New returns a Header of the given kind at APIVersion, stamped with the
// current UTC time.
func New(kind Kind, opts ...Option) Header {
	h := Header{
		Kind:       kind,
		APIVersion: APIVersion,
		Metadata: map[string]string{
			MetadataTimestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

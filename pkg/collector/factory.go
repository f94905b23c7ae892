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

package collector

import (
	"fmt"
	"strings"

	"github.com/NVIDIA/tracecollect/pkg/config"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

// Kind selects a Collector implementation.
type Kind string

const (
	// KindHandshake drains segments written in response to a control file.
	KindHandshake Kind = "handshake"
	// KindSession records through an OS trace session.
	KindSession Kind = "session"
)

// SupportedKinds returns the kinds accepted by ParseKind.
func SupportedKinds() []string {
	return []string{string(KindHandshake), string(KindSession)}
}

// ParseKind parses a collector kind, ignoring case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindHandshake:
		return KindHandshake, nil
	case KindSession:
		return KindSession, nil
	default:
		return "", cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown collector kind %q", s),
			map[string]any{"supported": SupportedKinds()})
	}
}

// New creates a collector of the given kind for cfg.
func New(kind Kind, cfg *config.Configuration, opts ...Option) (Collector, error) {
	if cfg == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "configuration is required")
	}

	o := newOptions(opts)

	switch kind {
	case KindHandshake:
		return newHandshakeCollector(cfg, o)
	case KindSession:
		return newSessionCollector(cfg, o), nil
	default:
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown collector kind %q", kind),
			map[string]any{"supported": SupportedKinds()})
	}
}

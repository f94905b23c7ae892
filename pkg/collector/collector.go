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
	"context"
	"errors"
	"time"

	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// collector's current state.
	ErrInvalidState = errors.New("invalid collector state")
	// ErrControlFileExists is returned when a control file is already present,
	// meaning another collection targets the same application.
	ErrControlFileExists = errors.New("control file already exists")
	// ErrOutputAlreadyExists is returned when the session output file exists.
	ErrOutputAlreadyExists = errors.New("output file already exists")
	// ErrUnsupportedPlatform is returned when OS trace sessions are unavailable.
	ErrUnsupportedPlatform = errors.New("trace sessions are not supported on this platform")
)

// Collector is a single trace collection.
type Collector interface {
	// Start begins the collection.
	Start(ctx context.Context) error
	// ReadLatest returns events that became available since the last call.
	// It may return no events without error.
	ReadLatest(ctx context.Context) ([]Event, error)
	// Stop ends the collection.
	Stop(ctx context.Context) error
	// Drain returns events still pending after Stop. It may return no
	// events without error.
	Drain(ctx context.Context) ([]Event, error)
	// State returns the lifecycle state.
	State() State
}

// State is the lifecycle state of a Collector.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event is one decoded trace record.
type Event struct {
	Provider  string         `json:"provider" yaml:"provider"`
	Name      string         `json:"name" yaml:"name"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	ProcessID int            `json:"processId,omitempty" yaml:"processId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

func invalidState(op string, s State) error {
	return cnserrors.WrapWithContext(cnserrors.ErrCodePrecondition,
		op+" not allowed in state "+s.String(), ErrInvalidState,
		map[string]any{"op": op, "state": s.String()})
}

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

package provider

import (
	"errors"

	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

var (
	// ErrEmptyProvider is returned when a spec has no provider name.
	ErrEmptyProvider = errors.New("provider name is empty")
	// ErrUnknownKeyword is returned when a symbolic keyword cannot be resolved.
	ErrUnknownKeyword = errors.New("unknown keyword")
	// ErrInvalidKeywords is returned when a keyword mask is malformed.
	ErrInvalidKeywords = errors.New("invalid keyword mask")
	// ErrInvalidLevel is returned for unknown or out-of-range levels.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrEmptyPrefix is returned when a logger spec has no category prefix.
	ErrEmptyPrefix = errors.New("logger prefix is empty")
)

// invalidSpec wraps a parse failure as a validation error.
func invalidSpec(kind, token string, cause error) error {
	return cnserrors.WrapWithContext(
		cnserrors.ErrCodeInvalidRequest,
		"invalid "+kind+" spec",
		cause,
		map[string]any{"spec": token},
	)
}

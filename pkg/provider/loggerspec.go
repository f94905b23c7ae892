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
	"fmt"
	"strings"
)

// LoggerSpec filters logging-bridge categories by prefix and minimum level.
type LoggerSpec struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	// Level is empty when the category's configured level applies.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// String returns prefix[:Level].
func (s LoggerSpec) String() string {
	if s.Level == "" {
		return s.Prefix
	}
	return s.Prefix + ":" + s.Level
}

// ParseLoggerSpec parses prefix[:level]. The level must name one of
// SupportedLoggerLevels, ignoring case; it is stored in canonical case.
func ParseLoggerSpec(token string) (LoggerSpec, error) {
	prefix, level, hasLevel := strings.Cut(strings.TrimSpace(token), ":")

	spec := LoggerSpec{Prefix: strings.TrimSpace(prefix)}
	if spec.Prefix == "" {
		return LoggerSpec{}, invalidSpec("logger", token, ErrEmptyPrefix)
	}

	level = strings.TrimSpace(level)
	if hasLevel && level != "" {
		for _, name := range loggerLevels {
			if strings.EqualFold(name, level) {
				spec.Level = name
				return spec, nil
			}
		}
		return LoggerSpec{}, invalidSpec("logger", token,
			fmt.Errorf("%w: %q (supported values: %s)", ErrInvalidLevel, level, strings.Join(loggerLevels, ", ")))
	}

	return spec, nil
}

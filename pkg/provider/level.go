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
	"strconv"
	"strings"
)

// Level is the verbosity of an event provider.
type Level uint8

const (
	LevelLogAlways     Level = 0
	LevelCritical      Level = 1
	LevelError         Level = 2
	LevelWarning       Level = 3
	LevelInformational Level = 4
	LevelVerbose       Level = 5
)

var levelNames = map[Level]string{
	LevelLogAlways:     "LogAlways",
	LevelCritical:      "Critical",
	LevelError:         "Error",
	LevelWarning:       "Warning",
	LevelInformational: "Informational",
	LevelVerbose:       "Verbose",
}

// String returns the level name.
func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// IsValid reports whether l is a defined level.
func (l Level) IsValid() bool {
	return l <= LevelVerbose
}

// ParseLevel parses an integer in [0,5] or a case-insensitive level name.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		if l := Level(n); l.IsValid() {
			return l, nil
		}
		return 0, fmt.Errorf("%w: %q is out of range [0,%d]", ErrInvalidLevel, s, LevelVerbose)
	}
	for l, name := range levelNames {
		if strings.EqualFold(name, s) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// SupportedLevels returns the level names in numeric order.
func SupportedLevels() []string {
	res := make([]string, 0, len(levelNames))
	for l := LevelLogAlways; l <= LevelVerbose; l++ {
		res = append(res, levelNames[l])
	}
	return res
}

// loggerLevels are the logging-bridge level names accepted in logger specs,
// in canonical case.
var loggerLevels = []string{
	"Trace",
	"Debug",
	"Information",
	"Warning",
	"Error",
	"Critical",
	"None",
}

// SupportedLoggerLevels returns the logging-bridge level names.
func SupportedLoggerLevels() []string {
	return append([]string(nil), loggerLevels...)
}

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
	"math"
	"strconv"
	"strings"
)

// AllKeywords enables every keyword of a provider.
const AllKeywords uint64 = math.MaxUint64

// EventSpec selects a provider at a keyword mask and level.
type EventSpec struct {
	Provider string `json:"provider" yaml:"provider"`
	Keywords uint64 `json:"keywords" yaml:"keywords"`
	Level    Level  `json:"level" yaml:"level"`

	// FilterData is an optional provider argument in Key=Value form,
	// carried verbatim as a fourth segment.
	FilterData string `json:"filterData,omitempty" yaml:"filterData,omitempty"`
}

// NewEventSpec returns a spec for provider with all keywords at Verbose.
func NewEventSpec(provider string) EventSpec {
	return EventSpec{
		Provider: provider,
		Keywords: AllKeywords,
		Level:    LevelVerbose,
	}
}

// String returns the canonical wire form provider:0xHEX:LEVEL[:FilterData].
func (s EventSpec) String() string {
	out := fmt.Sprintf("%s:0x%02X:%d", s.Provider, s.Keywords, uint8(s.Level))
	if s.FilterData != "" {
		out += ":" + s.FilterData
	}
	return out
}

// ParseEventSpec parses token against the default catalog.
func ParseEventSpec(token string) (EventSpec, error) {
	return Default().ParseEventSpec(token)
}

// ParseEventSpec parses name[:keywords[:level[:filterdata]]], resolving
// symbolic keyword names against the catalog.
func (c *Catalog) ParseEventSpec(token string) (EventSpec, error) {
	parts := strings.SplitN(strings.TrimSpace(token), ":", 4)

	spec := NewEventSpec(strings.TrimSpace(parts[0]))
	if spec.Provider == "" {
		return EventSpec{}, invalidSpec("event", token, ErrEmptyProvider)
	}

	if len(parts) > 1 {
		kw, err := c.parseKeywords(spec.Provider, strings.TrimSpace(parts[1]))
		if err != nil {
			return EventSpec{}, invalidSpec("event", token, err)
		}
		spec.Keywords = kw
	}

	if len(parts) > 2 {
		if raw := strings.TrimSpace(parts[2]); raw != "" {
			lvl, err := ParseLevel(raw)
			if err != nil {
				return EventSpec{}, invalidSpec("event", token, err)
			}
			spec.Level = lvl
		}
	}

	if len(parts) > 3 {
		spec.FilterData = parts[3]
	}

	return spec, nil
}

func (c *Catalog) parseKeywords(providerName, raw string) (uint64, error) {
	switch {
	case raw == "", raw == "*":
		return AllKeywords, nil
	case strings.HasPrefix(raw, "0x"), strings.HasPrefix(raw, "0X"):
		v, err := strconv.ParseUint(raw[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidKeywords, raw)
		}
		return v, nil
	}

	known, ok := c.FindProvider(providerName)
	var (
		mask  uint64
		names int
	)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names++
		if !ok {
			return 0, fmt.Errorf("%w: %q (provider %q has no known keywords)", ErrUnknownKeyword, name, providerName)
		}
		v, found := known.Keyword(name)
		if !found {
			return 0, fmt.Errorf("%w: %q for provider %q", ErrUnknownKeyword, name, known.Name)
		}
		mask |= v
	}
	if names == 0 {
		return 0, fmt.Errorf("%w: %q names no keywords", ErrInvalidKeywords, raw)
	}
	return mask, nil
}

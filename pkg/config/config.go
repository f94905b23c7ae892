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

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"k8s.io/utils/ptr"

	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
	"github.com/NVIDIA/tracecollect/pkg/provider"
)

// Control file keys.
const (
	KeyProcessID  = "ProcessId"
	KeyOutputPath = "OutputPath"
	KeyCircularMB = "CircularMB"
	KeyProviders  = "Providers"
)

const (
	// LoggingProvider is the logging-bridge provider logger specs are folded into.
	LoggingProvider = "Microsoft-Extensions-Logging"
	// LoggingKeywords selects formatted log messages.
	LoggingKeywords uint64 = 0x04
	// FilterSpecsArgument names the logger filter argument of the logging provider.
	FilterSpecsArgument = "FilterSpecs"
)

// Configuration aggregates the target, output and filters of one collection.
type Configuration struct {
	processID        *int
	outputPath       string
	circularBufferMB *int
	providers        []provider.EventSpec
	loggers          []provider.LoggerSpec
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithProcessID sets the target process id.
func WithProcessID(pid int) Option {
	return func(c *Configuration) {
		c.processID = ptr.To(pid)
	}
}

// WithOutputPath sets the directory trace output is written to.
func WithOutputPath(path string) Option {
	return func(c *Configuration) {
		c.outputPath = path
	}
}

// WithCircularBufferMB sets the circular buffer size in megabytes.
func WithCircularBufferMB(mb int) Option {
	return func(c *Configuration) {
		c.circularBufferMB = ptr.To(mb)
	}
}

// New returns an empty Configuration with the given options applied.
func New(opts ...Option) *Configuration {
	c := &Configuration{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessID returns the target process id, or nil when unset.
func (c *Configuration) ProcessID() *int {
	if c.processID == nil {
		return nil
	}
	return ptr.To(*c.processID)
}

// OutputPath returns the output directory.
func (c *Configuration) OutputPath() string {
	return c.outputPath
}

// CircularBufferMB returns the circular buffer size, or nil when unset.
func (c *Configuration) CircularBufferMB() *int {
	if c.circularBufferMB == nil {
		return nil
	}
	return ptr.To(*c.circularBufferMB)
}

// Providers returns a copy of the explicit provider filters.
func (c *Configuration) Providers() []provider.EventSpec {
	return slices.Clone(c.providers)
}

// Loggers returns a copy of the logger filters.
func (c *Configuration) Loggers() []provider.LoggerSpec {
	return slices.Clone(c.loggers)
}

// AddProvider appends provider filters.
func (c *Configuration) AddProvider(specs ...provider.EventSpec) {
	c.providers = append(c.providers, specs...)
}

// AddLogger appends logger filters.
func (c *Configuration) AddLogger(specs ...provider.LoggerSpec) {
	c.loggers = append(c.loggers, specs...)
}

// AddProfile appends the profile's filters to those already configured.
func (c *Configuration) AddProfile(p provider.Profile) {
	c.AddProvider(p.EventSpecs...)
	c.AddLogger(p.LoggerSpecs...)
}

// HasFilters reports whether any provider or logger filter is configured.
func (c *Configuration) HasFilters() bool {
	return len(c.providers) > 0 || len(c.loggers) > 0
}

// LoggerFilterSpecs returns the logger specs joined with ';'.
func (c *Configuration) LoggerFilterSpecs() string {
	parts := make([]string, 0, len(c.loggers))
	for _, l := range c.loggers {
		parts = append(parts, l.String())
	}
	return strings.TrimSuffix(strings.Join(parts, ";"), ";")
}

// EffectiveProviders returns the provider filters followed, when logger
// filters exist, by the synthetic logging-bridge spec carrying them.
func (c *Configuration) EffectiveProviders() []provider.EventSpec {
	res := slices.Clone(c.providers)
	if len(c.loggers) > 0 {
		res = append(res, provider.EventSpec{
			Provider:   LoggingProvider,
			Keywords:   LoggingKeywords,
			Level:      provider.LevelInformational,
			FilterData: FilterSpecsArgument + "=" + c.LoggerFilterSpecs(),
		})
	}
	return res
}

// Validate checks the configuration for values the runtime cannot accept.
func (c *Configuration) Validate() error {
	if c.processID != nil && *c.processID <= 0 {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"process id must be positive", map[string]any{"pid": *c.processID})
	}
	if c.circularBufferMB != nil && *c.circularBufferMB <= 0 {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"circular buffer size must be positive", map[string]any{"circularMB": *c.circularBufferMB})
	}
	for _, p := range c.providers {
		if p.Provider == "" || strings.ContainsAny(p.Provider, ",:\n") {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"invalid provider name", map[string]any{"provider": p.Provider})
		}
		if strings.ContainsAny(p.FilterData, ",\n") {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"provider filter data cannot contain ',' or newlines", map[string]any{"provider": p.Provider})
		}
	}
	for _, l := range c.loggers {
		if strings.ContainsAny(l.Prefix, ",;\n") {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"invalid logger prefix", map[string]any{"prefix": l.Prefix})
		}
	}
	if strings.Contains(c.outputPath, "\n") {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "output path cannot contain newlines")
	}
	return nil
}

// Serialize renders the control file text.
func (c *Configuration) Serialize() string {
	var b strings.Builder

	if c.processID != nil {
		fmt.Fprintf(&b, "%s=%d\n", KeyProcessID, *c.processID)
	}
	if c.outputPath != "" {
		fmt.Fprintf(&b, "%s=%s\n", KeyOutputPath, c.outputPath)
	}
	if c.circularBufferMB != nil {
		fmt.Fprintf(&b, "%s=%d\n", KeyCircularMB, *c.circularBufferMB)
	}
	if c.HasFilters() {
		specs := c.EffectiveProviders()
		tokens := make([]string, 0, len(specs))
		for _, s := range specs {
			tokens = append(tokens, s.String())
		}
		fmt.Fprintf(&b, "%s=%s\n", KeyProviders, strings.Join(tokens, ","))
	}

	return b.String()
}

func parseInt(key, raw string) (*int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"invalid integer value", err, map[string]any{"key": key, "value": raw})
	}
	return ptr.To(v), nil
}

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
	"strings"

	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
	"github.com/NVIDIA/tracecollect/pkg/file"
	"github.com/NVIDIA/tracecollect/pkg/provider"
)

// Load reads a control file back into a Configuration.
func Load(path string) (*Configuration, error) {
	kv, err := file.NewParser().GetMap(path)
	if err != nil {
		return nil, err
	}
	return fromMap(kv)
}

// Parse reads control file text into a Configuration. The logging-bridge
// entry is unfolded back into logger specs.
func Parse(text string) (*Configuration, error) {
	kv, err := file.NewParser().ParseMap([]byte(text), "control file")
	if err != nil {
		return nil, err
	}
	return fromMap(kv)
}

func fromMap(kv map[string]string) (*Configuration, error) {
	c := New()

	if raw, ok := kv[KeyProcessID]; ok {
		v, err := parseInt(KeyProcessID, raw)
		if err != nil {
			return nil, err
		}
		c.processID = v
	}
	c.outputPath = kv[KeyOutputPath]
	if raw, ok := kv[KeyCircularMB]; ok {
		v, err := parseInt(KeyCircularMB, raw)
		if err != nil {
			return nil, err
		}
		c.circularBufferMB = v
	}

	raw := kv[KeyProviders]
	if raw == "" {
		return c, nil
	}
	for _, token := range strings.Split(raw, ",") {
		spec, err := provider.ParseEventSpec(token)
		if err != nil {
			return nil, fmt.Errorf("control file providers: %w", err)
		}
		if loggers, ok, err := unfoldLoggers(spec); ok {
			if err != nil {
				return nil, err
			}
			c.AddLogger(loggers...)
			continue
		}
		c.AddProvider(spec)
	}

	return c, nil
}

func unfoldLoggers(spec provider.EventSpec) ([]provider.LoggerSpec, bool, error) {
	if !strings.EqualFold(spec.Provider, LoggingProvider) {
		return nil, false, nil
	}
	value, ok := strings.CutPrefix(spec.FilterData, FilterSpecsArgument+"=")
	if !ok {
		return nil, false, nil
	}

	var res []provider.LoggerSpec
	for _, token := range strings.Split(value, ";") {
		if strings.TrimSpace(token) == "" {
			continue
		}
		l, err := provider.ParseLoggerSpec(token)
		if err != nil {
			return nil, true, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "control file logger filter", err)
		}
		res = append(res, l)
	}
	return res, true, nil
}

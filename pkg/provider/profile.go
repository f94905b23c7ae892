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

import "slices"

// Profile is a named bundle of provider and logger filters for a common
// scenario. Profiles are never mutated after the catalog is loaded.
type Profile struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	EventSpecs  []EventSpec  `json:"eventSpecs,omitempty" yaml:"eventSpecs,omitempty"`
	LoggerSpecs []LoggerSpec `json:"loggerSpecs,omitempty" yaml:"loggerSpecs,omitempty"`
}

func (p Profile) clone() Profile {
	p.EventSpecs = slices.Clone(p.EventSpecs)
	p.LoggerSpecs = slices.Clone(p.LoggerSpecs)
	return p
}

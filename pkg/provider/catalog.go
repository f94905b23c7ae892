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
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed providers.yaml
var catalogData []byte

// KnownProvider is a provider with a published keyword vocabulary.
type KnownProvider struct {
	Name     string            `json:"name" yaml:"name"`
	GUID     uuid.UUID         `json:"guid" yaml:"guid"`
	Keywords map[string]uint64 `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Keyword resolves a symbolic keyword name, ignoring case.
func (p KnownProvider) Keyword(name string) (uint64, bool) {
	if v, ok := p.Keywords[name]; ok {
		return v, true
	}
	folded := fold(name)
	for k, v := range p.Keywords {
		if fold(k) == folded {
			return v, true
		}
	}
	return 0, false
}

// KeywordNames returns the provider's keyword names ordered by bit value.
func (p KnownProvider) KeywordNames() []string {
	names := slices.Collect(maps.Keys(p.Keywords))
	sort.Slice(names, func(i, j int) bool {
		return p.Keywords[names[i]] < p.Keywords[names[j]]
	})
	return names
}

// Catalog is a read-only registry of known providers and profiles.
type Catalog struct {
	providers map[string]KnownProvider
	profiles  map[string]Profile
}

type catalogFile struct {
	Providers []struct {
		Name     string            `yaml:"name"`
		GUID     string            `yaml:"guid"`
		Keywords map[string]string `yaml:"keywords"`
	} `yaml:"providers"`
	Profiles []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Providers   []string `yaml:"providers"`
		Loggers     []string `yaml:"loggers"`
	} `yaml:"profiles"`
}

// NewCatalog builds a catalog from YAML metadata. Profile specs are parsed
// against the providers declared in the same document.
func NewCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode provider catalog: %w", err)
	}

	c := &Catalog{
		providers: make(map[string]KnownProvider, len(f.Providers)),
		profiles:  make(map[string]Profile, len(f.Profiles)),
	}

	for _, p := range f.Providers {
		if p.Name == "" {
			return nil, fmt.Errorf("provider catalog: %w", ErrEmptyProvider)
		}
		key := fold(p.Name)
		if _, dup := c.providers[key]; dup {
			return nil, fmt.Errorf("provider catalog: duplicate provider %q", p.Name)
		}

		kp := KnownProvider{
			Name:     p.Name,
			Keywords: make(map[string]uint64, len(p.Keywords)),
		}
		if p.GUID != "" {
			id, err := uuid.Parse(p.GUID)
			if err != nil {
				return nil, fmt.Errorf("provider catalog: invalid guid for %q: %w", p.Name, err)
			}
			kp.GUID = id
		} else {
			kp.GUID = NameGUID(p.Name)
		}
		for name, raw := range p.Keywords {
			v, err := strconv.ParseUint(raw, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("provider catalog: keyword %s/%s: %w", p.Name, name, err)
			}
			kp.Keywords[name] = v
		}
		c.providers[key] = kp
	}

	for _, p := range f.Profiles {
		prof := Profile{
			Name:        p.Name,
			Description: p.Description,
		}
		for _, token := range p.Providers {
			spec, err := c.ParseEventSpec(token)
			if err != nil {
				return nil, fmt.Errorf("provider catalog: profile %q: %w", p.Name, err)
			}
			prof.EventSpecs = append(prof.EventSpecs, spec)
		}
		for _, token := range p.Loggers {
			spec, err := ParseLoggerSpec(token)
			if err != nil {
				return nil, fmt.Errorf("provider catalog: profile %q: %w", p.Name, err)
			}
			prof.LoggerSpecs = append(prof.LoggerSpecs, spec)
		}
		c.profiles[fold(p.Name)] = prof
	}

	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(catalogData)
	if err != nil {
		panic(fmt.Sprintf("embedded provider catalog is invalid: %v", err))
	}
	return c
})

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return defaultCatalog()
}

// FindProvider returns the provider with the given name, ignoring case.
func (c *Catalog) FindProvider(name string) (KnownProvider, bool) {
	p, ok := c.providers[fold(name)]
	return p, ok
}

// FindProfile returns the profile with the given name, ignoring case.
func (c *Catalog) FindProfile(name string) (Profile, bool) {
	p, ok := c.profiles[fold(name)]
	return p.clone(), ok
}

// GUID returns the catalog GUID for a provider, or its name-derived GUID
// when the provider is not in the catalog.
func (c *Catalog) GUID(name string) uuid.UUID {
	if p, ok := c.FindProvider(name); ok {
		return p.GUID
	}
	return NameGUID(name)
}

// Providers returns all known providers sorted by name.
func (c *Catalog) Providers() []KnownProvider {
	res := slices.Collect(maps.Values(c.providers))
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// Profiles returns all profiles sorted by name.
func (c *Catalog) Profiles() []Profile {
	res := make([]Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		res = append(res, p.clone())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// ProfileNames returns the sorted profile names.
func (c *Catalog) ProfileNames() []string {
	profiles := c.Profiles()
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

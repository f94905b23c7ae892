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

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/tracecollect/pkg/header"
	"github.com/NVIDIA/tracecollect/pkg/provider"
	"github.com/NVIDIA/tracecollect/pkg/serializer"
)

type profileView struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Providers   []string `json:"providers,omitempty" yaml:"providers,omitempty"`
	Loggers     []string `json:"loggers,omitempty" yaml:"loggers,omitempty"`
}

type providerView struct {
	Name     string            `json:"name" yaml:"name"`
	GUID     string            `json:"guid" yaml:"guid"`
	Keywords map[string]string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

type catalogView struct {
	header.Header `json:",inline" yaml:",inline"`

	Profiles  []profileView  `json:"profiles" yaml:"profiles"`
	Providers []providerView `json:"providers,omitempty" yaml:"providers,omitempty"`
}

func profilesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "profiles",
		EnableShellCompletion: true,
		Usage:                 "List compiled-in profiles and known providers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "providers",
				Usage: "Include known providers and their keywords",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			w, err := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			if err != nil {
				return err
			}
			defer w.Close()

			return w.Serialize(ctx, describeCatalog(provider.Default(), cmd.Bool("providers")))
		},
	}
}

func describeCatalog(c *provider.Catalog, withProviders bool) catalogView {
	v := catalogView{Header: header.New(header.KindProviderCatalog, header.WithVersion(version))}

	for _, p := range c.Profiles() {
		pv := profileView{Name: p.Name, Description: p.Description}
		for _, s := range p.EventSpecs {
			pv.Providers = append(pv.Providers, s.String())
		}
		for _, l := range p.LoggerSpecs {
			pv.Loggers = append(pv.Loggers, l.String())
		}
		v.Profiles = append(v.Profiles, pv)
	}

	if !withProviders {
		return v
	}

	for _, p := range c.Providers() {
		pv := providerView{Name: p.Name, GUID: p.GUID.String()}
		if len(p.Keywords) > 0 {
			pv.Keywords = make(map[string]string, len(p.Keywords))
			for _, kw := range p.KeywordNames() {
				mask, _ := p.Keyword(kw)
				pv.Keywords[kw] = fmt.Sprintf("0x%X", mask)
			}
		}
		v.Providers = append(v.Providers, pv)
	}
	return v
}

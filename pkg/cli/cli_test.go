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
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/tracecollect/pkg/header"
	"github.com/NVIDIA/tracecollect/pkg/provider"
	"github.com/NVIDIA/tracecollect/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "valid yaml format", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "valid json format", format: "json", wantFormat: serializer.FormatJSON},
		{name: "valid table format", format: "table", wantFormat: serializer.FormatTable},
		{name: "invalid format xml", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: tt.format,
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if !tt.wantErr && got != tt.wantFormat {
						t.Errorf("parseOutputFormat() = %v, want %v", got, tt.wantFormat)
					}
					return nil
				},
			}

			if err := cmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestCommandLister(t *testing.T) {
	commandLister(context.Background(), nil)

	var buf bytes.Buffer
	rootCmd := &cli.Command{
		Name:   "root",
		Writer: &buf,
		Commands: []*cli.Command{
			{Name: "visible1", Hidden: false},
			{Name: "hidden", Hidden: true},
			{Name: "visible2", Hidden: false},
		},
	}
	commandLister(context.Background(), rootCmd)

	assert.Equal(t, "visible1\nvisible2\n", buf.String())
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"collect", "profiles", "status", "stop"}, names)
}

func TestProfilesCommand(t *testing.T) {
	var buf bytes.Buffer
	root := newRootCmd()
	root.Writer = &buf

	out := t.TempDir() + "/profiles.json"
	err := root.Run(context.Background(), []string{name, "profiles", "--providers", "--format", "json", "--output", out})
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestDescribeCatalog(t *testing.T) {
	v := describeCatalog(provider.Default(), false)
	assert.Equal(t, header.KindProviderCatalog, v.Kind)
	assert.Empty(t, v.Providers)
	require.NotEmpty(t, v.Profiles)

	var names []string
	for _, p := range v.Profiles {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "default")

	v = describeCatalog(provider.Default(), true)
	assert.NotEmpty(t, v.Providers)
}

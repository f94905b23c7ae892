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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

const testCatalog = `
providers:
  - name: Foo
    keywords:
      Alpha: "0x1"
      Beta: "0x10"
      High: "0x100000000"
  - name: Bar
    guid: 11111111-2222-3333-4444-555555555555
profiles:
  - name: basic
    description: test profile
    providers:
      - Foo:Alpha,Beta:Warning
      - Bar
    loggers:
      - App.Core:debug
      - App.Web
`

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]byte(testCatalog))
	require.NoError(t, err)
	return c
}

func TestParseEventSpec(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		name  string
		token string
		want  EventSpec
	}{
		{
			name:  "provider only",
			token: "Foo",
			want:  EventSpec{Provider: "Foo", Keywords: AllKeywords, Level: LevelVerbose},
		},
		{
			name:  "star keywords and empty level",
			token: "Foo:*:",
			want:  EventSpec{Provider: "Foo", Keywords: AllKeywords, Level: LevelVerbose},
		},
		{
			name:  "hex keywords and named level",
			token: "Foo:0x10:Error",
			want:  EventSpec{Provider: "Foo", Keywords: 0x10, Level: LevelError},
		},
		{
			name:  "upper-case hex prefix",
			token: "Foo:0XfF:1",
			want:  EventSpec{Provider: "Foo", Keywords: 0xFF, Level: LevelCritical},
		},
		{
			name:  "symbolic keywords",
			token: "Foo:Alpha,High:informational",
			want:  EventSpec{Provider: "Foo", Keywords: 0x100000001, Level: LevelInformational},
		},
		{
			name:  "symbolic keywords ignore case",
			token: "foo:beta",
			want:  EventSpec{Provider: "foo", Keywords: 0x10, Level: LevelVerbose},
		},
		{
			name:  "numeric level zero",
			token: "Foo:0x0:0",
			want:  EventSpec{Provider: "Foo", Keywords: 0, Level: LevelLogAlways},
		},
		{
			name:  "empty keywords segment",
			token: "Bar::Warning",
			want:  EventSpec{Provider: "Bar", Keywords: AllKeywords, Level: LevelWarning},
		},
		{
			name:  "filter data kept verbatim",
			token: "Bar:0x4:4:FilterSpecs=A;B:Warning",
			want:  EventSpec{Provider: "Bar", Keywords: 0x4, Level: LevelInformational, FilterData: "FilterSpecs=A;B:Warning"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ParseEventSpec(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEventSpec_Errors(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty token", "", ErrEmptyProvider},
		{"empty provider", ":0x1:4", ErrEmptyProvider},
		{"unknown keyword", "Foo:BadKeyword", ErrUnknownKeyword},
		{"one unknown among known", "Foo:Alpha,Gamma", ErrUnknownKeyword},
		{"keywords on provider without vocabulary", "Bar:Alpha", ErrUnknownKeyword},
		{"keywords on unknown provider", "Nope:Alpha", ErrUnknownKeyword},
		{"bad hex", "Foo:0xZZ", ErrInvalidKeywords},
		{"hex overflow", "Foo:0x1FFFFFFFFFFFFFFFF", ErrInvalidKeywords},
		{"separator only keywords", "Foo:,", ErrInvalidKeywords},
		{"blank keyword list", "Foo: , :4", ErrInvalidKeywords},
		{"separators on unknown provider", "Nope:,,", ErrInvalidKeywords},
		{"level out of range", "Foo:*:6", ErrInvalidLevel},
		{"negative level", "Foo:*:-1", ErrInvalidLevel},
		{"unknown level name", "Foo:*:Loud", ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ParseEventSpec(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
		})
	}
}

func TestEventSpec_String(t *testing.T) {
	tests := []struct {
		spec EventSpec
		want string
	}{
		{EventSpec{Provider: "Foo", Keywords: 0x10, Level: LevelError}, "Foo:0x10:2"},
		{EventSpec{Provider: "Foo", Keywords: 0x4, Level: LevelInformational}, "Foo:0x04:4"},
		{EventSpec{Provider: "Foo", Keywords: 0, Level: LevelLogAlways}, "Foo:0x00:0"},
		{NewEventSpec("Foo"), "Foo:0xFFFFFFFFFFFFFFFF:5"},
		{EventSpec{Provider: "Foo", Keywords: 0xABC, Level: LevelVerbose, FilterData: "K=V"}, "Foo:0xABC:5:K=V"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.String())
		})
	}
}

func TestEventSpec_CanonicalFixedPoint(t *testing.T) {
	c := newTestCatalog(t)

	tokens := []string{
		"Foo",
		"Foo:*:",
		"Foo:0x10:Error",
		"Foo:Alpha,Beta:warning",
		"Foo:High:0",
		"Bar::Critical",
		"Bar:0x04:4:FilterSpecs=A;B:Warning",
		"Bar:0x1:4:",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			first, err := c.ParseEventSpec(token)
			require.NoError(t, err)

			canonical := first.String()
			second, err := c.ParseEventSpec(canonical)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, canonical, second.String())
		})
	}
}

func TestParseEventSpec_DefaultCatalog(t *testing.T) {
	spec, err := ParseEventSpec("Microsoft-Windows-DotNETRuntime:GC,Exception:Warning")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft-Windows-DotNETRuntime:0x8001:3", spec.String())
}

func TestParseLoggerSpec(t *testing.T) {
	tests := []struct {
		token   string
		want    LoggerSpec
		wantErr error
	}{
		{token: "A", want: LoggerSpec{Prefix: "A"}},
		{token: "B:Warning", want: LoggerSpec{Prefix: "B", Level: "Warning"}},
		{token: "Microsoft.AspNetCore:information", want: LoggerSpec{Prefix: "Microsoft.AspNetCore", Level: "Information"}},
		{token: "C:", want: LoggerSpec{Prefix: "C"}},
		{token: "D:NONE", want: LoggerSpec{Prefix: "D", Level: "None"}},
		{token: "", wantErr: ErrEmptyPrefix},
		{token: ":Warning", wantErr: ErrEmptyPrefix},
		{token: "E:Verbose", wantErr: ErrInvalidLevel},
		{token: "F:3", wantErr: ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseLoggerSpec(tt.token)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerSpec_String(t *testing.T) {
	assert.Equal(t, "A", LoggerSpec{Prefix: "A"}.String())
	assert.Equal(t, "B:Warning", LoggerSpec{Prefix: "B", Level: "Warning"}.String())
}

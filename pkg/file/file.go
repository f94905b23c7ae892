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

package file

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// Option configures a Parser.
type Option func(*Parser)

// Parser parses line-oriented files with customizable settings.
type Parser struct {
	delimiter    string
	maxSize      int
	skipComments bool
	kvDelimiter  string
	vTrimChars   string
}

// WithDelimiter sets the delimiter used to split entries in the file.
// Default is newline ("\n").
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		p.delimiter = delim
	}
}

// WithMaxSize sets the maximum size (in bytes) of the content to be parsed.
// Default is 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithSkipComments sets whether to skip lines starting with '#'.
// Default is true.
func WithSkipComments(skip bool) Option {
	return func(p *Parser) {
		p.skipComments = skip
	}
}

// WithKVDelimiter sets the key-value delimiter used in GetMap.
// Default is "=".
func WithKVDelimiter(kvDelim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = kvDelim
	}
}

// WithVTrimChars sets characters to trim from values in GetMap.
// Default is no trimming.
func WithVTrimChars(trimChars string) Option {
	return func(p *Parser) {
		p.vTrimChars = trimChars
	}
}

// NewParser creates a new parser with the provided options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		delimiter:    "\n",
		maxSize:      1 << 20, // 1MB default
		skipComments: true,
		kvDelimiter:  "=",
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetMap reads the file at path and parses it into a map of keys to values.
func (p *Parser) GetMap(path string) (map[string]string, error) {
	b, err := p.read(path)
	if err != nil {
		return nil, err
	}
	return p.ParseMap(b, path)
}

// GetLines reads the file at path and returns its non-empty entries.
func (p *Parser) GetLines(path string) ([]string, error) {
	b, err := p.read(path)
	if err != nil {
		return nil, err
	}
	return p.ParseLines(b, path)
}

// ParseMap parses content into a map. Each entry is split on the first key/value
// delimiter; entries without one map to an empty value. Later duplicates win.
// source names the content in errors and logs.
func (p *Parser) ParseMap(content []byte, source string) (map[string]string, error) {
	lines, err := p.ParseLines(content, source)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line, p.kvDelimiter)
		key = strings.TrimSpace(key)
		if !found {
			slog.Debug("line without value",
				"source", source,
				"key", key,
			)
			result[key] = ""
			continue
		}

		value = strings.TrimSpace(value)
		if p.vTrimChars != "" {
			value = strings.Trim(value, p.vTrimChars)
		}
		result[key] = value
	}

	return result, nil
}

// ParseLines splits content into trimmed, non-empty entries.
func (p *Parser) ParseLines(content []byte, source string) ([]string, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("content of %q is not valid UTF-8", source)
	}
	if len(content) > p.maxSize {
		return nil, fmt.Errorf("%q exceeds maximum size of %d bytes", source, p.maxSize)
	}

	parts := strings.Split(string(content), p.delimiter)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		if p.skipComments && strings.HasPrefix(clean, "#") {
			continue
		}
		result = append(result, clean)
	}

	return result, nil
}

func (p *Parser) read(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return b, nil
}

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

package collector

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/NVIDIA/tracecollect/pkg/defaults"
)

const (
	nettraceMagic     = "Nettrace"
	maxSerializerName = 256
)

// Decoder turns a completed trace segment into events.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]Event, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, path string) ([]Event, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(ctx context.Context, path string) ([]Event, error) {
	return f(ctx, path)
}

// HeaderDecoder validates the nettrace stream header of a segment and
// reports one summary event for it. Event payloads are not parsed.
type HeaderDecoder struct{}

// Decode implements Decoder.
func (HeaderDecoder) Decode(ctx context.Context, path string) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat segment: %w", err)
	}

	magic := make([]byte, len(nettraceMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("segment header truncated: %w", err)
	}
	if !bytes.Equal(magic, []byte(nettraceMagic)) {
		return nil, fmt.Errorf("segment %q is not a nettrace stream", path)
	}

	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("segment serializer length truncated: %w", err)
	}
	if n == 0 || n > maxSerializerName {
		return nil, fmt.Errorf("segment serializer length %d out of range", n)
	}
	name := make([]byte, n)
	if _, err := io.ReadFull(f, name); err != nil {
		return nil, fmt.Errorf("segment serializer name truncated: %w", err)
	}

	ev := Event{
		Provider:  "tracecollect",
		Name:      "SegmentCompleted",
		Timestamp: info.ModTime(),
		ProcessID: segmentPID(path),
		Payload: map[string]any{
			"path":       path,
			"bytes":      info.Size(),
			"serializer": string(name),
		},
	}
	return []Event{ev}, nil
}

// segmentPID extracts the process id from {app}.{pid}.{n}.nettrace, or 0.
func segmentPID(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), defaults.SegmentExtension)
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return 0
	}
	pid, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0
	}
	return pid
}

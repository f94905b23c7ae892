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

package detect

import (
	"math"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

func TestSystemSelf(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("memory maps are read from procfs")
	}

	var s System
	pid := os.Getpid()

	modules, err := s.Modules(t.Context(), pid)
	require.NoError(t, err)
	require.NotEmpty(t, modules)

	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		assert.True(t, len(m) > 0 && m[0] == '/', "module %q is not absolute", m)
		assert.False(t, seen[m], "module %q listed twice", m)
		seen[m] = true
	}

	alive, err := s.Alive(t.Context(), pid)
	require.NoError(t, err)
	assert.True(t, alive)

	pids, err := s.Processes(t.Context())
	require.NoError(t, err)
	assert.Contains(t, pids, pid)
}

func TestProcessIDOutOfRange(t *testing.T) {
	if math.MaxInt == math.MaxInt32 {
		t.Skip("int is 32 bits")
	}

	tooBig := int64(math.MaxInt32) + 1
	_, err := System{}.Alive(t.Context(), int(tooBig))
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
}

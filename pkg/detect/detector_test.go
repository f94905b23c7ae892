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
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
)

type fakeLister map[int][]string

func (f fakeLister) Modules(_ context.Context, pid int) ([]string, error) {
	m, ok := f[pid]
	if !ok {
		return nil, cnserrors.New(cnserrors.ErrCodeNotFound, "target process not found")
	}
	return m, nil
}

func (f fakeLister) Processes(context.Context) ([]int, error) {
	pids := make([]int, 0, len(f))
	for pid := range f {
		pids = append(pids, pid)
	}
	return pids, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
}

func linuxDetector(l fakeLister) *Detector {
	p, _ := PlatformFor("linux")
	return New(
		WithModuleLister(l),
		WithProcessLister(l),
		WithClassifier(ExtensionClassifier{Platform: p}),
	)
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	app := filepath.Join(dir, "app")
	touch(t, filepath.Join(app, "MyApp.deps.json"))
	touch(t, filepath.Join(app, "My.App.deps.json"))

	tests := []struct {
		name    string
		modules []string
		want    string
		wantErr error
	}{
		{
			name: "managed assembly with manifest",
			modules: []string{
				"/usr/share/dotnet/dotnet",
				"/usr/share/dotnet/shared/Microsoft.NETCore.App/8.0.0/libcoreclr.so",
				filepath.Join(app, "MyApp.dll"),
			},
			want: filepath.Join(app, "MyApp.eventpipeconfig"),
		},
		{
			name: "extension-less apphost",
			modules: []string{
				filepath.Join(app, "MyApp"),
				filepath.Join(app, "MyApp.dll"),
			},
			want: filepath.Join(app, "MyApp.eventpipeconfig"),
		},
		{
			name: "dotted extension-less apphost",
			modules: []string{
				filepath.Join(app, "My.App"),
			},
			want: filepath.Join(app, "My.App.eventpipeconfig"),
		},
		{
			name: "dotted managed assembly",
			modules: []string{
				filepath.Join(app, "My.App.dll"),
			},
			want: filepath.Join(app, "My.App.eventpipeconfig"),
		},
		{
			name: "first qualifying module wins",
			modules: []string{
				filepath.Join(app, "Other.dll"),
				filepath.Join(app, "MyApp.dll"),
			},
			want: filepath.Join(app, "MyApp.eventpipeconfig"),
		},
		{
			name: "native library with manifest name ignored",
			modules: []string{
				filepath.Join(app, "MyApp.so"),
			},
			wantErr: ErrNoManagedAppFound,
		},
		{
			name:    "no modules",
			modules: nil,
			wantErr: ErrNoManagedAppFound,
		},
		{
			name: "no manifest",
			modules: []string{
				filepath.Join(dir, "elsewhere", "Tool.dll"),
			},
			wantErr: ErrNoManagedAppFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := linuxDetector(fakeLister{100: tt.modules})
			got, err := d.Detect(t.Context(), 100)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	d := linuxDetector(fakeLister{7: {filepath.Join(dir, "App.dll")}})

	_, err := d.Detect(t.Context(), 7)
	assert.ErrorIs(t, err, ErrNoManagedAppFound)
}

func TestDetectInvalidPID(t *testing.T) {
	d := linuxDetector(fakeLister{})
	_, err := d.Detect(t.Context(), 0)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
}

func TestDetectListerError(t *testing.T) {
	d := linuxDetector(fakeLister{})
	_, err := d.Detect(t.Context(), 12)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
	assert.False(t, errors.Is(err, ErrNoManagedAppFound))
}

func TestDetectUsesExistsHook(t *testing.T) {
	var checked []string
	d := New(
		WithModuleLister(fakeLister{1: {"/srv/api/Api.dll"}}),
		WithClassifier(ExtensionClassifier{Platform: platforms["linux"]}),
		WithExists(func(path string) bool {
			checked = append(checked, path)
			return true
		}),
	)

	got, err := d.Detect(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/srv/api/Api.eventpipeconfig"), got)
	assert.Equal(t, []string{filepath.FromSlash("/srv/api/Api.deps.json")}, checked)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a", "A.deps.json"))
	touch(t, filepath.Join(dir, "b", "B.deps.json"))

	t.Run("single candidate", func(t *testing.T) {
		d := linuxDetector(fakeLister{
			10: {filepath.Join(dir, "a", "A.dll")},
			11: {"/usr/lib/libc.so.6"},
		})
		pid, path, err := d.Discover(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 10, pid)
		assert.Equal(t, filepath.Join(dir, "a", "A.eventpipeconfig"), path)
	})

	t.Run("no candidates", func(t *testing.T) {
		d := linuxDetector(fakeLister{11: {"/usr/lib/libc.so.6"}})
		_, _, err := d.Discover(t.Context())
		assert.ErrorIs(t, err, ErrNoManagedAppFound)
	})

	t.Run("several candidates", func(t *testing.T) {
		d := linuxDetector(fakeLister{
			10: {filepath.Join(dir, "a", "A.dll")},
			20: {filepath.Join(dir, "b", "B.dll")},
		})
		_, _, err := d.Discover(t.Context())
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
	})

	t.Run("self is skipped", func(t *testing.T) {
		d := linuxDetector(fakeLister{os.Getpid(): {filepath.Join(dir, "a", "A.dll")}})
		_, _, err := d.Discover(t.Context())
		assert.ErrorIs(t, err, ErrNoManagedAppFound)
	})
}

func TestOwner(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a", "A.deps.json"))
	touch(t, filepath.Join(dir, "b", "B.deps.json"))
	control := filepath.Join(dir, "a", "A.eventpipeconfig")

	t.Run("matching process", func(t *testing.T) {
		d := linuxDetector(fakeLister{
			10: {filepath.Join(dir, "a", "A.dll")},
			20: {filepath.Join(dir, "b", "B.dll")},
		})
		pid, err := d.Owner(t.Context(), control)
		require.NoError(t, err)
		assert.Equal(t, 10, pid)
	})

	t.Run("no match", func(t *testing.T) {
		d := linuxDetector(fakeLister{20: {filepath.Join(dir, "b", "B.dll")}})
		_, err := d.Owner(t.Context(), control)
		assert.ErrorIs(t, err, ErrNoManagedAppFound)
		assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
	})

	t.Run("several instances", func(t *testing.T) {
		d := linuxDetector(fakeLister{
			10: {filepath.Join(dir, "a", "A.dll")},
			11: {filepath.Join(dir, "a", "A.dll")},
		})
		_, err := d.Owner(t.Context(), control)
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
	})
}

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
	"path/filepath"
	"runtime"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Platform describes how loaded modules are classified on one OS.
// All entries are lower-case.
type Platform struct {
	// NativeExtensions are file extensions of native shared libraries.
	NativeExtensions sets.Set[string]
	// Excluded are module base names shipped by the runtime itself.
	Excluded sets.Set[string]
}

// runtimeNative are runtime host and engine modules shared by all platforms,
// listed without extension.
var runtimeNative = []string{
	"clrjit",
	"coreclr",
	"hostfxr",
	"hostpolicy",
	"mscordaccore",
	"mscordbi",
	"system.private.corelib",
	"clrgc",
	"dotnet",
}

var platforms = map[string]Platform{
	"linux": {
		NativeExtensions: sets.New(".so", ".o", ".a"),
		Excluded:         excluded("lib", ".so", "ld-linux-x86-64.so.2", "ld-linux-aarch64.so.1"),
	},
	"darwin": {
		NativeExtensions: sets.New(".dylib", ".so", ".bundle"),
		Excluded:         excluded("lib", ".dylib", "dyld"),
	},
	"windows": {
		NativeExtensions: sets.New(".sys", ".drv", ".ocx", ".cpl"),
		Excluded: excluded("", ".dll", "ntdll.dll", "kernel32.dll", "kernelbase.dll",
			"ucrtbase.dll", "msvcrt.dll", "user32.dll", "advapi32.dll", "ole32.dll",
			"oleaut32.dll", "dotnet.exe"),
	},
}

// excluded expands the runtime-native names with the platform's library
// prefix and extension, plus extra literal names.
func excluded(prefix, ext string, extra ...string) sets.Set[string] {
	s := sets.New(extra...)
	for _, name := range runtimeNative {
		s.Insert(name, prefix+name+ext, name+".dll")
	}
	return s
}

// PlatformFor returns the classification table for goos.
func PlatformFor(goos string) (Platform, bool) {
	p, ok := platforms[goos]
	return p, ok
}

// CurrentPlatform returns the table for the running OS, or the linux table
// when the OS has no entry.
func CurrentPlatform() Platform {
	if p, ok := PlatformFor(runtime.GOOS); ok {
		return p
	}
	return platforms["linux"]
}

// ModuleClassifier decides whether a loaded module may be a managed
// application.
type ModuleClassifier interface {
	IsManaged(path string) bool
}

// ExtensionClassifier classifies modules by extension and base name.
type ExtensionClassifier struct {
	Platform Platform
}

// IsManaged implements ModuleClassifier.
func (c ExtensionClassifier) IsManaged(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return false
	}
	if c.Platform.NativeExtensions.Has(filepath.Ext(base)) {
		return false
	}
	// versioned shared objects such as libfoo.so.1
	if strings.Contains(base, ".so.") {
		return false
	}
	return !c.Platform.Excluded.Has(base) &&
		!c.Platform.Excluded.Has(strings.TrimSuffix(base, filepath.Ext(base)))
}

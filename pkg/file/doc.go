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

// Package file reads line-oriented Key=Value text files.
//
// The handshake control file consumed by the target runtime is such a file,
// and tracecollect reads it back to report an in-progress collection:
//
//	p := file.NewParser()
//	kv, err := p.GetMap("/srv/app/app.eventpipeconfig")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(kv["Providers"])
//
// Content must be valid UTF-8 and no larger than the configured maximum size.
// Blank lines and, by default, lines starting with '#' are skipped. Only the
// first key/value delimiter on a line splits it, so values may themselves
// contain '=' (e.g. provider filter data).
//
// Functions in this package are safe for concurrent use.
package file

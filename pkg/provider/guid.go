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
	"crypto/sha1" //nolint:gosec // EventSource GUIDs are defined over SHA-1
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

// eventSourceNamespace seeds name-derived provider GUIDs.
var eventSourceNamespace = []byte{
	0x48, 0x2C, 0x2D, 0xB2, 0xC3, 0x90, 0x47, 0xC8,
	0x87, 0xF8, 0x1A, 0x15, 0xBF, 0xC1, 0x30, 0xFB,
}

// NameGUID derives the provider GUID an EventSource publishes when it does
// not declare one: SHA-1 over the namespace and the invariant upper-cased
// name in UTF-16BE, truncated to 16 bytes with version 5 set.
func NameGUID(name string) uuid.UUID {
	upper := cases.Upper(language.Und).String(name)
	encoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().String(upper)
	if err != nil {
		// only reachable for invalid UTF-8 input; hash the raw bytes instead
		encoded = upper
	}

	h := sha1.New() //nolint:gosec
	h.Write(eventSourceNamespace)
	h.Write([]byte(encoded))
	sum := h.Sum(nil)

	var raw [16]byte
	copy(raw[:], sum[:16])
	raw[7] = (raw[7] & 0x0F) | 0x50

	// raw holds the first three GUID fields little-endian
	var id uuid.UUID
	binary.BigEndian.PutUint32(id[0:4], binary.LittleEndian.Uint32(raw[0:4]))
	binary.BigEndian.PutUint16(id[4:6], binary.LittleEndian.Uint16(raw[4:6]))
	binary.BigEndian.PutUint16(id[6:8], binary.LittleEndian.Uint16(raw[6:8]))
	copy(id[8:], raw[8:])
	return id
}

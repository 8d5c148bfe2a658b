// Copyright 2021 Google LLC
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

package dict

import (
	"encoding/binary"
)

// MakeDict creates test .dict file data. When sametypesequence is given the
// per-data type bytes are omitted and the final string-like data item of each
// word is left unterminated.
func MakeDict(words []*Word, sametypesequence []DataType) []byte {
	var b []byte
	for _, w := range words {
		for i, d := range w.Data {
			if len(sametypesequence) == 0 {
				b = append(b, byte(d.Type))
			}
			if d.Type.stringLike() {
				b = append(b, d.Data...)
				if len(sametypesequence) == 0 || i != len(w.Data)-1 {
					b = append(b, 0)
				}
				continue
			}
			// File-like data is prefixed with its size.
			b = binary.BigEndian.AppendUint32(b, uint32(len(d.Data)))
			b = append(b, d.Data...)
		}
	}

	return b
}

// Copyright 2024 Google LLC
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

package idx

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MakeIndex creates test .idx index data for the given words.
func MakeIndex(words []*Word, offsetBits int) []byte {
	var b []byte
	for _, w := range words {
		b = append(b, w.Word...)
		b = append(b, 0)
		switch offsetBits {
		case 32:
			if w.Offset > math.MaxUint32 {
				panic(fmt.Sprintf("offset %d does not fit in 32 bits", w.Offset))
			}
			//nolint:gosec // test code, offset fits in 32 bits.
			b = binary.BigEndian.AppendUint32(b, uint32(w.Offset))
		case 64:
			b = binary.BigEndian.AppendUint64(b, w.Offset)
		default:
			panic(fmt.Sprintf("unsupported offset bits: %d", offsetBits))
		}
		b = binary.BigEndian.AppendUint32(b, w.Size)
	}
	return b
}

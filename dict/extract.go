// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dict

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/k3a/html2text"
	"golang.org/x/text/encoding/charmap"

	"github.com/ianlewis/sdpack/idx"
)

// cursor is a bounds-checked reader over a single word's data range.
type cursor struct {
	b   []byte
	off int
}

// done returns true when the cursor is exhausted.
func (c *cursor) done() bool {
	return c.off >= len(c.b)
}

// readByte reads a single byte. It must not be called after the cursor is
// exhausted.
func (c *cursor) readByte() byte {
	b := c.b[c.off]
	c.off++
	return b
}

// rest returns all unread bytes and consumes them.
func (c *cursor) rest() []byte {
	b := c.b[c.off:]
	c.off = len(c.b)
	return b
}

// readString returns the bytes up to the next null terminator and advances
// past the terminator. All remaining bytes are returned if there is no null
// terminator.
func (c *cursor) readString() []byte {
	b := c.b[c.off:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		c.off += i + 1
		return b[:i]
	}
	c.off = len(c.b)
	return b
}

// readBlob reads a 32-bit big-endian size followed by that many bytes of
// file-like data.
func (c *cursor) readBlob() ([]byte, error) {
	if c.off+4 > len(c.b) {
		return nil, fmt.Errorf("%w: data size at %d", ErrOutOfRange, c.off)
	}
	size := binary.BigEndian.Uint32(c.b[c.off:])
	c.off += 4

	if uint64(c.off)+uint64(size) > uint64(len(c.b)) {
		return nil, fmt.Errorf("%w: %d byte data at %d", ErrOutOfRange, size, c.off)
	}
	b := c.b[c.off : c.off+int(size)]
	c.off += int(size)
	return b, nil
}

// decodeText decodes b as utf-8 text. Invalid utf-8 data falls back to a
// Latin-1 decoding so that text extraction never fails.
func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// segmentKind classifies a type descriptor for definition extraction.
type segmentKind int

const (
	segmentPlainText segmentKind = iota
	segmentHTML
	segmentPhonetic
	segmentUnknown
)

// kindOf returns the extraction segment kind for a data type.
func kindOf(t DataType) segmentKind {
	switch t {
	case UTFTextType:
		return segmentPlainText
	case HTMLType:
		return segmentHTML
	case PhoneticType:
		return segmentPhonetic
	default:
		return segmentUnknown
	}
}

// extractPlainText appends the rest of the data range as plain text. The
// scan ends because the remaining data is consumed.
func extractPlainText(c *cursor, out *strings.Builder) bool {
	out.WriteString(decodeText(c.rest()))
	return true
}

// extractHTML appends the rest of the data range with HTML markup stripped.
// The scan ends because the remaining data is consumed.
func extractHTML(c *cursor, out *strings.Builder) bool {
	out.WriteString(html2text.HTML2Text(decodeText(c.rest())))
	return true
}

// extractPhonetic appends the phonetic string up to the next null terminator
// wrapped in brackets and advances past the terminator. Empty phonetic
// strings append nothing.
func extractPhonetic(c *cursor, out *strings.Builder) bool {
	s := c.readString()
	if len(s) > 0 {
		out.WriteString("[")
		out.WriteString(decodeText(s))
		out.WriteString("]")
	}
	return false
}

// Extract returns the definition text for the given index entry. The entry's
// data range is scanned according to the sametypesequence type descriptors; a
// dictionary without a sametypesequence is extracted as a single plain text
// segment. A plain text or HTML descriptor consumes the remaining data range
// and ends the scan even when more descriptors follow it. A phonetic
// descriptor reads up to the next null terminator and continues. Unknown
// descriptors are skipped without consuming data.
//
// An entry whose data range lies outside the dictionary data returns an
// error wrapping [ErrOutOfRange].
func (d *Dict) Extract(e *idx.Word) (string, error) {
	b, err := d.readRange(e.Offset, e.Size)
	if err != nil {
		return "", err
	}

	sametypesequence := d.sametypesequence
	if len(sametypesequence) == 0 {
		sametypesequence = []DataType{UTFTextType}
	}

	var out strings.Builder
	c := &cursor{b: b}
	for _, t := range sametypesequence {
		var done bool
		switch kindOf(t) {
		case segmentPlainText:
			done = extractPlainText(c, &out)
		case segmentHTML:
			done = extractHTML(c, &out)
		case segmentPhonetic:
			done = extractPhonetic(c, &out)
		case segmentUnknown:
			// Skip the descriptor without consuming data.
		}
		if done {
			break
		}
	}

	return out.String(), nil
}

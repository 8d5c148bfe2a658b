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

package syn

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Scanner reads synonym entries from a .syn file in file order.
type Scanner struct {
	rc io.ReadCloser
	s  *bufio.Scanner
}

// NewScanner returns a new synonym index scanner that scans the index from
// start to end. The Scanner assumes ownership of the reader and should be
// closed with the Close method.
func NewScanner(r io.ReadCloser) (*Scanner, error) {
	s := &Scanner{
		rc: r,
		s:  bufio.NewScanner(bufio.NewReader(r)),
	}
	s.s.Split(splitEntry)
	return s, nil
}

// Scan advances the index to the next synonym entry. It returns false if the
// scan stops either by reaching the end of the index or an error.
func (s *Scanner) Scan() bool {
	return s.s.Scan()
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	//nolint:wrapcheck // error should not be wrapped
	return s.s.Err()
}

// Close closes the underlying reader.
func (s *Scanner) Close() error {
	if err := s.rc.Close(); err != nil {
		return fmt.Errorf("closing syn file: %w", err)
	}
	return nil
}

// Word returns the synonym entry parsed by the last call to Scan.
func (s *Scanner) Word() *Word {
	var w Word
	b := s.s.Bytes()
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return &w
	}

	w.Word = string(b[:i])
	w.OriginalWordIndex = binary.BigEndian.Uint32(b[i+1:])
	return &w
}

// splitEntry tokenizes a single synonym entry: a null terminated word
// followed by the 32-bit original word index.
func splitEntry(data []byte, _ bool) (advance int, token []byte, err error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		// No terminator yet. Request more data. At EOF this ends the scan,
		// dropping a truncated trailing entry.
		return 0, nil, nil
	}

	n := i + 5
	if len(data) < n {
		return 0, nil, nil
	}
	return n, data[:n], nil
}

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

package idx

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidIdxOffset indicates that the OffsetBits is an invalid value.
var ErrInvalidIdxOffset = errors.New("invalid idxoffsetbits")

// ScannerOptions are options for scanning an .idx file.
type ScannerOptions struct {
	// OffsetBits are the number of bits in the offset fields. Valid values for
	// OffsetBits are either 32 or 64.
	OffsetBits int
}

// DefaultScannerOptions is the default options for a Scanner.
var DefaultScannerOptions = &ScannerOptions{
	OffsetBits: 32,
}

// Scanner reads index entries from an .idx file in file order.
type Scanner struct {
	rc io.ReadCloser
	s  *bufio.Scanner

	// offsetSize is the width in bytes of the offset field.
	offsetSize int
}

// NewScanner returns a new index scanner that scans the index from start to
// end. The Scanner assumes ownership of the reader and should be closed with
// the Close method.
func NewScanner(r io.ReadCloser, options *ScannerOptions) (*Scanner, error) {
	if options == nil {
		options = DefaultScannerOptions
	}
	if options.OffsetBits != 32 && options.OffsetBits != 64 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdxOffset, options.OffsetBits)
	}

	s := &Scanner{
		rc:         r,
		s:          bufio.NewScanner(bufio.NewReader(r)),
		offsetSize: options.OffsetBits / 8,
	}
	s.s.Split(s.splitEntry)
	return s, nil
}

// Scan advances the index to the next index entry. It returns false if the
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
		return fmt.Errorf("closing idx file: %w", err)
	}
	return nil
}

// Word returns the index entry parsed by the last call to Scan.
func (s *Scanner) Word() *Word {
	var w Word
	b := s.s.Bytes()
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return &w
	}

	w.Word = string(b[:i])
	fields := b[i+1:]
	if s.offsetSize == 8 {
		w.Offset = binary.BigEndian.Uint64(fields)
	} else {
		w.Offset = uint64(binary.BigEndian.Uint32(fields))
	}
	w.Size = binary.BigEndian.Uint32(fields[s.offsetSize:])
	return &w
}

// splitEntry tokenizes a single index entry: a null terminated word followed
// by the offset and size fields.
func (s *Scanner) splitEntry(data []byte, _ bool) (advance int, token []byte, err error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		// No terminator yet. Request more data. At EOF this ends the scan,
		// dropping a truncated trailing entry.
		return 0, nil, nil
	}

	n := i + 1 + s.offsetSize + 4
	if len(data) < n {
		return 0, nil, nil
	}
	return n, data[:n], nil
}

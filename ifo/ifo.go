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

// Package ifo implements reading .ifo metadata files.
//
// The .ifo file is a text file. The first line is a magic string
// identifying the dictionary format. Each following line is a key=value
// pair describing the dictionary (name, word count, index size, etc.).
package ifo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrMissingVersion indicates that the .ifo data does not start with a
// version key.
var ErrMissingVersion = errors.New("missing version")

// ErrInvalidKey indicates that a metadata key contains invalid characters.
var ErrInvalidKey = errors.New("invalid key")

var keyRegex = regexp.MustCompile("^[a-zA-Z0-9-_]+$")

// Ifo is a parsed .ifo metadata file.
type Ifo struct {
	magic string

	// keys holds the metadata keys in file order.
	keys     []string
	metadata map[string]string
}

// New reads .ifo metadata from r. The first line is retained verbatim as
// the magic string and is not validated. Subsequent non-empty lines are
// split on the first '=' with surrounding spaces trimmed. The first key
// must be "version".
func New(r io.Reader) (*Ifo, error) {
	ifo := &Ifo{
		metadata: map[string]string{},
	}

	s := bufio.NewScanner(bufio.NewReader(r))
	if s.Scan() {
		ifo.magic = s.Text()
	}
	for s.Scan() {
		line := s.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		k, v, found := strings.Cut(line, "=")
		if !found {
			// Lines with no separator carry no metadata.
			continue
		}
		key := strings.TrimRight(k, " ")
		value := strings.TrimLeft(v, " ")
		if !keyRegex.MatchString(key) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		if len(ifo.keys) == 0 && key != "version" {
			return nil, ErrMissingVersion
		}
		if _, exists := ifo.metadata[key]; !exists {
			ifo.keys = append(ifo.keys, key)
		}
		ifo.metadata[key] = value
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading .ifo data: %w", err)
	}
	if len(ifo.keys) == 0 {
		return nil, ErrMissingVersion
	}

	return ifo, nil
}

// Magic returns the magic string on the file's first line.
func (i *Ifo) Magic() string {
	return i.magic
}

// Value returns the value for the given key. It returns an empty string
// if the key is not present.
func (i *Ifo) Value(key string) string {
	return i.metadata[key]
}

// Keys returns the metadata keys in the order they appear in the file.
func (i *Ifo) Keys() []string {
	keys := make([]string, len(i.keys))
	copy(keys, i.keys)
	return keys
}

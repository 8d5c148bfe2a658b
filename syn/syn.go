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

package syn

import (
	"fmt"
	"io"

	"golang.org/x/text/transform"
)

// Word is a .syn file entry.
type Word struct {
	// Word is the synonym word.
	Word string

	// OriginalWordIndex is the index of the related entry in the .idx index.
	OriginalWordIndex uint32
}

// Options are options for the synonym map.
type Options struct {
	// Folder returns a [transform.Transformer] that performs folding (e.g.
	// case folding, whitespace folding, etc.) on synonym words.
	Folder func() transform.Transformer
}

// DefaultOptions is the default options for a Map.
var DefaultOptions = &Options{
	Folder: func() transform.Transformer {
		return transform.Nop
	},
}

// Map groups the synonym words of a .syn file by their folded form. Grouping
// is keyed only by the folded synonym word. The original word index is
// decoded but is not used for grouping.
type Map struct {
	words map[string][]string

	// foldTransformer performs folding on text.
	foldTransformer func() transform.Transformer
}

// NewMap returns a new Map by reading the data from r. NewMap assumes
// ownership of the reader and closes it.
func NewMap(r io.ReadCloser, options *Options) (*Map, error) {
	if options == nil {
		options = DefaultOptions
	}

	m := Map{
		words:           map[string][]string{},
		foldTransformer: DefaultOptions.Folder,
	}
	if options.Folder != nil {
		m.foldTransformer = options.Folder
	}

	s, err := NewScanner(r)
	if err != nil {
		return nil, fmt.Errorf("creating synonym index scanner: %w", err)
	}
	defer s.Close()

	for s.Scan() {
		word := s.Word()
		if word.Word == "" {
			break
		}
		folded, _, err := transform.String(m.foldTransformer(), word.Word)
		if err != nil {
			return nil, fmt.Errorf("folding word %q: %w", word.Word, err)
		}
		m.words[folded] = append(m.words[folded], word.Word)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scanning synonym index: %w", err)
	}

	return &m, nil
}

// Lookup returns the synonym words grouped under the given word in file
// order. The given word is folded before lookup. A word with no synonym
// entries returns nil.
func (m *Map) Lookup(word string) ([]string, error) {
	folded, _, err := transform.String(m.foldTransformer(), word)
	if err != nil {
		return nil, fmt.Errorf("folding query %q: %w", word, err)
	}

	return m.words[folded], nil
}

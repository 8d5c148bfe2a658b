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

package idx

import (
	"fmt"
	"io"

	"golang.org/x/text/transform"

	"github.com/ianlewis/sdpack/internal/index"
)

// Word is an .idx file entry.
type Word struct {
	Word   string
	Offset uint64
	Size   uint32
}

// Read reads the full index from r in file order. The file order is the
// canonical iteration order for conversion and frequency ranking. Reading
// stops at the end of the data or at the first entry with an empty word.
// Read assumes ownership of the reader and closes it.
func Read(r io.ReadCloser, options *ScannerOptions) ([]*Word, error) {
	s, err := NewScanner(r, options)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var words []*Word
	for s.Scan() {
		word := s.Word()
		if word.Word == "" {
			break
		}
		words = append(words, word)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scanning index: %w", err)
	}

	return words, nil
}

type foldedWord struct {
	folded string
	word   *Word
}

func (w *foldedWord) String() string {
	return w.folded
}

// Options are options for the in-memory index.
type Options struct {
	// Folder returns a [transform.Transformer] that performs folding (e.g.
	// case folding, whitespace folding, etc.) on index entries.
	Folder func() transform.Transformer
}

// DefaultOptions is the default options for an Idx.
var DefaultOptions = &Options{
	Folder: func() transform.Transformer {
		return transform.Nop
	},
}

// Idx is an in-memory search index over .idx entries. Entries are folded
// with the configured transformer and sorted by the folded value.
type Idx struct {
	index *index.Index[*foldedWord]

	// foldTransformer performs folding on text.
	foldTransformer func() transform.Transformer
}

// New returns a new in-memory index over the given words.
func New(words []*Word, options *Options) (*Idx, error) {
	if options == nil {
		options = DefaultOptions
	}

	idx := Idx{
		foldTransformer: DefaultOptions.Folder,
	}
	if options.Folder != nil {
		idx.foldTransformer = options.Folder
	}

	folded := make([]*foldedWord, 0, len(words))
	for _, word := range words {
		f, _, err := transform.String(idx.foldTransformer(), word.Word)
		if err != nil {
			return nil, fmt.Errorf("folding word %q: %w", word.Word, err)
		}
		folded = append(folded, &foldedWord{
			folded: f,
			word:   word,
		})
	}

	idx.index = index.NewIndex(folded)

	return &idx, nil
}

// Search performs a query of the index and returns matching words.
func (idx *Idx) Search(query string) ([]*Word, error) {
	foldedQuery, _, err := transform.String(idx.foldTransformer(), query)
	if err != nil {
		return nil, fmt.Errorf("folding query %q: %w", query, err)
	}

	result := idx.index.Search(foldedQuery)

	var words []*Word
	for _, w := range result {
		words = append(words, w.word)
	}

	return words, nil
}

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

package syn_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/sdpack/internal/folding"
	"github.com/ianlewis/sdpack/syn"
)

// TestMap_Lookup tests Map.Lookup.
func TestMap_Lookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		synWords []*syn.Word
		options  *syn.Options

		expected []string
	}{
		{
			name:     "empty index",
			query:    "foo",
			synWords: []*syn.Word{},

			expected: nil,
		},
		{
			name:  "no match",
			query: "hoge",
			synWords: []*syn.Word{
				{
					Word:              "bar",
					OriginalWordIndex: 0,
				},
				{
					Word:              "baz",
					OriginalWordIndex: 1,
				},
			},

			expected: nil,
		},
		{
			name:  "single match",
			query: "bar",
			synWords: []*syn.Word{
				{
					Word:              "bar",
					OriginalWordIndex: 0,
				},
				{
					Word:              "baz",
					OriginalWordIndex: 1,
				},
			},

			expected: []string{"bar"},
		},
		{
			name:  "exact match by default",
			query: "hoge",
			synWords: []*syn.Word{
				{
					Word:              "Hoge",
					OriginalWordIndex: 0,
				},
			},

			expected: nil,
		},
		{
			name:  "case-insensitive grouping",
			query: "car",
			synWords: []*syn.Word{
				{
					Word:              "Car",
					OriginalWordIndex: 0,
				},
				{
					Word:              "automobile",
					OriginalWordIndex: 0,
				},
				{
					Word:              "CAR",
					OriginalWordIndex: 3,
				},
			},
			options: &syn.Options{
				Folder: folding.Lower,
			},

			// NOTE: The returned words are the literal values in the index in
			//       file order, not the folded values.
			expected: []string{"Car", "CAR"},
		},
		{
			name:  "query is folded",
			query: "cAr",
			synWords: []*syn.Word{
				{
					Word:              "Car",
					OriginalWordIndex: 0,
				},
				{
					Word:              "CAR",
					OriginalWordIndex: 3,
				},
			},
			options: &syn.Options{
				Folder: folding.Lower,
			},

			expected: []string{"Car", "CAR"},
		},
		{
			name:  "original word index not used for grouping",
			query: "bar",
			synWords: []*syn.Word{
				{
					Word:              "bar",
					OriginalWordIndex: 123,
				},
				{
					Word:              "bar",
					OriginalWordIndex: 456,
				},
			},

			expected: []string{"bar", "bar"},
		},
		{
			name:  "stops at empty word",
			query: "baz",
			synWords: []*syn.Word{
				{
					Word:              "bar",
					OriginalWordIndex: 0,
				},
				{
					Word:              "",
					OriginalWordIndex: 1,
				},
				{
					Word:              "baz",
					OriginalWordIndex: 2,
				},
			},

			expected: nil,
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			b := syn.MakeSyn(test.synWords)

			m, err := syn.NewMap(io.NopCloser(bytes.NewReader(b)), test.options)
			if err != nil {
				t.Fatalf("syn.NewMap: %v", err)
			}

			result, err := m.Lookup(test.query)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}

			if diff := cmp.Diff(test.expected, result); diff != "" {
				t.Fatalf("Lookup (-want, +got):\n%s", diff)
			}
		})
	}
}

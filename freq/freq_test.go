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

package freq_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/sdpack/freq"
)

// TestRank tests Rank.
func TestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		word     string
		position int

		expected int
	}{
		{
			name:     "short simple word",
			word:     "of",
			position: 1000,

			expected: 80,
		},
		{
			name:     "long mixed case word",
			word:     "Extraordinary",
			position: 1000,

			expected: 1000,
		},
		{
			name:     "four letter word",
			word:     "word",
			position: 100,

			expected: 40,
		},
		{
			name:     "five letter word",
			word:     "hello",
			position: 10,

			expected: 4,
		},
		{
			name:     "rounds to nearest",
			word:     "cat",
			position: 10,

			expected: 1,
		},
		{
			name:     "rounds down to zero",
			word:     "a",
			position: 1,

			expected: 0,
		},
		{
			name:     "length counts runes",
			word:     "süß",
			position: 100,

			expected: 10,
		},
		{
			name:     "long simple word",
			word:     "longerword",
			position: 7,

			expected: 6,
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if got := freq.Rank(test.word, test.position); got != test.expected {
				t.Fatalf("Rank(%q, %d): want %d, got %d", test.word, test.position, test.expected, got)
			}
		})
	}
}

// TestRanks tests Ranks.
func TestRanks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		words []string

		expected map[string]int
	}{
		{
			name:  "empty",
			words: nil,

			expected: map[string]int{},
		},
		{
			name:  "dictionary order",
			words: []string{"apple", "Banana", "fig"},

			expected: map[string]int{
				"apple":  0,
				"banana": 2,
				"fig":    0,
			},
		},
		{
			name:  "last occurrence wins",
			words: []string{"zebra", "Zebra"},

			expected: map[string]int{
				"zebra": 1,
			},
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(test.expected, freq.Ranks(test.words)); diff != "" {
				t.Fatalf("Ranks (-want, +got):\n%s", diff)
			}
		})
	}
}

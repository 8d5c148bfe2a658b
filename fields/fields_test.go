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

package fields_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/sdpack/fields"
)

// TestParse tests Parse.
func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		definition string

		expected *fields.Definition
	}{
		{
			name:       "empty",
			definition: "",

			expected: &fields.Definition{},
		},
		{
			name:       "no patterns",
			definition: "plain definition text",

			expected: &fields.Definition{
				Body: "plain definition text",
			},
		},
		{
			name:       "bracket pronunciation",
			definition: "running [active], see also sprint",

			expected: &fields.Definition{
				Pronunciation: "active",
				Body:          "running , see also sprint",
			},
		},
		{
			name:       "slash pronunciation",
			definition: "word /wɜːd/ a unit of language",

			expected: &fields.Definition{
				Pronunciation: "wɜːd",
				Body:          "word  a unit of language",
			},
		},
		{
			name:       "part of speech",
			definition: "dog n. a domestic animal",

			expected: &fields.Definition{
				PartOfSpeech: "noun",
				Body:         "dog  a domestic animal",
			},
		},
		{
			name:       "part of speech adjective",
			definition: "adj. bright in color",

			expected: &fields.Definition{
				PartOfSpeech: "adjective",
				Body:         "bright in color",
			},
		},
		{
			name:       "part of speech requires word boundary",
			definition: "to sprint.",

			expected: &fields.Definition{
				Body: "to sprint.",
			},
		},
		{
			name:       "only first part of speech",
			definition: "n. or v. words",

			expected: &fields.Definition{
				PartOfSpeech: "noun",
				Body:         "or v. words",
			},
		},
		{
			name:       "example",
			definition: "to run fast e.g. He runs every day. Also jog.",

			expected: &fields.Definition{
				Examples: []string{"He runs every day"},
				Body:     "to run fast . Also jog.",
			},
		},
		{
			name:       "example marker",
			definition: "a song. example: She sings well.",

			expected: &fields.Definition{
				Examples: []string{"She sings well"},
				Body:     "a song. .",
			},
		},
		{
			name:       "multiple examples",
			definition: "to move e.g. run fast. example: go home?",

			expected: &fields.Definition{
				Examples: []string{"run fast", "go home"},
				Body:     "to move . ?",
			},
		},
		{
			name:       "etymology",
			definition: "water, a clear liquid. Etymology: from Old English wæter.",

			expected: &fields.Definition{
				Etymology: "from Old English wæter",
				Body:      "water, a clear liquid. .",
			},
		},
		{
			name:       "etymology lowercase marker",
			definition: "a word. etymology: from Greek.",

			expected: &fields.Definition{
				Etymology: "from Greek",
				Body:      "a word. .",
			},
		},
		{
			name:       "all fields",
			definition: "dog [dɔːɡ] n. a domestic animal. e.g. The dog barks loudly. Etymology: from Old English docga.",

			expected: &fields.Definition{
				Pronunciation: "dɔːɡ",
				PartOfSpeech:  "noun",
				Examples:      []string{"The dog barks loudly"},
				Etymology:     "from Old English docga",
				Body:          "dog   a domestic animal. . .",
			},
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(test.expected, fields.Parse(test.definition)); diff != "" {
				t.Fatalf("Parse (-want, +got):\n%s", diff)
			}
		})
	}
}

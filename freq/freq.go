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

// Package freq estimates word frequency ranks from dictionary order.
//
// Dictionaries list words without frequency information. The rank heuristic
// assumes that short, simple words are more common than long or unusual ones
// and assigns each word a rank based on its position in the dictionary
// discounted by the word's length and spelling. Lower ranks indicate more
// frequent words.
package freq

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// simpleWordRegex matches words spelled entirely with lowercase ASCII
// letters.
var simpleWordRegex = regexp.MustCompile(`^[a-z]+$`)

// Rank returns the estimated frequency rank for the word at the given
// one-based dictionary position.
func Rank(word string, position int) int {
	rank := float64(position)

	switch n := utf8.RuneCountInString(word); {
	case n <= 3:
		rank *= 0.1
	case n <= 5:
		rank *= 0.5
	}

	if simpleWordRegex.MatchString(word) {
		rank *= 0.8
	}

	return int(math.Round(rank))
}

// Ranks returns estimated frequency ranks for the given words in dictionary
// order. Ranks are keyed by the lowercased word. Words that lowercase to the
// same key keep the rank of the last occurrence.
func Ranks(words []string) map[string]int {
	ranks := make(map[string]int, len(words))
	for i, word := range words {
		ranks[strings.ToLower(word)] = Rank(word, i+1)
	}

	return ranks
}

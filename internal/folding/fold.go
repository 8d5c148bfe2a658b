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

// Package folding implements text folding used when searching dictionary
// indexes.
package folding

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// New returns the default folding transformer used for index searches. It
// performs Unicode case folding, removes diacritical marks, and folds
// whitespace so that queries match entries regardless of capitalization,
// accents, or spacing.
func New() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		cases.Fold(),
		&whitespaceFolder{},
		norm.NFC,
	)
}

// Lower returns a transformer that lowercases each rune. It matches the
// rune-wise semantics of [strings.ToLower] and is used when a stored value
// must agree with lowercased text produced elsewhere.
func Lower() transform.Transformer {
	return runes.Map(unicode.ToLower)
}

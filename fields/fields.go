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

// Package fields segments definition text into structured fields.
//
// Definition text in dictionary data is unstructured. Pronunciations, parts
// of speech, example sentences, and etymologies are embedded in the text
// following loose conventions. This package extracts those fields with
// pattern matching and removes the matched spans to produce a cleaned
// definition body.
package fields

import (
	"regexp"
	"strings"
)

var (
	// pronunciationRegex matches the first bracket- or slash-delimited span.
	pronunciationRegex = regexp.MustCompile(`\[([^\]]+)\]|/([^/]+)/`)

	// partOfSpeechRegex matches a part of speech abbreviation.
	partOfSpeechRegex = regexp.MustCompile(`\b(n|v|adj|adv|prep|conj|int)\.`)

	// exampleRegex matches example sentences following an example marker up
	// to the next sentence terminator.
	exampleRegex = regexp.MustCompile(`(?:e\.g\.|example:)\s*([^.!?]+)`)

	// etymologyRegex matches etymology text following an etymology marker up
	// to the next sentence terminator.
	etymologyRegex = regexp.MustCompile(`(?i)etymology:\s*([^.!?]+)`)
)

// partOfSpeechNames expands part of speech abbreviations to their full name.
var partOfSpeechNames = map[string]string{
	"n":    "noun",
	"v":    "verb",
	"adj":  "adjective",
	"adv":  "adverb",
	"prep": "preposition",
	"conj": "conjunction",
	"int":  "interjection",
}

// Definition holds the fields parsed from a definition string.
type Definition struct {
	// Body is the definition text with all extracted spans removed.
	Body string

	// Pronunciation is the content of the first bracket- or slash-delimited
	// span.
	Pronunciation string

	// PartOfSpeech is the expanded name of the first part of speech
	// abbreviation.
	PartOfSpeech string

	// Examples are example sentences in order of appearance.
	Examples []string

	// Etymology is the text following an etymology marker.
	Etymology string
}

// Parse extracts pronunciation, part of speech, example sentences, and
// etymology from a definition string. Each pattern is matched independently
// against the full text. Matched spans are then removed from the text one at
// a time by first occurrence to produce the cleaned body. A field whose
// pattern is absent is left as its zero value. Parse never fails.
func Parse(definition string) *Definition {
	d := &Definition{}
	var spans []string

	if m := pronunciationRegex.FindStringSubmatch(definition); m != nil {
		d.Pronunciation = m[1]
		if d.Pronunciation == "" {
			d.Pronunciation = m[2]
		}
		spans = append(spans, m[0])
	}

	if m := partOfSpeechRegex.FindStringSubmatch(definition); m != nil {
		d.PartOfSpeech = partOfSpeechNames[m[1]]
		spans = append(spans, m[0])
	}

	for _, m := range exampleRegex.FindAllStringSubmatch(definition, -1) {
		d.Examples = append(d.Examples, strings.TrimSpace(m[1]))
		spans = append(spans, m[0])
	}

	if m := etymologyRegex.FindStringSubmatch(definition); m != nil {
		d.Etymology = strings.TrimSpace(m[1])
		spans = append(spans, m[0])
	}

	body := definition
	for _, span := range spans {
		body = strings.Replace(body, span, "", 1)
	}
	d.Body = strings.TrimSpace(body)

	return d
}

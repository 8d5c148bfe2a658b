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

package folding

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// whitespaceFolder folds whitespace in dictionary words and queries. Leading
// and trailing whitespace is removed and each internal whitespace span is
// replaced with a single ASCII space. Index entries padded with stray
// whitespace fold to the same key as their trimmed query.
type whitespaceFolder struct {
	// started is true after the first non-whitespace rune.
	started bool

	// inSpan is true while consuming an internal whitespace span.
	inSpan bool
}

// Transform implements [transform.Transformer.Transform].
func (w *whitespaceFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	var nSrc, nDst int
	for nSrc < len(src) {
		c, size := utf8.DecodeRune(src[nSrc:])
		if c == utf8.RuneError && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}

		if unicode.IsSpace(c) {
			nSrc += size
			// Leading whitespace is dropped. An internal span is only
			// emitted when a following non-whitespace rune is seen, so
			// trailing whitespace is dropped as well.
			if w.started {
				w.inSpan = true
			}
			continue
		}

		if w.inSpan {
			if nDst+1 > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = ' '
			nDst++
			w.inSpan = false
		}

		// c may be utf8.RuneError, whose encoded length differs from the
		// size decoded above. The rune is consumed only once it is written
		// so that a short destination resumes at the same rune.
		if nDst+utf8.RuneLen(c) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], c)
		w.started = true
		nSrc += size
	}

	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (w *whitespaceFolder) Reset() {
	*w = whitespaceFolder{}
}

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

package index

import (
	"fmt"
	"slices"
	"strings"
)

// Index is a sorted array index over values keyed by their String value. Keys
// are compared bytewise, so values should be folded before indexing. Values
// with equal keys keep their original order.
type Index[V fmt.Stringer] struct {
	entries []V
}

// NewIndex creates an index over the given values. The input slice is not
// modified.
func NewIndex[V fmt.Stringer](values []V) *Index[V] {
	entries := make([]V, len(values))
	copy(entries, values)
	slices.SortStableFunc(entries, func(a, b V) int {
		return strings.Compare(a.String(), b.String())
	})

	return &Index[V]{
		entries: entries,
	}
}

// Search returns the values whose key is equal to query in their original
// order.
func (idx *Index[V]) Search(query string) []V {
	i, found := slices.BinarySearchFunc(idx.entries, query, func(v V, q string) int {
		return strings.Compare(v.String(), q)
	})
	if !found {
		return nil
	}

	j := i + 1
	for j < len(idx.entries) && idx.entries[j].String() == query {
		j++
	}
	return idx.entries[i:j]
}

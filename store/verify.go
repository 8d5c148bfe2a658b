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

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// requiredEntryColumns are the entries columns every pack must have.
var requiredEntryColumns = []string{
	"id", "word", "word_lower", "definition", "pronunciation",
	"part_of_speech", "examples", "synonyms", "etymology",
	"frequency_rank", "source_dict", "created_at",
}

// requiredMetadataKeys are the metadata keys every pack must carry.
var requiredMetadataKeys = []string{
	MetadataName,
	MetadataSourceLanguage,
	MetadataTargetLanguage,
	MetadataSchemaVersion,
}

// verifySampleSize is the number of entries test lookups are run against.
const verifySampleSize = 5

// Report is the result of verifying a pack.
type Report struct {
	// Path is the verified pack file.
	Path string `json:"path"`

	// SchemaVersion is the pack's schema version.
	SchemaVersion string `json:"schemaVersion"`

	// FullTextSearch reports whether the pack has a full-text search
	// index.
	FullTextSearch bool `json:"fullTextSearch"`

	// TotalEntries is the number of entries in the pack.
	TotalEntries int64 `json:"totalEntries"`

	// DistinctWords is the number of distinct lowercased words.
	DistinctWords int64 `json:"distinctWords"`

	// EmptyDefinitions is the number of entries with an empty definition.
	EmptyDefinitions int64 `json:"emptyDefinitions"`

	// Problems describes each integrity problem found.
	Problems []string `json:"problems,omitempty"`
}

// OK returns whether the pack passed verification.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Verify checks the pack's structure and contents and reports any problems
// found. A non-nil error means verification itself could not run, not that
// the pack is invalid.
func (s *Store) Verify(ctx context.Context) (*Report, error) {
	r := &Report{
		Path:           s.path,
		FullTextSearch: s.fts,
	}

	hasEntries, err := s.tableExists(ctx, "entries")
	if err != nil {
		return nil, err
	}
	hasMetadata, err := s.tableExists(ctx, "metadata")
	if err != nil {
		return nil, err
	}
	if !hasEntries {
		r.Problems = append(r.Problems, "missing table: entries")
	}
	if !hasMetadata {
		r.Problems = append(r.Problems, "missing table: metadata")
	}

	if hasEntries {
		if err := s.verifyColumns(ctx, r); err != nil {
			return nil, err
		}
		if err := s.verifyEntries(ctx, r); err != nil {
			return nil, err
		}
		if err := s.verifyLookups(ctx, r); err != nil {
			return nil, err
		}
		if s.fts {
			if err := s.verifyFTS(ctx, r); err != nil {
				return nil, err
			}
		}
	}
	if hasMetadata {
		if err := s.verifyMetadata(ctx, r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	err := s.db.QueryRowContext(
		ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		name,
	).Scan(new(string))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) verifyColumns(ctx context.Context, r *Report) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info('entries')")
	if err != nil {
		return fmt.Errorf("reading entries columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("reading entries columns: %w", err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading entries columns: %w", err)
	}

	for _, name := range requiredEntryColumns {
		if !columns[name] {
			r.Problems = append(r.Problems, fmt.Sprintf("entries table missing column: %s", name))
		}
	}
	return nil
}

func (s *Store) verifyEntries(ctx context.Context, r *Report) error {
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&r.TotalEntries)
	if err != nil {
		return fmt.Errorf("counting entries: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT word_lower) FROM entries").Scan(&r.DistinctWords)
	if err != nil {
		return fmt.Errorf("counting distinct words: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE definition = ''").Scan(&r.EmptyDefinitions)
	if err != nil {
		return fmt.Errorf("counting empty definitions: %w", err)
	}

	if r.TotalEntries == 0 {
		r.Problems = append(r.Problems, "pack has no entries")
	}
	if r.EmptyDefinitions > 0 {
		r.Problems = append(r.Problems, fmt.Sprintf("%d entries have empty definitions", r.EmptyDefinitions))
	}
	return nil
}

func (s *Store) verifyMetadata(ctx context.Context, r *Report) error {
	m, err := s.Metadata(ctx)
	if err != nil {
		return err
	}

	r.SchemaVersion = m[MetadataSchemaVersion]
	for _, key := range requiredMetadataKeys {
		if m[key] == "" {
			r.Problems = append(r.Problems, fmt.Sprintf("missing metadata: %s", key))
		}
	}
	return nil
}

// verifyLookups runs exact lookups for a sample of stored words.
func (s *Store) verifyLookups(ctx context.Context, r *Report) error {
	rows, err := s.db.QueryContext(ctx, "SELECT word FROM entries ORDER BY id LIMIT ?", verifySampleSize)
	if err != nil {
		return fmt.Errorf("sampling words: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return fmt.Errorf("sampling words: %w", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sampling words: %w", err)
	}

	for _, word := range words {
		entries, err := s.Lookup(ctx, word)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			r.Problems = append(r.Problems, fmt.Sprintf("lookup returned no entries for %q", word))
		}
	}
	return nil
}

// verifyFTS checks that the full-text index covers every entry.
func (s *Store) verifyFTS(ctx context.Context, r *Report) error {
	var ftsCount int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries_fts").Scan(&ftsCount); err != nil {
		return fmt.Errorf("counting full-text index: %w", err)
	}

	if ftsCount != r.TotalEntries {
		r.Problems = append(r.Problems, fmt.Sprintf("full-text index has %d of %d entries", ftsCount, r.TotalEntries))
	}
	return nil
}

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
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry is a single dictionary entry.
type Entry struct {
	ID            int64
	Word          string
	WordLower     string
	Definition    string
	Pronunciation string
	PartOfSpeech  string
	Examples      []string
	Synonyms      []string
	Etymology     string
	FrequencyRank *int64
	SourceDict    string
	CreatedAt     time.Time
}

const entryColumns = "id, word, word_lower, definition, pronunciation, part_of_speech, examples, synonyms, etymology, frequency_rank, source_dict, created_at"

const insertEntrySQL = `
INSERT INTO entries (
    word, word_lower, definition, pronunciation, part_of_speech,
    examples, synonyms, etymology, frequency_rank, source_dict
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(word_lower, source_dict) DO NOTHING
`

// EntryBatch inserts entries inside a single transaction. No inserted
// entry is visible to readers until the batch is committed.
type EntryBatch struct {
	tx   *sql.Tx
	stmt *sql.Stmt
}

// Begin starts an entry batch. The batch must be finished with Commit or
// Rollback; until then other Store methods may block waiting for the
// pack's single connection.
func (s *Store) Begin(ctx context.Context) (*EntryBatch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertEntrySQL)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("preparing insert: %w", err)
	}

	return &EntryBatch{tx: tx, stmt: stmt}, nil
}

// Insert inserts an entry. The entry's lowercased word is derived from its
// word. Insert returns false with no error when an entry with the same
// lowercased word and source dictionary already exists.
func (b *EntryBatch) Insert(ctx context.Context, entry *Entry) (bool, error) {
	if entry.Word == "" || entry.Definition == "" || entry.SourceDict == "" {
		return false, fmt.Errorf("%w: word, definition, and source dictionary are required", ErrInvalidEntry)
	}

	examples, err := encodeStrings(entry.Examples)
	if err != nil {
		return false, fmt.Errorf("encoding examples: %w", err)
	}
	synonyms, err := encodeStrings(entry.Synonyms)
	if err != nil {
		return false, fmt.Errorf("encoding synonyms: %w", err)
	}

	result, err := b.stmt.ExecContext(ctx,
		entry.Word,
		strings.ToLower(entry.Word),
		entry.Definition,
		nullString(entry.Pronunciation),
		nullString(entry.PartOfSpeech),
		examples,
		synonyms,
		nullString(entry.Etymology),
		entry.FrequencyRank,
		entry.SourceDict,
	)
	if err != nil {
		return false, fmt.Errorf("inserting entry %q: %w", entry.Word, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting entry %q: %w", entry.Word, err)
	}

	return n > 0, nil
}

// Commit commits the batch.
func (b *EntryBatch) Commit() error {
	_ = b.stmt.Close()
	return b.tx.Commit()
}

// Rollback aborts the batch.
func (b *EntryBatch) Rollback() error {
	_ = b.stmt.Close()
	return b.tx.Rollback()
}

// Lookup returns entries whose lowercased word matches the lowercased
// query word, in insertion order.
func (s *Store) Lookup(ctx context.Context, word string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"SELECT "+entryColumns+" FROM entries WHERE word_lower = ? ORDER BY id",
		strings.ToLower(word),
	)
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", word, err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// defaultSearchLimit bounds Search results when no limit is given.
const defaultSearchLimit = 50

// Search returns entries matching the full-text query, best match first.
// The query uses the full-text index's query syntax.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]*Entry, error) {
	if !s.fts {
		return nil, ErrNoFullTextSearch
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT e.id, e.word, e.word_lower, e.definition, e.pronunciation,
			e.part_of_speech, e.examples, e.synonyms, e.etymology,
			e.frequency_rank, e.source_dict, e.created_at
		FROM entries e
		JOIN entries_fts ON entries_fts.rowid = e.id
		WHERE entries_fts MATCH ?
		ORDER BY entries_fts.rank
		LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// scanEntries reads all entries from rows.
func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		var (
			entry         Entry
			pronunciation sql.NullString
			partOfSpeech  sql.NullString
			examples      sql.NullString
			synonyms      sql.NullString
			etymology     sql.NullString
			rank          sql.NullInt64
		)

		err := rows.Scan(
			&entry.ID, &entry.Word, &entry.WordLower, &entry.Definition,
			&pronunciation, &partOfSpeech, &examples, &synonyms, &etymology,
			&rank, &entry.SourceDict, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("reading entry: %w", err)
		}

		entry.Pronunciation = pronunciation.String
		entry.PartOfSpeech = partOfSpeech.String
		entry.Etymology = etymology.String
		if rank.Valid {
			entry.FrequencyRank = &rank.Int64
		}
		if entry.Examples, err = decodeStrings(examples); err != nil {
			return nil, fmt.Errorf("decoding examples for %q: %w", entry.Word, err)
		}
		if entry.Synonyms, err = decodeStrings(synonyms); err != nil {
			return nil, fmt.Errorf("decoding synonyms for %q: %w", entry.Word, err)
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// nullString returns NULL for empty strings.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// encodeStrings encodes values as a JSON array, or NULL when empty.
func encodeStrings(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// decodeStrings decodes a JSON array column.
func decodeStrings(s sql.NullString) ([]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}

	var values []string
	if err := json.Unmarshal([]byte(s.String), &values); err != nil {
		return nil, err
	}
	return values, nil
}

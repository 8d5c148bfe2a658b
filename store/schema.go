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

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the schema version written to new packs. Packs whose
// major version differs cannot be opened.
const SchemaVersion = "1.0.0"

// Metadata keys required by every pack.
const (
	MetadataName           = "name"
	MetadataSourceLanguage = "source_language"
	MetadataTargetLanguage = "target_language"
	MetadataSchemaVersion  = "schema_version"
)

const schemaSQL = `
CREATE TABLE entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    word TEXT NOT NULL,
    word_lower TEXT NOT NULL,
    definition TEXT NOT NULL,
    pronunciation TEXT,
    part_of_speech TEXT,
    examples TEXT,
    synonyms TEXT,
    etymology TEXT,
    frequency_rank INTEGER,
    source_dict TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(word_lower, source_dict)
);

CREATE INDEX idx_entries_word_lower ON entries(word_lower);
CREATE INDEX idx_entries_frequency_rank ON entries(frequency_rank);
CREATE INDEX idx_entries_part_of_speech ON entries(part_of_speech);

CREATE TABLE metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// The full-text index is content-linked to the entries table and is
// populated by an explicit rebuild after bulk loading rather than by
// triggers.
const ftsSQL = `
CREATE VIRTUAL TABLE entries_fts USING fts5(
    word, word_lower, definition, synonyms,
    content='entries',
    content_rowid='id'
);
`

// checkSchemaVersion verifies that the pack's schema version is compatible
// with this package.
func (s *Store) checkSchemaVersion(ctx context.Context) error {
	var stored string
	err := s.db.QueryRowContext(
		ctx,
		"SELECT value FROM metadata WHERE key = ?",
		MetadataSchemaVersion,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: no schema version", ErrInvalidPack)
	}
	if err != nil {
		return fmt.Errorf("%w: reading schema version: %v", ErrInvalidPack, err)
	}

	packVersion, err := semver.NewVersion(stored)
	if err != nil {
		return fmt.Errorf("%w: parsing schema version %q: %v", ErrInvalidPack, stored, err)
	}

	supported := semver.MustParse(SchemaVersion)
	if packVersion.Major() != supported.Major() {
		return fmt.Errorf("%w: pack schema %s, supported %s", ErrSchemaVersion, packVersion, supported)
	}

	return nil
}

// RebuildFTS rebuilds the full-text search index from the entries table.
func (s *Store) RebuildFTS(ctx context.Context) error {
	if !s.fts {
		return ErrNoFullTextSearch
	}

	if _, err := s.db.ExecContext(ctx, "INSERT INTO entries_fts(entries_fts) VALUES ('rebuild')"); err != nil {
		return fmt.Errorf("rebuilding full-text index: %w", err)
	}
	return nil
}

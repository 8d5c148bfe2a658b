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

// Package store reads and writes dictionary packs.
//
// A dictionary pack is a single SQLite database file containing dictionary
// entries, key/value metadata describing the pack, and an optional
// full-text search index. Packs are written once by a conversion and then
// only read. The SQLite driver is selected at build time; see DriverName
// and BuildMode.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrInvalidPack indicates that the file is not a dictionary pack.
	ErrInvalidPack = errors.New("invalid dictionary pack")

	// ErrSchemaVersion indicates that the pack was created with an
	// incompatible schema version.
	ErrSchemaVersion = errors.New("unsupported schema version")

	// ErrNoFullTextSearch indicates that the pack has no full-text search
	// index.
	ErrNoFullTextSearch = errors.New("full-text search not enabled")

	// ErrInvalidEntry indicates that an entry is missing a required field.
	ErrInvalidEntry = errors.New("invalid entry")
)

// Options are options for creating a dictionary pack.
type Options struct {
	// FullTextSearch creates a full-text search index over entries as part
	// of the schema.
	FullTextSearch bool
}

// DefaultOptions are the options used when none are given.
var DefaultOptions = &Options{}

// Store is an open dictionary pack.
type Store struct {
	db   *sql.DB
	path string
	fts  bool
}

// Create creates a new dictionary pack at path and returns the open Store.
// Any existing pack at path is replaced.
func Create(ctx context.Context, path string, options *Options) (*Store, error) {
	if options == nil {
		options = DefaultOptions
	}

	if err := Remove(path); err != nil {
		return nil, fmt.Errorf("removing existing pack: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if options.FullTextSearch {
		if _, err := db.ExecContext(ctx, ftsSQL); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating full-text index: %w", err)
		}
	}

	s := &Store{
		db:   db,
		path: path,
		fts:  options.FullTextSearch,
	}

	if err := s.PutMetadata(ctx, MetadataSchemaVersion, SchemaVersion); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Open opens an existing dictionary pack.
func Open(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening pack: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.checkSchemaVersion(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	err = db.QueryRowContext(
		ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'entries_fts'",
	).Scan(new(string))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		_ = db.Close()
		return nil, fmt.Errorf("detecting full-text index: %w", err)
	default:
		s.fts = true
	}

	return s, nil
}

// openDB opens the SQLite database at path with the pack connection
// settings.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Close closes the pack.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the pack's file path.
func (s *Store) Path() string {
	return s.path
}

// FullTextSearch returns whether the pack has a full-text search index.
func (s *Store) FullTextSearch() bool {
	return s.fts
}

// Remove removes the pack at path along with any journal files left beside
// it. It is not an error if the pack does not exist.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// PutMetadata stores a metadata key/value pair, replacing any existing
// value for the key.
func (s *Store) PutMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing metadata %q: %w", key, err)
	}
	return nil
}

// Metadata returns all metadata key/value pairs.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM metadata")
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	m := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("reading metadata: %w", err)
		}
		m[key] = value
	}

	return m, rows.Err()
}

// Size returns the size of the pack in bytes as reported by the database.
func (s *Store) Size(ctx context.Context) (int64, error) {
	var size int64
	err := s.db.QueryRowContext(
		ctx,
		"SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()",
	).Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("reading pack size: %w", err)
	}
	return size, nil
}

// Optimize refreshes query planner statistics and compacts the pack. It is
// run once after bulk loading.
func (s *Store) Optimize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("compacting: %w", err)
	}
	return nil
}

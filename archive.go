// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sdpack

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ianlewis/sdpack/dict"
	"github.com/ianlewis/sdpack/idx"
	"github.com/ianlewis/sdpack/ifo"
	"github.com/ianlewis/sdpack/internal/folding"
	"github.com/ianlewis/sdpack/syn"
)

const ifoMagic = "StarDict's dict ifo file"

// ErrMissingFile indicates that a required archive file is not present in the
// archive directory.
var ErrMissingFile = errors.New("missing archive file")

// ErrInvalidMetadata indicates that the archive's .ifo metadata file is
// malformed or missing a required option.
var ErrInvalidMetadata = errors.New("invalid metadata")

// Archive is a StarDict dictionary archive directory. An Archive holds one
// .ifo metadata file, one .idx index file, one .dict definitions file, and at
// most one optional .syn synonym file.
type Archive struct {
	path string

	ifoPath  string
	idxPath  string
	dictPath string
	synPath  string

	ifo  *ifo.Ifo
	idx  *idx.Idx
	dict *dict.Dict

	version          string
	bookname         string
	wordcount        int64
	synwordcount     int64
	idxfilesize      int64
	idxoffsetbits    int64
	author           string
	email            string
	website          string
	description      string
	sametypesequence []dict.DataType
}

// Open opens the StarDict dictionary archive in the given directory and reads
// its metadata.
func Open(dir string) (*Archive, error) {
	a, err := openArchive(dir)
	if err != nil {
		return nil, err
	}
	if err := a.readMetadata(); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenAll opens all archives under a directory tree. Each directory
// containing an .ifo file is opened as one archive. This function returns all
// successfully opened archives along with any errors that occurred.
func OpenAll(path string) ([]*Archive, []error) {
	var archives []*Archive
	var errs []error
	seen := map[string]bool{}
	if err := filepath.WalkDir(path, func(path string, info fs.DirEntry, err error) error {
		// Walking the file path will ignore errors.
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(info.Name()), ".ifo") {
			return nil
		}
		dir := filepath.Dir(path)
		if seen[dir] {
			return nil
		}
		seen[dir] = true
		a, err := Open(dir)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		archives = append(archives, a)
		return nil
	}); err != nil {
		errs = append(errs, err)
		return nil, errs
	}
	return archives, errs
}

// openArchive scans the immediate children of dir and classifies them into at
// most one file per role. The first match in lexical order is kept for each
// role. The synonym file is optional.
func openArchive(dir string) (*Archive, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading archive directory %q: %w", dir, err)
	}

	a := &Archive{
		path:          dir,
		idxoffsetbits: 32,
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		path := filepath.Join(dir, entry.Name())
		switch {
		case strings.HasSuffix(name, ".ifo"):
			if a.ifoPath == "" {
				a.ifoPath = path
			}
		case strings.HasSuffix(name, ".idx"), strings.HasSuffix(name, ".idx.gz"):
			if a.idxPath == "" {
				a.idxPath = path
			}
		case strings.HasSuffix(name, ".dict"), strings.HasSuffix(name, ".dict.dz"):
			if a.dictPath == "" {
				a.dictPath = path
			}
		case strings.HasSuffix(name, ".syn"), strings.HasSuffix(name, ".syn.gz"), strings.HasSuffix(name, ".syn.dz"):
			if a.synPath == "" {
				a.synPath = path
			}
		}
	}

	if a.ifoPath == "" {
		return nil, fmt.Errorf("%w: no metadata (.ifo) file in %q", ErrMissingFile, dir)
	}
	if a.idxPath == "" {
		return nil, fmt.Errorf("%w: no index (.idx) file in %q", ErrMissingFile, dir)
	}
	if a.dictPath == "" {
		return nil, fmt.Errorf("%w: no definitions (.dict) file in %q", ErrMissingFile, dir)
	}

	return a, nil
}

// readMetadata reads and validates the archive's .ifo file.
func (a *Archive) readMetadata() error {
	ifoFile, err := os.Open(a.ifoPath)
	if err != nil {
		return fmt.Errorf("opening %q: %w", a.ifoPath, err)
	}
	defer ifoFile.Close()

	a.ifo, err = ifo.New(ifoFile)
	if err != nil {
		return fmt.Errorf("%w: reading %q: %w", ErrInvalidMetadata, a.ifoPath, err)
	}

	if a.ifo.Magic() != ifoMagic {
		return fmt.Errorf("%w: %q: bad magic data", ErrInvalidMetadata, a.ifoPath)
	}

	// Validate the version
	a.version = a.ifo.Value("version")
	switch a.version {
	case "2.4.2":
	case "3.0.0":
	default:
		return fmt.Errorf("%w: invalid version: %v", ErrInvalidMetadata, a.version)
	}

	// The bookname is optional. Callers fall back to the archive directory
	// name when it is absent.
	a.bookname = a.ifo.Value("bookname")

	a.wordcount, err = strconv.ParseInt(a.ifo.Value("wordcount"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad wordcount: %w", ErrInvalidMetadata, err)
	}

	a.idxfilesize, err = strconv.ParseInt(a.ifo.Value("idxfilesize"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad idxfilesize: %w", ErrInvalidMetadata, err)
	}

	idxoffsetbits := a.ifo.Value("idxoffsetbits")
	if idxoffsetbits != "" && a.version == "3.0.0" {
		a.idxoffsetbits, err = strconv.ParseInt(idxoffsetbits, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid idxoffsetbits: %w", ErrInvalidMetadata, err)
		}
	}

	synwordcount := a.ifo.Value("synwordcount")
	if synwordcount != "" {
		a.synwordcount, err = strconv.ParseInt(synwordcount, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad synwordcount: %w", ErrInvalidMetadata, err)
		}
	}

	sametypesequence := a.ifo.Value("sametypesequence")
	if sametypesequence != "" {
		for _, r := range sametypesequence {
			a.sametypesequence = append(a.sametypesequence, dict.DataType(r))
		}
	}

	a.author = a.ifo.Value("author")
	a.email = a.ifo.Value("email")
	a.description = a.ifo.Value("description")
	a.website = a.ifo.Value("website")

	return nil
}

// Words reads the full word index in file order. The file order is the
// canonical iteration order for conversion and frequency ranking.
func (a *Archive) Words() ([]*idx.Word, error) {
	r, err := openMaybeGzip(a.idxPath)
	if err != nil {
		return nil, fmt.Errorf("opening index %q: %w", a.idxPath, err)
	}

	words, err := idx.Read(r, &idx.ScannerOptions{
		OffsetBits: int(a.idxoffsetbits),
	})
	if err != nil {
		return nil, fmt.Errorf("reading index %q: %w", a.idxPath, err)
	}
	return words, nil
}

// Index returns an in-memory search index over the archive's words. The index
// is read once and cached.
func (a *Archive) Index() (*idx.Idx, error) {
	if a.idx != nil {
		return a.idx, nil
	}
	words, err := a.Words()
	if err != nil {
		return nil, err
	}
	index, err := idx.New(words, &idx.Options{
		Folder: folding.New,
	})
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	a.idx = index
	return a.idx, nil
}

// Dict returns the archive's definitions data. The data file is opened once
// and cached. It is closed by the Archive's Close method.
func (a *Archive) Dict() (*dict.Dict, error) {
	if a.dict != nil {
		return a.dict, nil
	}
	f, err := os.Open(a.dictPath)
	if err != nil {
		return nil, fmt.Errorf("opening definitions %q: %w", a.dictPath, err)
	}
	d, err := dict.New(f, &dict.Options{
		SameTypeSequence: a.sametypesequence,
		DictZip:          strings.EqualFold(filepath.Ext(a.dictPath), ".dz"),
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reading definitions %q: %w", a.dictPath, err)
	}
	a.dict = d
	return a.dict, nil
}

// Syn reads the archive's synonym file into a map grouped by the lowercased
// synonym word. Syn returns a nil map when the archive has no synonym file.
func (a *Archive) Syn() (*syn.Map, error) {
	if a.synPath == "" {
		return nil, nil
	}
	r, err := openMaybeGzip(a.synPath)
	if err != nil {
		return nil, fmt.Errorf("opening synonyms %q: %w", a.synPath, err)
	}

	m, err := syn.NewMap(r, &syn.Options{
		Folder: folding.Lower,
	})
	if err != nil {
		return nil, fmt.Errorf("reading synonyms %q: %w", a.synPath, err)
	}
	return m, nil
}

// Close closes the archive and any open files.
func (a *Archive) Close() error {
	if a.dict != nil {
		if err := a.dict.Close(); err != nil {
			return fmt.Errorf("closing archive: %w", err)
		}
		a.dict = nil
	}
	return nil
}

// Path returns the archive directory path.
func (a *Archive) Path() string {
	return a.path
}

// Files returns the base names of the archive's files in role order.
func (a *Archive) Files() []string {
	files := []string{
		filepath.Base(a.ifoPath),
		filepath.Base(a.idxPath),
		filepath.Base(a.dictPath),
	}
	if a.synPath != "" {
		files = append(files, filepath.Base(a.synPath))
	}
	return files
}

// Bookname returns the dictionary name. The bookname may be empty.
func (a *Archive) Bookname() string {
	return a.bookname
}

// Description returns the dictionary description.
func (a *Archive) Description() string {
	return a.description
}

// Author returns the dictionary author.
func (a *Archive) Author() string {
	return a.author
}

// Email returns the dictionary contact email.
func (a *Archive) Email() string {
	return a.email
}

// Website returns the dictionary website url.
func (a *Archive) Website() string {
	return a.website
}

// WordCount returns the word count declared in the dictionary metadata. The
// declared count may disagree with the actual index length.
func (a *Archive) WordCount() int64 {
	return a.wordcount
}

// SynWordCount returns the synonym word count declared in the dictionary
// metadata.
func (a *Archive) SynWordCount() int64 {
	return a.synwordcount
}

// IdxFileSize returns the index file size declared in the dictionary
// metadata.
func (a *Archive) IdxFileSize() int64 {
	return a.idxfilesize
}

// IdxOffsetBits returns the number of bits in the index offset fields.
func (a *Archive) IdxOffsetBits() int64 {
	return a.idxoffsetbits
}

// SameTypeSequence returns the data types shared by all words in the
// definitions data.
func (a *Archive) SameTypeSequence() []dict.DataType {
	return a.sametypesequence
}

// Version returns the dictionary format version.
func (a *Archive) Version() string {
	return a.version
}

// MetadataKeys returns the keys of the archive's metadata in file order.
func (a *Archive) MetadataKeys() []string {
	return a.ifo.Keys()
}

// MetadataValue returns the value for the given metadata key.
func (a *Archive) MetadataValue(key string) string {
	return a.ifo.Value(key)
}

// gzipReadCloser closes both the gzip stream and the underlying file.
type gzipReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (r *gzipReadCloser) Close() error {
	if err := r.Reader.Close(); err != nil {
		_ = r.f.Close()
		return err
	}
	return r.f.Close()
}

// openMaybeGzip opens the file at path, decompressing it if it has a .gz or
// .dz extension. Dictzip files are valid gzip streams so sequential reads do
// not need random access support.
func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".gz" && ext != ".dz" {
		return f, nil
	}
	z, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &gzipReadCloser{z, f}, nil
}

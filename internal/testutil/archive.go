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

// Package testutil provides helpers for writing test dictionary archives.
package testutil

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ianlewis/go-dictzip"

	"github.com/ianlewis/sdpack/dict"
	"github.com/ianlewis/sdpack/idx"
	"github.com/ianlewis/sdpack/syn"
)

// Word is one test archive entry pairing an index word with its definition
// data.
type Word struct {
	Word string
	Data []*dict.Data
}

// ArchiveOptions are options for writing a test archive.
type ArchiveOptions struct {
	// Dir is the directory to write the archive files into. Defaults to a
	// new test temporary directory.
	Dir string

	// Base is the base name for the archive's files. Defaults to
	// "dictionary".
	Base string

	// Ifo is the .ifo file content, written verbatim. When empty a minimal
	// valid .ifo is generated from the other options.
	Ifo string

	// SameTypeSequence encodes definition data without per-data type bytes
	// and records the option in the generated .ifo file.
	SameTypeSequence []dict.DataType

	// Index overrides the index entries derived from the words. Use it to
	// write indexes whose offsets do not match the definitions data.
	Index []*idx.Word

	// IdxOffsetBits is the size in bits of the index offset fields. It must
	// be 32 or 64. Defaults to 32. The generated .ifo file records
	// idxoffsetbits when it is 64.
	IdxOffsetBits int

	// Syn are synonym file entries. No .syn file is written when empty.
	Syn []*syn.Word

	// GzipIdx compresses the index file with gzip.
	GzipIdx bool

	// DictZip compresses the definitions file with dictzip.
	DictZip bool

	// GzipSyn compresses the synonym file with gzip.
	GzipSyn bool
}

// WriteArchive writes a stardict archive directory with the given words and
// returns the directory path.
func WriteArchive(t *testing.T, words []*Word, opts *ArchiveOptions) string {
	t.Helper()
	if opts == nil {
		opts = &ArchiveOptions{}
	}
	base := opts.Base
	if base == "" {
		base = "dictionary"
	}

	// Encode the definitions data and derive the index offsets from it.
	var dictData []byte
	var index []*idx.Word
	for _, w := range words {
		b := dict.MakeDict([]*dict.Word{{Data: w.Data}}, opts.SameTypeSequence)
		index = append(index, &idx.Word{
			Word:   w.Word,
			Offset: uint64(len(dictData)),
			Size:   uint32(len(b)),
		})
		dictData = append(dictData, b...)
	}
	if opts.Index != nil {
		index = opts.Index
	}
	offsetBits := opts.IdxOffsetBits
	if offsetBits == 0 {
		offsetBits = 32
	}
	idxData := idx.MakeIndex(index, offsetBits)

	ifoData := opts.Ifo
	if ifoData == "" {
		lines := []string{
			"StarDict's dict ifo file",
			"version=3.0.0",
			"bookname=" + base,
			fmt.Sprintf("wordcount=%d", len(index)),
			fmt.Sprintf("idxfilesize=%d", len(idxData)),
		}
		if offsetBits == 64 {
			lines = append(lines, "idxoffsetbits=64")
		}
		if len(opts.SameTypeSequence) > 0 {
			var sts strings.Builder
			for _, dataType := range opts.SameTypeSequence {
				sts.WriteRune(rune(dataType))
			}
			lines = append(lines, "sametypesequence="+sts.String())
		}
		if len(opts.Syn) > 0 {
			lines = append(lines, fmt.Sprintf("synwordcount=%d", len(opts.Syn)))
		}
		ifoData = strings.Join(lines, "\n") + "\n"
	}

	dir := opts.Dir
	if dir == "" {
		dir = t.TempDir()
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, base+".ifo"), []byte(ifoData))

	if opts.GzipIdx {
		writeGzip(t, filepath.Join(dir, base+".idx.gz"), idxData)
	} else {
		writeFile(t, filepath.Join(dir, base+".idx"), idxData)
	}

	if opts.DictZip {
		writeDictzip(t, filepath.Join(dir, base+".dict.dz"), dictData)
	} else {
		writeFile(t, filepath.Join(dir, base+".dict"), dictData)
	}

	if len(opts.Syn) > 0 {
		synData := syn.MakeSyn(opts.Syn)
		if opts.GzipSyn {
			writeGzip(t, filepath.Join(dir, base+".syn.gz"), synData)
		} else {
			writeFile(t, filepath.Join(dir, base+".syn"), synData)
		}
	}

	return dir
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func writeGzip(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	z := gzip.NewWriter(f)
	if _, err := z.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := z.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeDictzip(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	z, err := dictzip.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := z.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := z.Close(); err != nil {
		t.Fatal(err)
	}
}

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

package sdpack_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/sdpack"
	"github.com/ianlewis/sdpack/dict"
	"github.com/ianlewis/sdpack/idx"
	"github.com/ianlewis/sdpack/internal/testutil"
	"github.com/ianlewis/sdpack/syn"
)

// testWords returns a small word list used by archive fixtures.
func testWords() []*testutil.Word {
	return []*testutil.Word{
		{
			Word: "cat",
			Data: []*dict.Data{
				{
					Type: dict.UTFTextType,
					Data: []byte("a small domesticated feline"),
				},
			},
		},
		{
			Word: "dog",
			Data: []*dict.Data{
				{
					Type: dict.UTFTextType,
					Data: []byte("a domesticated canine"),
				},
			},
		},
	}
}

// TestOpen tests Open.
func TestOpen(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if want, got := dir, a.Path(); want != got {
		t.Fatalf("Path; want: %q, got: %q", want, got)
	}
	if want, got := "3.0.0", a.Version(); want != got {
		t.Fatalf("Version; want: %q, got: %q", want, got)
	}
	if want, got := "dictionary", a.Bookname(); want != got {
		t.Fatalf("Bookname; want: %q, got: %q", want, got)
	}
	if want, got := int64(2), a.WordCount(); want != got {
		t.Fatalf("WordCount; want: %d, got: %d", want, got)
	}
	if want, got := int64(0), a.SynWordCount(); want != got {
		t.Fatalf("SynWordCount; want: %d, got: %d", want, got)
	}
	if want, got := int64(32), a.IdxOffsetBits(); want != got {
		t.Fatalf("IdxOffsetBits; want: %d, got: %d", want, got)
	}

	if diff := cmp.Diff([]dict.DataType{dict.UTFTextType}, a.SameTypeSequence()); diff != "" {
		t.Fatalf("SameTypeSequence (-want, +got):\n%s", diff)
	}

	expected := []string{
		"dictionary.ifo",
		"dictionary.idx",
		"dictionary.dict",
	}
	if diff := cmp.Diff(expected, a.Files()); diff != "" {
		t.Fatalf("Files (-want, +got):\n%s", diff)
	}
}

// TestOpen_compressed tests that compressed index, definitions, and synonym
// files are read transparently.
func TestOpen_compressed(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
		Syn: []*syn.Word{
			{Word: "Feline", OriginalWordIndex: 0},
		},
		GzipIdx: true,
		DictZip: true,
		GzipSyn: true,
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	expected := []string{
		"dictionary.ifo",
		"dictionary.idx.gz",
		"dictionary.dict.dz",
		"dictionary.syn.gz",
	}
	if diff := cmp.Diff(expected, a.Files()); diff != "" {
		t.Fatalf("Files (-want, +got):\n%s", diff)
	}

	words, err := a.Words()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 2, len(words); want != got {
		t.Fatalf("Words length; want: %d, got: %d", want, got)
	}

	d, err := a.Dict()
	if err != nil {
		t.Fatal(err)
	}
	text, err := d.Extract(words[0])
	if err != nil {
		t.Fatal(err)
	}
	if want, got := "a small domesticated feline", text; want != got {
		t.Fatalf("Dict.Extract; want: %q, got: %q", want, got)
	}

	synonyms, err := a.Syn()
	if err != nil {
		t.Fatal(err)
	}
	syns, err := synonyms.Lookup("feline")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Feline"}, syns); diff != "" {
		t.Fatalf("Syn.Lookup (-want, +got):\n%s", diff)
	}
}

// TestOpen_missingFiles tests that archives with missing files fail to open.
func TestOpen_missingFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remove string
	}{
		{
			name:   "no ifo",
			remove: "dictionary.ifo",
		},
		{
			name:   "no idx",
			remove: "dictionary.idx",
		},
		{
			name:   "no dict",
			remove: "dictionary.dict",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			dir := testutil.WriteArchive(t, testWords(), nil)
			if err := os.Remove(filepath.Join(dir, test.remove)); err != nil {
				t.Fatal(err)
			}

			_, err := sdpack.Open(dir)
			if !errors.Is(err, sdpack.ErrMissingFile) {
				t.Fatalf("Open; want: %v, got: %v", sdpack.ErrMissingFile, err)
			}
		})
	}
}

// TestOpen_invalidMetadata tests that malformed .ifo files fail to open.
func TestOpen_invalidMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ifo  string
	}{
		{
			name: "bad magic",
			ifo: "Some other dictionary format\n" +
				"version=3.0.0\n" +
				"wordcount=2\n" +
				"idxfilesize=24\n",
		},
		{
			name: "unsupported version",
			ifo: "StarDict's dict ifo file\n" +
				"version=1.0.0\n" +
				"wordcount=2\n" +
				"idxfilesize=24\n",
		},
		{
			name: "version not first",
			ifo: "StarDict's dict ifo file\n" +
				"bookname=dictionary\n" +
				"version=3.0.0\n" +
				"wordcount=2\n" +
				"idxfilesize=24\n",
		},
		{
			name: "missing wordcount",
			ifo: "StarDict's dict ifo file\n" +
				"version=3.0.0\n" +
				"idxfilesize=24\n",
		},
		{
			name: "bad wordcount",
			ifo: "StarDict's dict ifo file\n" +
				"version=3.0.0\n" +
				"wordcount=two\n" +
				"idxfilesize=24\n",
		},
		{
			name: "missing idxfilesize",
			ifo: "StarDict's dict ifo file\n" +
				"version=3.0.0\n" +
				"wordcount=2\n",
		},
		{
			name: "bad synwordcount",
			ifo: "StarDict's dict ifo file\n" +
				"version=3.0.0\n" +
				"wordcount=2\n" +
				"idxfilesize=24\n" +
				"synwordcount=one\n",
		},
		{
			name: "bad idxoffsetbits",
			ifo: "StarDict's dict ifo file\n" +
				"version=3.0.0\n" +
				"wordcount=2\n" +
				"idxfilesize=24\n" +
				"idxoffsetbits=many\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
				Ifo: test.ifo,
			})

			_, err := sdpack.Open(dir)
			if !errors.Is(err, sdpack.ErrInvalidMetadata) {
				t.Fatalf("Open; want: %v, got: %v", sdpack.ErrInvalidMetadata, err)
			}
		})
	}
}

// TestOpen_metadata tests reading all metadata options.
func TestOpen_metadata(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
		Ifo: "StarDict's dict ifo file\n" +
			"version=3.0.0\n" +
			"bookname=Test Dictionary\n" +
			"wordcount=2\n" +
			"synwordcount=1\n" +
			"idxfilesize=24\n" +
			"idxoffsetbits=32\n" +
			"author=Ian Lewis\n" +
			"email=ian@example.com\n" +
			"website=https://example.com\n" +
			"description=A test dictionary.\n" +
			"sametypesequence=m\n",
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if want, got := "Test Dictionary", a.Bookname(); want != got {
		t.Fatalf("Bookname; want: %q, got: %q", want, got)
	}
	if want, got := int64(2), a.WordCount(); want != got {
		t.Fatalf("WordCount; want: %d, got: %d", want, got)
	}
	if want, got := int64(1), a.SynWordCount(); want != got {
		t.Fatalf("SynWordCount; want: %d, got: %d", want, got)
	}
	if want, got := int64(24), a.IdxFileSize(); want != got {
		t.Fatalf("IdxFileSize; want: %d, got: %d", want, got)
	}
	if want, got := int64(32), a.IdxOffsetBits(); want != got {
		t.Fatalf("IdxOffsetBits; want: %d, got: %d", want, got)
	}
	if want, got := "Ian Lewis", a.Author(); want != got {
		t.Fatalf("Author; want: %q, got: %q", want, got)
	}
	if want, got := "ian@example.com", a.Email(); want != got {
		t.Fatalf("Email; want: %q, got: %q", want, got)
	}
	if want, got := "https://example.com", a.Website(); want != got {
		t.Fatalf("Website; want: %q, got: %q", want, got)
	}
	if want, got := "A test dictionary.", a.Description(); want != got {
		t.Fatalf("Description; want: %q, got: %q", want, got)
	}
	if diff := cmp.Diff([]dict.DataType{dict.UTFTextType}, a.SameTypeSequence()); diff != "" {
		t.Fatalf("SameTypeSequence (-want, +got):\n%s", diff)
	}

	expectedKeys := []string{
		"version",
		"bookname",
		"wordcount",
		"synwordcount",
		"idxfilesize",
		"idxoffsetbits",
		"author",
		"email",
		"website",
		"description",
		"sametypesequence",
	}
	if diff := cmp.Diff(expectedKeys, a.MetadataKeys()); diff != "" {
		t.Fatalf("MetadataKeys (-want, +got):\n%s", diff)
	}
	if want, got := "Test Dictionary", a.MetadataValue("bookname"); want != got {
		t.Fatalf("MetadataValue; want: %q, got: %q", want, got)
	}
}

// TestOpen_version242 tests that idxoffsetbits is ignored for version 2.4.2
// dictionaries.
func TestOpen_version242(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
		Ifo: "StarDict's dict ifo file\n" +
			"version=2.4.2\n" +
			"bookname=dictionary\n" +
			"wordcount=2\n" +
			"idxfilesize=24\n" +
			"idxoffsetbits=64\n" +
			"sametypesequence=m\n",
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if want, got := "2.4.2", a.Version(); want != got {
		t.Fatalf("Version; want: %q, got: %q", want, got)
	}
	if want, got := int64(32), a.IdxOffsetBits(); want != got {
		t.Fatalf("IdxOffsetBits; want: %d, got: %d", want, got)
	}

	words, err := a.Words()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 2, len(words); want != got {
		t.Fatalf("Words length; want: %d, got: %d", want, got)
	}
}

// TestArchive_Words tests that Words returns entries in file order.
func TestArchive_Words(t *testing.T) {
	t.Parallel()

	// The index file order is preserved even when it is not sorted.
	dir := testutil.WriteArchive(t, []*testutil.Word{
		{
			Word: "zebra",
			Data: []*dict.Data{
				{
					Type: dict.UTFTextType,
					Data: []byte("striped equine"),
				},
			},
		},
		{
			Word: "apple",
			Data: []*dict.Data{
				{
					Type: dict.UTFTextType,
					Data: []byte("sweet fruit"),
				},
			},
		},
	}, &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	words, err := a.Words()
	if err != nil {
		t.Fatal(err)
	}

	expected := []*idx.Word{
		{
			Word:   "zebra",
			Offset: 0,
			Size:   14,
		},
		{
			Word:   "apple",
			Offset: 14,
			Size:   11,
		},
	}
	if diff := cmp.Diff(expected, words); diff != "" {
		t.Fatalf("Words (-want, +got):\n%s", diff)
	}
}

// TestArchive_Words_64bitOffsets tests reading an index with 64-bit offsets.
func TestArchive_Words_64bitOffsets(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
		IdxOffsetBits:    64,
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if want, got := int64(64), a.IdxOffsetBits(); want != got {
		t.Fatalf("IdxOffsetBits; want: %d, got: %d", want, got)
	}

	words, err := a.Words()
	if err != nil {
		t.Fatal(err)
	}

	expected := []*idx.Word{
		{
			Word:   "cat",
			Offset: 0,
			Size:   27,
		},
		{
			Word:   "dog",
			Offset: 27,
			Size:   21,
		},
	}
	if diff := cmp.Diff(expected, words); diff != "" {
		t.Fatalf("Words (-want, +got):\n%s", diff)
	}
}

// TestArchive_Index tests searching the archive's word index.
func TestArchive_Index(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	index, err := a.Index()
	if err != nil {
		t.Fatal(err)
	}

	// Queries are folded before lookup.
	words, err := index.Search("CAT")
	if err != nil {
		t.Fatal(err)
	}

	expected := []*idx.Word{
		{
			Word:   "cat",
			Offset: 0,
			Size:   27,
		},
	}
	if diff := cmp.Diff(expected, words); diff != "" {
		t.Fatalf("Search (-want, +got):\n%s", diff)
	}
}

// TestArchive_Syn tests reading the synonym file.
func TestArchive_Syn(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
		Syn: []*syn.Word{
			{Word: "Feline", OriginalWordIndex: 0},
			{Word: "kitty", OriginalWordIndex: 0},
			{Word: "puppy", OriginalWordIndex: 1},
		},
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	synonyms, err := a.Syn()
	if err != nil {
		t.Fatal(err)
	}

	// Synonym words are grouped under their lowercased form.
	syns, err := synonyms.Lookup("FELINE")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Feline"}, syns); diff != "" {
		t.Fatalf("Syn.Lookup (-want, +got):\n%s", diff)
	}

	// Headwords have no synonym entries of their own.
	syns, err = synonyms.Lookup("cat")
	if err != nil {
		t.Fatal(err)
	}
	if syns != nil {
		t.Fatalf("Syn.Lookup; want: nil, got: %v", syns)
	}
}

// TestArchive_Syn_none tests archives without a synonym file.
func TestArchive_Syn_none(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
	})

	a, err := sdpack.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	synonyms, err := a.Syn()
	if err != nil {
		t.Fatal(err)
	}
	if synonyms != nil {
		t.Fatalf("Syn; want: nil, got: %v", synonyms)
	}
}

// TestOpenAll tests opening all archives under a directory tree.
func TestOpenAll(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		Dir:  filepath.Join(parent, "first"),
		Base: "first",
	})
	testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		Dir:  filepath.Join(parent, "second"),
		Base: "second",
	})

	// A directory with an orphaned .ifo file fails to open.
	brokenDir := filepath.Join(parent, "broken")
	if err := os.MkdirAll(brokenDir, 0o750); err != nil {
		t.Fatal(err)
	}
	ifoData := "StarDict's dict ifo file\n" +
		"version=3.0.0\n" +
		"wordcount=0\n" +
		"idxfilesize=0\n"
	if err := os.WriteFile(filepath.Join(brokenDir, "broken.ifo"), []byte(ifoData), 0o600); err != nil {
		t.Fatal(err)
	}

	archives, errs := sdpack.OpenAll(parent)
	defer func() {
		for _, a := range archives {
			a.Close()
		}
	}()

	if want, got := 1, len(errs); want != got {
		t.Fatalf("OpenAll errors; want: %d, got: %v", want, errs)
	}
	if !errors.Is(errs[0], sdpack.ErrMissingFile) {
		t.Fatalf("OpenAll; want: %v, got: %v", sdpack.ErrMissingFile, errs[0])
	}

	var names []string
	for _, a := range archives {
		names = append(names, a.Bookname())
	}
	if diff := cmp.Diff([]string{"first", "second"}, names); diff != "" {
		t.Fatalf("OpenAll (-want, +got):\n%s", diff)
	}
}

// TestOpenAll_extraIfo tests that a directory with multiple .ifo files is
// opened as a single archive.
func TestOpenAll_extraIfo(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	dir := testutil.WriteArchive(t, testWords(), &testutil.ArchiveOptions{
		Dir: filepath.Join(parent, "dict"),
	})

	ifoData := "StarDict's dict ifo file\n" +
		"version=3.0.0\n" +
		"wordcount=0\n" +
		"idxfilesize=0\n"
	if err := os.WriteFile(filepath.Join(dir, "zz-extra.ifo"), []byte(ifoData), 0o600); err != nil {
		t.Fatal(err)
	}

	archives, errs := sdpack.OpenAll(parent)
	defer func() {
		for _, a := range archives {
			a.Close()
		}
	}()

	if len(errs) > 0 {
		t.Fatalf("OpenAll errors; want: none, got: %v", errs)
	}
	if want, got := 1, len(archives); want != got {
		t.Fatalf("OpenAll; want: %d archives, got: %d", want, got)
	}
	if want, got := "dictionary", archives[0].Bookname(); want != got {
		t.Fatalf("Bookname; want: %q, got: %q", want, got)
	}
}

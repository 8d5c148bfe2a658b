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

// Package dict implements reading .dict files.
package dict

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ianlewis/go-dictzip"
	"github.com/k3a/html2text"

	"github.com/ianlewis/sdpack/idx"
)

var (
	// ErrOutOfRange indicates that a data range lies outside the dictionary
	// data.
	ErrOutOfRange = errors.New("data out of range")

	errInvalidType        = errors.New("invalid type")
	errWordOffsetTooLarge = errors.New("word offset too large")
)

// Dict represents a Stardict dictionary's dictionary data.
type Dict struct {
	r                io.ReaderAt
	closer           io.Closer
	sametypesequence []DataType
}

// Word is a full dictionary entry.
type Word struct {
	Data []*Data
}

// DataType is a type of data in a word. Data types are specified by a single
// byte at the beginning of a word. Lower case characters represent string-like
// data that is terminated by a null terminator ('\0'). Upper case characters
// represent file-like data that starts with a 32-bit size followed by file
// data.
type DataType byte

const (
	// UTFTextType is utf-8 text.
	UTFTextType = DataType('m')

	// LocaleTextType is text in a locale encoding.
	LocaleTextType = DataType('l')

	// PangoTextType is utf-8 text in the Pango text format.
	PangoTextType = DataType('g')

	// PhoneticType is utf-8 text representing an English phonetic string.
	PhoneticType = DataType('t')

	// XDXFType is utf-8 encoded xml in XDXF format.
	XDXFType = DataType('x')

	// YinBiaoOrKataType is utf-8 encoded Yin Biao or Kana phonetic string.
	YinBiaoOrKataType = DataType('y')

	// PowerWordType is a utf-8 encoded KingSoft PowerWord XML format.
	PowerWordType = DataType('p')

	// MediaWikiType is utf-8 encoded text in MediaWiki format.
	MediaWikiType = DataType('w')

	// HTMLType is utf-8 encoded HTML text.
	HTMLType = DataType('h')

	// WordNetType is WordNet data.
	WordNetType = DataType('n')

	// ResourceFileListType is a list of files in resource storage.
	ResourceFileListType = DataType('r')

	// WavType is .wav sound file data.
	WavType = DataType('W')

	// PictureType is image file data. This was used by the
	// stardict-advertisement-plugin. Images are better stored in a resource
	// file list.
	PictureType = DataType('P')

	// ExperimentalType is reserved for experimental features.
	ExperimentalType = DataType('X')
)

// stringLike returns true for lower case data types whose data is a
// null-terminated string. Upper case types are file-like data prefixed with a
// 32-bit size.
func (t DataType) stringLike() bool {
	return 'a' <= t && t <= 'z'
}

// Data is a data entry in a Word.
type Data struct {
	Type DataType
	Data []byte
}

// String returns the data rendered as text. HTML data is converted to plain
// text. Data types that have no text rendering return an empty string.
func (d *Data) String() string {
	switch d.Type {
	case UTFTextType, LocaleTextType, PhoneticType, YinBiaoOrKataType:
		return decodeText(d.Data)
	case HTMLType:
		return html2text.HTML2Text(decodeText(d.Data))
	default:
		// TODO: Support XDXF and other text formats.
		return ""
	}
}

// Options are options for reading the dictionary data.
type Options struct {
	// SameTypeSequence is the value of the .ifo file's sametypesequence
	// option. When set, every word's data has the given types and omits
	// per-word type descriptors.
	SameTypeSequence []DataType

	// DictZip indicates that the dictionary data is compressed in the dictzip
	// format.
	DictZip bool
}

// New returns a new Dict from the given reader. The Dict takes ownership of
// the reader. If the reader implements io.Closer it is closed by the Dict's
// Close method.
func New(r io.ReaderAt, options *Options) (*Dict, error) {
	if options == nil {
		options = &Options{}
	}

	// verify sametypesequence
	for _, s := range options.SameTypeSequence {
		switch s {
		case UTFTextType,
			LocaleTextType,
			PangoTextType,
			PhoneticType,
			XDXFType,
			YinBiaoOrKataType,
			PowerWordType,
			MediaWikiType,
			HTMLType,
			WordNetType,
			ResourceFileListType,
			WavType,
			PictureType,
			ExperimentalType:
		default:
			return nil, fmt.Errorf("%w: %v", errInvalidType, s)
		}
	}

	d := &Dict{
		r:                r,
		sametypesequence: options.SameTypeSequence,
	}
	if c, ok := r.(io.Closer); ok {
		d.closer = c
	}

	if options.DictZip {
		z, err := dictzip.NewReader(io.NewSectionReader(r, 0, math.MaxInt64-1))
		if err != nil {
			return nil, fmt.Errorf("creating dictzip reader: %w", err)
		}
		d.r = z
	}

	return d, nil
}

// NewFromIfoPath returns a new Dict given the path to the .ifo file. The
// dictionary data file is located next to the .ifo file and may be compressed
// in the dictzip format.
func NewFromIfoPath(ifoPath string, options *Options) (*Dict, error) {
	baseName := strings.TrimSuffix(ifoPath, filepath.Ext(ifoPath))

	dictExts := []string{
		".dict.dz",
		".dict.DZ",
		".dict",
		".DICT.dz",
		".DICT.DZ",
		".DICT",
	}
	var f *os.File
	var err error
	var dictPath string
	for _, ext := range dictExts {
		dictPath = baseName + ext
		f, err = os.Open(dictPath)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening .dict file: %w", err)
		}
	}

	// Catch the case when no .dict file was found.
	if err != nil {
		return nil, fmt.Errorf("opening .dict file: %w", err)
	}

	o := Options{}
	if options != nil {
		o = *options
	}
	o.DictZip = strings.EqualFold(filepath.Ext(dictPath), ".dz")

	return New(f, &o)
}

// Close closes the dict file.
func (d *Dict) Close() error {
	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			return fmt.Errorf("closing dict file: %w", err)
		}
	}
	return nil
}

// readRange reads the data range for one index entry.
func (d *Dict) readRange(offset uint64, size uint32) ([]byte, error) {
	if offset > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d", errWordOffsetTooLarge, offset)
	}
	b := make([]byte, size)
	// NOTE: if ReadAt does not read size bytes then an error is returned.
	//nolint:gosec // offset size is bounds checked above.
	if _, err := d.r.ReadAt(b, int64(offset)); err != nil {
		return nil, fmt.Errorf("%w: offset %d size %d: %v", ErrOutOfRange, offset, size, err)
	}
	return b, nil
}

// Word retrieves the word for the given index entry from the
// dictionary.
func (d *Dict) Word(e *idx.Word) (*Word, error) {
	b, err := d.readRange(e.Offset, e.Size)
	if err != nil {
		return nil, err
	}

	var wordData []*Data
	c := &cursor{b: b}
	if len(d.sametypesequence) > 0 {
		// When sametypesequence is specified, that determines the type of the
		// word's data.
		for i, t := range d.sametypesequence {
			var data []byte
			if t.stringLike() {
				// The final data item has no null terminator.
				if i == len(d.sametypesequence)-1 {
					data = c.rest()
				} else {
					data = c.readString()
				}
			} else {
				data, err = c.readBlob()
				if err != nil {
					return nil, err
				}
			}
			wordData = append(wordData, &Data{
				Type: t,
				Data: data,
			})
		}
	} else {
		for !c.done() {
			t := DataType(c.readByte())

			var data []byte
			if t.stringLike() {
				data = c.readString()
			} else {
				data, err = c.readBlob()
				if err != nil {
					return nil, err
				}
			}
			wordData = append(wordData, &Data{
				Type: t,
				Data: data,
			})
		}
	}

	return &Word{
		Data: wordData,
	}, nil
}

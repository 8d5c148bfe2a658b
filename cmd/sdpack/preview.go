// Copyright 2025 Ian Lewis
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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdpack"
	"github.com/ianlewis/sdpack/dict"
	"github.com/ianlewis/sdpack/fields"
	"github.com/ianlewis/sdpack/idx"
)

var previewCommand = &cli.Command{
	Name:      "preview",
	Usage:     "Preview converted entries from an archive",
	ArgsUsage: "ARCHIVE_DIR [WORD]",
	Description: `Extract and parse entries from the stardict archive in ARCHIVE_DIR without
writing a pack.

With WORD, print the entries matching WORD. Without it, print the first
entries in index order.`,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "print at most `NUM` entries",
			Value:   10,
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "print raw data segments without field parsing",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 || c.NArg() > 2 {
			return fmt.Errorf("%w: expected ARCHIVE_DIR and optional WORD arguments", ErrFlagParse)
		}

		archive, err := sdpack.Open(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer archive.Close()

		d, err := archive.Dict()
		if err != nil {
			return err
		}

		var words []*idx.Word
		if c.NArg() == 2 {
			index, err := archive.Index()
			if err != nil {
				return err
			}
			words, err = index.Search(c.Args().Get(1))
			if err != nil {
				return err
			}
		} else {
			words, err = archive.Words()
			if err != nil {
				return err
			}
		}
		if limit := c.Int("limit"); limit > 0 && len(words) > limit {
			words = words[:limit]
		}

		if len(words) == 0 {
			fmt.Fprintln(c.App.Writer, "No matching entries.")
			return nil
		}

		for _, w := range words {
			if c.Bool("raw") {
				word, err := d.Word(w)
				if err != nil {
					fmt.Fprintf(os.Stderr, "skipping %q: %v\n", w.Word, err)
					continue
				}
				printRaw(c.App.Writer, w.Word, word)
				continue
			}

			text, err := d.Extract(w)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %q: %v\n", w.Word, err)
				continue
			}
			printPreview(c.App.Writer, w.Word, fields.Parse(text))
		}
		return nil
	},
}

// printRaw prints a word's data segments with their type descriptors.
func printRaw(w io.Writer, word string, entry *dict.Word) {
	fmt.Fprintln(w, word)
	for _, data := range entry.Data {
		fmt.Fprintf(w, "  %c: %s\n", data.Type, data.String())
	}
	fmt.Fprintln(w)
}

func printPreview(w io.Writer, word string, def *fields.Definition) {
	fmt.Fprintln(w, word)
	if def.Pronunciation != "" {
		fmt.Fprintf(w, "  pronunciation:  %s\n", def.Pronunciation)
	}
	if def.PartOfSpeech != "" {
		fmt.Fprintf(w, "  part of speech: %s\n", def.PartOfSpeech)
	}
	fmt.Fprintf(w, "  definition:     %s\n", def.Body)
	for _, example := range def.Examples {
		fmt.Fprintf(w, "  example:        %s\n", example)
	}
	if def.Etymology != "" {
		fmt.Fprintf(w, "  etymology:      %s\n", def.Etymology)
	}
	fmt.Fprintln(w)
}

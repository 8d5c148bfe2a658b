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

package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdpack/store"
)

// maxDefinitionWidth is the display width definitions are truncated to in
// query output.
const maxDefinitionWidth = 80

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "Query a dictionary pack",
	ArgsUsage: "PACK QUERY",
	Description: `Search the dictionary pack at PACK for QUERY.

Packs with a full-text search index are searched by token. Packs without one
are searched by exact word. The --exact flag always searches by exact word.`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "exact",
			Usage: "match the exact word instead of searching",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "return at most `NUM` results",
			Value:   20,
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("%w: expected PACK and QUERY arguments", ErrFlagParse)
		}

		s, err := store.Open(c.Context, c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("opening pack: %w", err)
		}
		defer s.Close()

		query := c.Args().Get(1)

		var entries []*store.Entry
		if c.Bool("exact") || !s.FullTextSearch() {
			entries, err = s.Lookup(c.Context, query)
		} else {
			entries, err = s.Search(c.Context, query, c.Int("limit"))
		}
		if err != nil {
			return fmt.Errorf("querying pack: %w", err)
		}

		if len(entries) == 0 {
			fmt.Fprintln(c.App.Writer, "No matching entries.")
			return nil
		}

		tbl := table.New("Word", "Part of Speech", "Definition")
		tbl.WithWriter(c.App.Writer)
		for _, entry := range entries {
			tbl.AddRow(entry.Word, entry.PartOfSpeech, truncate(entry.Definition, maxDefinitionWidth))
		}
		tbl.Print()

		return nil
	},
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

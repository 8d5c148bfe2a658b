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
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdpack/store"
)

var verifyCommand = &cli.Command{
	Name:      "verify",
	Usage:     "Verify a dictionary pack",
	ArgsUsage: "PACK",
	Description: `Verify the structure and contents of the dictionary pack at PACK.

The exit code is non-zero when the pack is invalid.`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the verification report as JSON",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("%w: expected PACK argument", ErrFlagParse)
		}

		s, err := store.Open(c.Context, c.Args().First())
		if err != nil {
			return fmt.Errorf("opening pack: %w", err)
		}
		defer s.Close()

		report, err := s.Verify(c.Context)
		if err != nil {
			return fmt.Errorf("verifying pack: %w", err)
		}

		if c.Bool("json") {
			encoder := json.NewEncoder(c.App.Writer)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
		} else {
			w := c.App.Writer
			fmt.Fprintf(w, "Pack:              %s\n", report.Path)
			fmt.Fprintf(w, "Schema version:    %s\n", report.SchemaVersion)
			fmt.Fprintf(w, "Full-text search:  %v\n", report.FullTextSearch)
			fmt.Fprintf(w, "Entries:           %d (%d distinct words)\n", report.TotalEntries, report.DistinctWords)
			for _, problem := range report.Problems {
				fmt.Fprintf(w, "Problem:           %s\n", problem)
			}
			if report.OK() {
				fmt.Fprintln(w, "OK")
			}
		}

		if !report.OK() {
			return fmt.Errorf("%w: %s", ErrVerify, c.Args().First())
		}
		return nil
	},
}

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
	"os"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
)

var infoCommand = &cli.Command{
	Name:      "info",
	Usage:     "List stardict archives",
	ArgsUsage: "[DIR...]",
	Description: `List the stardict archives found under the given directories.

Without arguments the platform's default dictionary locations and the
directories given by --data-dir are searched.`,
	Action: func(c *cli.Context) error {
		dirs := c.Args().Slice()
		if len(dirs) == 0 {
			dirs = c.StringSlice("data-dir")
		}

		archives, errs := openArchives(dirs)
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		defer func() {
			for _, a := range archives {
				a.Close()
			}
		}()

		tbl := table.New("Name", "Version", "Words", "Syns", "Path")
		tbl.WithWriter(c.App.Writer)
		for _, a := range archives {
			tbl.AddRow(a.Bookname(), a.Version(), a.WordCount(), a.SynWordCount(), a.Path())
		}
		tbl.Print()

		if len(errs) > 0 {
			return fmt.Errorf("%w: failed to open %d archives", ErrSdpack, len(errs))
		}
		return nil
	},
}

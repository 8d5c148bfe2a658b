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
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdpack"
)

var convertCommand = &cli.Command{
	Name:      "convert",
	Usage:     "Convert a stardict archive to a dictionary pack",
	ArgsUsage: "ARCHIVE_DIR OUTPUT",
	Description: `Convert the stardict archive in ARCHIVE_DIR to a dictionary pack at OUTPUT.

Any existing pack at OUTPUT is replaced.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Usage: "record `NAME` as the dictionary name",
		},
		&cli.StringFlag{
			Name:  "source-lang",
			Usage: "record `LANG` as the language of the dictionary's words",
		},
		&cli.StringFlag{
			Name:  "target-lang",
			Usage: "record `LANG` as the language of the definitions",
		},
		&cli.BoolFlag{
			Name:  "fts",
			Usage: "build a full-text search index",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "frequency",
			Usage: "estimate word frequency ranks",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "bundle",
			Usage: "bundle the pack into a zip file with a manifest",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the conversion result as JSON",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "suppress progress output",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug logging",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("%w: expected ARCHIVE_DIR and OUTPUT arguments", ErrFlagParse)
		}

		level := slog.LevelWarn
		if c.Bool("verbose") {
			level = slog.LevelDebug
		}
		if c.Bool("quiet") {
			level = slog.LevelError
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		var onProgress func(fraction float64, status string)
		if !c.Bool("quiet") {
			onProgress = func(fraction float64, status string) {
				fmt.Fprintf(os.Stderr, "\r%3.0f%% %s\x1b[K", fraction*100, status)
				if fraction >= 1.0 {
					fmt.Fprintln(os.Stderr)
				}
			}
		}

		result := sdpack.Convert(c.Context, &sdpack.Options{
			Archive:        c.Args().Get(0),
			Output:         c.Args().Get(1),
			Name:           c.String("name"),
			SourceLanguage: c.String("source-lang"),
			TargetLanguage: c.String("target-lang"),
			FullTextSearch: c.Bool("fts"),
			Frequency:      c.Bool("frequency"),
			OnProgress:     onProgress,
			Logger:         logger,
		})

		var bundleInfo *sdpack.BundleInfo
		if result.Success && c.Bool("bundle") {
			info, err := sdpack.Bundle(result.Output, result.Output+".zip")
			if err != nil {
				return fmt.Errorf("bundling pack: %w", err)
			}
			if err := result.WriteManifest(result.Output+".manifest.json", info); err != nil {
				return err
			}
			bundleInfo = info
		}

		if c.Bool("json") {
			encoder := json.NewEncoder(c.App.Writer)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
		}

		if !result.Success {
			return fmt.Errorf("%w: %s", ErrConvert, result.Error)
		}

		if !c.Bool("json") && !c.Bool("quiet") {
			w := c.App.Writer
			fmt.Fprintf(w, "Converted %q to %s\n", result.Name, result.Output)
			fmt.Fprintf(w, "  Entries:  %d of %d (%d failed, %d duplicates)\n",
				result.SuccessfulEntries, result.TotalEntries,
				result.FailedEntries, result.DuplicateEntries)
			fmt.Fprintf(w, "  Time:     %.2fs\n", result.ConversionSeconds)
			if bundleInfo != nil {
				fmt.Fprintf(w, "  Bundle:   %s (%d bytes)\n", bundleInfo.Path, bundleInfo.SizeBytes)
				fmt.Fprintf(w, "  SHA-256:  %s\n", bundleInfo.SHA256)
			}
		}

		return nil
	},
}

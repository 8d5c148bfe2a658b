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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdpack"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError

	// ExitCodeConversionError is the exit code for a failed conversion.
	ExitCodeConversionError

	// ExitCodeVerifyError is the exit code for a pack that failed
	// verification.
	ExitCodeVerifyError
)

// ErrSdpack is a parent error for all command errors.
var ErrSdpack = errors.New("sdpack")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrSdpack)

// ErrConvert indicates that a conversion failed.
var ErrConvert = fmt.Errorf("%w: conversion failed", ErrSdpack)

// ErrVerify indicates that a pack failed verification.
var ErrVerify = fmt.Errorf("%w: pack verification failed", ErrSdpack)

var copyrightNames = []string{
	"2021 Google LLC",
	"2025 Ian Lewis",
}

//nolint:gochecknoinits // init needed needed for global variable.
func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use commands.
	//
	// This is done because `sdpack --help foo` will display a
	// "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

func openArchives(dirs []string) ([]*sdpack.Archive, []error) {
	var archives []*sdpack.Archive
	var errs []error

	for _, path := range dirs {
		opened, openErrs := sdpack.OpenAll(path)

		archives = append(archives, opened...)
		errs = append(errs, openErrs...)
	}

	return archives, errs
}

func newSdpackApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Convert Stardict dictionaries to dictionary packs.",
		Description: strings.Join([]string{
			"Stardict dictionary pack builder written in Go.",
			"http://github.com/ianlewis/sdpack",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "data-dir",
				Usage:   "include dictionaries in `DIR`",
				Aliases: []string{"d"},
				Value:   cli.NewStringSlice(dictLocations()...),
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			convertCommand,
			previewCommand,
			infoCommand,
			queryCommand,
			verifyCommand,
		},
	}
}

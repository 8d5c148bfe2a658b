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

// Command sdpack converts stardict dictionary archives into single-file
// dictionary packs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ianlewis/sdpack/store"
)

func main() {
	if err := newSdpackApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, ErrFlagParse):
		return ExitCodeFlagParseError
	case errors.Is(err, ErrConvert):
		return ExitCodeConversionError
	case errors.Is(err, ErrVerify),
		errors.Is(err, store.ErrInvalidPack),
		errors.Is(err, store.ErrSchemaVersion):
		return ExitCodeVerifyError
	default:
		return ExitCodeUnknownError
	}
}

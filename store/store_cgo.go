// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build sqlite_cgo

package store

// This file is compiled with the sqlite_cgo tag and uses the C SQLite
// library for faster bulk loading. The fts5 tag is required for the
// full-text search index.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_cgo,fts5" ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver used to open packs.
	DriverName = "sqlite3"

	// BuildMode describes the compiled-in SQLite driver.
	BuildMode = "cgo"
)

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

package sdpack_test

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ianlewis/sdpack"
)

// TestBundle tests bundling a pack into a zip file.
func TestBundle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	packPath := filepath.Join(dir, "pack.db")
	content := []byte("pack content")
	if err := os.WriteFile(packPath, content, 0o600); err != nil {
		t.Fatal(err)
	}

	zipPath := filepath.Join(dir, "pack.db.zip")
	info, err := sdpack.Bundle(packPath, zipPath)
	if err != nil {
		t.Fatal(err)
	}

	if want, got := zipPath, info.Path; want != got {
		t.Fatalf("Path; want: %q, got: %q", want, got)
	}

	fi, err := os.Stat(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := fi.Size(), info.SizeBytes; want != got {
		t.Fatalf("SizeBytes; want: %d, got: %d", want, got)
	}

	zipData, err := os.ReadFile(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	checksum := sha256.Sum256(zipData)
	if want, got := hex.EncodeToString(checksum[:]), info.SHA256; want != got {
		t.Fatalf("SHA256; want: %q, got: %q", want, got)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	if want, got := 1, len(zr.File); want != got {
		t.Fatalf("bundle members; want: %d, got: %d", want, got)
	}
	if want, got := "pack.db", zr.File[0].Name; want != got {
		t.Fatalf("member name; want: %q, got: %q", want, got)
	}

	r, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	extracted, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if want, got := string(content), string(extracted); want != got {
		t.Fatalf("member content; want: %q, got: %q", want, got)
	}
}

// TestBundle_missingPack tests bundling a pack that does not exist.
func TestBundle_missingPack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := sdpack.Bundle(filepath.Join(dir, "missing.db"), filepath.Join(dir, "missing.zip"))
	if err == nil {
		t.Fatal("Bundle; want: error, got: nil")
	}
}

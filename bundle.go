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

package sdpack

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BundleInfo describes a bundled pack.
type BundleInfo struct {
	// Path is the bundle file path.
	Path string `json:"path"`

	// SizeBytes is the size of the bundle file.
	SizeBytes int64 `json:"sizeBytes"`

	// SHA256 is the hex encoded SHA-256 checksum of the bundle file.
	SHA256 string `json:"sha256"`
}

// Bundle compresses the pack at packPath into a single-member zip file at
// zipPath for distribution. The member is named after the pack file's base
// name.
func Bundle(packPath, zipPath string) (*BundleInfo, error) {
	if err := writeBundle(packPath, zipPath); err != nil {
		return nil, err
	}

	checksum, err := fileSHA256(zipPath)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(zipPath)
	if err != nil {
		return nil, fmt.Errorf("reading bundle %q: %w", zipPath, err)
	}

	return &BundleInfo{
		Path:      zipPath,
		SizeBytes: fi.Size(),
		SHA256:    checksum,
	}, nil
}

func writeBundle(packPath, zipPath string) error {
	packFile, err := os.Open(packPath)
	if err != nil {
		return fmt.Errorf("opening pack %q: %w", packPath, err)
	}
	defer packFile.Close()

	zipFile, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("creating bundle %q: %w", zipPath, err)
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)
	w, err := zw.Create(filepath.Base(packPath))
	if err != nil {
		return fmt.Errorf("creating bundle %q: %w", zipPath, err)
	}
	if _, err := io.Copy(w, packFile); err != nil {
		return fmt.Errorf("writing bundle %q: %w", zipPath, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("writing bundle %q: %w", zipPath, err)
	}
	if err := zipFile.Close(); err != nil {
		return fmt.Errorf("writing bundle %q: %w", zipPath, err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

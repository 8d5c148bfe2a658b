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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ianlewis/sdpack/store"
)

// Result is the outcome of a single conversion. A Result is returned for
// every conversion call, on both the success and failure paths.
type Result struct {
	// Name is the dictionary name recorded in the pack.
	Name string `json:"name"`

	// SourceLanguage is the language of the dictionary's words.
	SourceLanguage string `json:"sourceLanguage"`

	// TargetLanguage is the language of the dictionary's definitions.
	TargetLanguage string `json:"targetLanguage"`

	// Success indicates whether the conversion completed.
	Success bool `json:"success"`

	// Error is the failure message when Success is false.
	Error string `json:"error,omitempty"`

	// Output is the output pack path.
	Output string `json:"output"`

	// InputFiles are the base names of the archive files that were read.
	InputFiles []string `json:"inputFiles"`

	// Metadata is the original archive metadata.
	Metadata map[string]string `json:"metadata"`

	// TotalEntries is the number of entries in the archive's index.
	TotalEntries int64 `json:"totalEntries"`

	// SuccessfulEntries is the number of entries written to the pack,
	// including duplicates that were ignored by the store.
	SuccessfulEntries int64 `json:"successfulEntries"`

	// FailedEntries is the number of entries skipped due to per-entry
	// extraction or parse failures.
	FailedEntries int64 `json:"failedEntries"`

	// DuplicateEntries is the number of entries ignored by the store's
	// conflict policy.
	DuplicateEntries int64 `json:"duplicateEntries"`

	// ConversionSeconds is the conversion duration in seconds.
	ConversionSeconds float64 `json:"conversionSeconds"`

	// SuccessRate is the fraction of entries that were converted
	// successfully. It is zero when the archive's index is empty.
	SuccessRate float64 `json:"successRate"`

	// Stage is the last conversion stage that was reached.
	Stage Stage `json:"stage"`
}

// manifest describes a bundled pack for distribution.
type manifest struct {
	Name           string `json:"name"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	Entries        int64  `json:"entries"`
	SchemaVersion  string `json:"schemaVersion"`
	CreatedAt      string `json:"createdAt"`
	Bundle         string `json:"bundle"`
	SizeBytes      int64  `json:"sizeBytes"`
	SHA256         string `json:"sha256"`
}

// WriteManifest writes a distribution manifest describing the bundled pack to
// the given path.
func (r *Result) WriteManifest(path string, bundle *BundleInfo) error {
	m := manifest{
		Name:           r.Name,
		SourceLanguage: r.SourceLanguage,
		TargetLanguage: r.TargetLanguage,
		Entries:        r.SuccessfulEntries,
		SchemaVersion:  store.SchemaVersion,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		Bundle:         filepath.Base(bundle.Path),
		SizeBytes:      bundle.SizeBytes,
		SHA256:         bundle.SHA256,
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

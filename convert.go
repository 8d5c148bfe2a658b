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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/ianlewis/sdpack/dict"
	"github.com/ianlewis/sdpack/fields"
	"github.com/ianlewis/sdpack/freq"
	"github.com/ianlewis/sdpack/idx"
	"github.com/ianlewis/sdpack/store"
	"github.com/ianlewis/sdpack/syn"
)

// Stage is a conversion pipeline stage.
type Stage string

// Conversion stages in pipeline order.
const (
	StageValidating            Stage = "validating"
	StageReadingMetadata       Stage = "reading_metadata"
	StageParsingIndex          Stage = "parsing_index"
	StageCreatingStore         Stage = "creating_store"
	StageConvertingEntries     Stage = "converting_entries"
	StageBuildingFullTextIndex Stage = "building_full_text_index"
	StageFinalizing            Stage = "finalizing"
	StageCompleted             Stage = "completed"
)

// Progress fractions reported at stage boundaries. Entry conversion
// interpolates between convertStart and convertEnd so that reported progress
// is strictly increasing.
const (
	validatingProgress    = 0.05
	metadataProgress      = 0.10
	indexProgress         = 0.20
	createStoreProgress   = 0.25
	convertStart          = 0.30
	convertEnd            = 0.85
	fullTextIndexProgress = 0.90
	finalizingProgress    = 0.95
)

// progressCadence is the number of entries between progress reports and
// cancellation checks during entry conversion.
const progressCadence = 100

// Options are options for a conversion.
type Options struct {
	// Archive is the input archive directory.
	Archive string

	// Output is the output pack path.
	Output string

	// Name is the dictionary name recorded in the pack. When empty the
	// archive's bookname is used, falling back to the archive directory name.
	Name string

	// SourceLanguage is the language of the dictionary's words.
	SourceLanguage string

	// TargetLanguage is the language of the dictionary's definitions.
	TargetLanguage string

	// FullTextSearch indicates whether to build a full-text search index.
	FullTextSearch bool

	// Frequency indicates whether to estimate word frequency ranks.
	Frequency bool

	// OnProgress is called with a progress fraction and status message at
	// each stage boundary and at a fixed cadence during entry conversion. The
	// final call reports a fraction of 1.0 on both the success and failure
	// paths.
	OnProgress func(fraction float64, status string)

	// Logger is the logger for conversion diagnostics. When nil the default
	// logger is used.
	Logger *slog.Logger
}

// Convert converts the StarDict dictionary archive described by opts into a
// single pack file. Convert always returns a Result; failures are reported in
// the Result's Success and Error fields and never as a panic. On failure any
// partially written pack is removed.
func Convert(ctx context.Context, opts *Options) (result *Result) {
	if opts == nil {
		opts = &Options{}
	}
	c := newConverter(opts)
	defer func() {
		if r := recover(); r != nil {
			c.fail(fmt.Errorf("internal error: %v\n%s", r, debug.Stack()))
			result = c.result
		}
	}()

	if err := c.run(ctx); err != nil {
		c.fail(err)
	} else {
		c.complete()
	}
	return c.result
}

// converter tracks the state of a single conversion. Each conversion call
// owns its converter and store handle exclusively.
type converter struct {
	opts    *Options
	log     *slog.Logger
	result  *Result
	started time.Time

	store *store.Store
	batch *store.EntryBatch

	// createdStore records whether the output pack was created by this
	// conversion. Cleanup on failure only removes the output once it is set.
	createdStore bool
}

func newConverter(opts *Options) *converter {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &converter{
		opts:    opts,
		log:     log,
		started: time.Now(),
		result: &Result{
			Name:           opts.Name,
			SourceLanguage: opts.SourceLanguage,
			TargetLanguage: opts.TargetLanguage,
			Output:         opts.Output,
			Metadata:       map[string]string{},
		},
	}
}

func (c *converter) run(ctx context.Context) error {
	c.stage(StageValidating, validatingProgress, "Validating archive")
	archive, err := openArchive(c.opts.Archive)
	if err != nil {
		return err
	}
	defer archive.Close()

	c.stage(StageReadingMetadata, metadataProgress, "Reading archive metadata")
	if err := archive.readMetadata(); err != nil {
		return err
	}
	c.result.InputFiles = archive.Files()
	for _, key := range archive.MetadataKeys() {
		c.result.Metadata[key] = archive.MetadataValue(key)
	}
	if c.result.Name == "" {
		c.result.Name = archive.Bookname()
	}
	if c.result.Name == "" {
		c.result.Name = filepath.Base(archive.Path())
	}

	c.stage(StageParsingIndex, indexProgress, "Parsing word index")
	words, err := archive.Words()
	if err != nil {
		return err
	}
	if int64(len(words)) != archive.WordCount() {
		c.log.Warn("index length differs from declared wordcount",
			slog.Int("parsed", len(words)),
			slog.Int64("declared", archive.WordCount()))
	}
	c.result.TotalEntries = int64(len(words))

	synonyms, err := archive.Syn()
	if err != nil {
		return err
	}

	var ranks map[string]int
	if c.opts.Frequency {
		wordList := make([]string, len(words))
		for i, w := range words {
			wordList[i] = w.Word
		}
		ranks = freq.Ranks(wordList)
	}

	d, err := archive.Dict()
	if err != nil {
		return err
	}

	c.stage(StageCreatingStore, createStoreProgress, "Creating pack")
	s, err := store.Create(ctx, c.opts.Output, &store.Options{
		FullTextSearch: c.opts.FullTextSearch,
	})
	if err != nil {
		return err
	}
	c.store = s
	c.createdStore = true

	batch, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	c.batch = batch

	c.stage(StageConvertingEntries, convertStart, "Converting entries")
	if err := c.convertEntries(ctx, words, d, synonyms, ranks); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	c.batch = nil

	if c.opts.FullTextSearch {
		c.stage(StageBuildingFullTextIndex, fullTextIndexProgress, "Building full-text index")
		if err := s.RebuildFTS(ctx); err != nil {
			return err
		}
	}

	c.stage(StageFinalizing, finalizingProgress, "Finalizing pack")
	if err := c.writeMetadata(ctx, archive); err != nil {
		return err
	}
	if err := s.Optimize(ctx); err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("closing pack: %w", err)
	}
	c.store = nil

	return nil
}

// convertEntries converts each index entry and inserts it into the store's
// entry batch. A malformed entry is skipped and counted, never fatal.
func (c *converter) convertEntries(ctx context.Context, words []*idx.Word, d *dict.Dict, synonyms *syn.Map, ranks map[string]int) error {
	total := len(words)
	for i, w := range words {
		if i > 0 && i%progressCadence == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			fraction := convertStart + (convertEnd-convertStart)*float64(i)/float64(total)
			c.progress(fraction, fmt.Sprintf("Converting entries (%d/%d)", i, total))
		}

		text, err := d.Extract(w)
		if err != nil {
			c.result.FailedEntries++
			c.log.Debug("skipping entry",
				slog.String("word", w.Word),
				slog.String("error", err.Error()))
			continue
		}
		if text == "" {
			c.result.FailedEntries++
			c.log.Debug("skipping entry with empty definition", slog.String("word", w.Word))
			continue
		}

		def := fields.Parse(text)
		if def.Body == "" {
			c.result.FailedEntries++
			c.log.Debug("skipping entry with empty parsed body", slog.String("word", w.Word))
			continue
		}

		var syns []string
		if synonyms != nil {
			syns, err = synonyms.Lookup(w.Word)
			if err != nil {
				c.result.FailedEntries++
				c.log.Debug("skipping entry",
					slog.String("word", w.Word),
					slog.String("error", err.Error()))
				continue
			}
		}

		var rank *int64
		if ranks != nil {
			if r, ok := ranks[strings.ToLower(w.Word)]; ok {
				v := int64(r)
				rank = &v
			}
		}

		inserted, err := c.batch.Insert(ctx, &store.Entry{
			Word:          w.Word,
			Definition:    def.Body,
			Pronunciation: def.Pronunciation,
			PartOfSpeech:  def.PartOfSpeech,
			Examples:      def.Examples,
			Synonyms:      syns,
			Etymology:     def.Etymology,
			FrequencyRank: rank,
			SourceDict:    c.result.Name,
		})
		if err != nil {
			if errors.Is(err, store.ErrInvalidEntry) {
				c.result.FailedEntries++
				c.log.Debug("skipping invalid entry",
					slog.String("word", w.Word),
					slog.String("error", err.Error()))
				continue
			}
			return fmt.Errorf("inserting entry %q: %w", w.Word, err)
		}
		c.result.SuccessfulEntries++
		if !inserted {
			c.result.DuplicateEntries++
		}
	}

	c.progress(convertEnd, fmt.Sprintf("Converted %d entries", c.result.SuccessfulEntries))
	return nil
}

// writeMetadata records the pack's identity, conversion statistics, and the
// original archive metadata under a "stardict." namespace.
func (c *converter) writeMetadata(ctx context.Context, archive *Archive) error {
	rows := [][2]string{
		{store.MetadataName, c.result.Name},
		{store.MetadataSourceLanguage, c.result.SourceLanguage},
		{store.MetadataTargetLanguage, c.result.TargetLanguage},
		{"source_dict", c.result.Name},
		{"converted_from", "stardict"},
		{"created_at", time.Now().UTC().Format(time.RFC3339)},
		{"total_entries", strconv.FormatInt(c.result.TotalEntries, 10)},
		{"successful_entries", strconv.FormatInt(c.result.SuccessfulEntries, 10)},
		{"failed_entries", strconv.FormatInt(c.result.FailedEntries, 10)},
		{"duplicate_entries", strconv.FormatInt(c.result.DuplicateEntries, 10)},
		{"conversion_seconds", strconv.FormatFloat(time.Since(c.started).Seconds(), 'f', -1, 64)},
	}
	for _, key := range archive.MetadataKeys() {
		rows = append(rows, [2]string{"stardict." + key, archive.MetadataValue(key)})
	}

	for _, row := range rows {
		if err := c.store.PutMetadata(ctx, row[0], row[1]); err != nil {
			return fmt.Errorf("writing pack metadata: %w", err)
		}
	}
	return nil
}

func successRate(r *Result) float64 {
	if r.TotalEntries == 0 {
		return 0
	}
	return float64(r.SuccessfulEntries) / float64(r.TotalEntries)
}

// stage records the given stage as reached and reports it to the progress
// sink.
func (c *converter) stage(s Stage, fraction float64, status string) {
	c.result.Stage = s
	c.log.Debug("conversion stage", slog.String("stage", string(s)))
	c.progress(fraction, status)
}

func (c *converter) progress(fraction float64, status string) {
	if c.opts.OnProgress != nil {
		c.opts.OnProgress(fraction, status)
	}
}

// complete finalizes the result on the success path.
func (c *converter) complete() {
	c.result.Success = true
	c.result.Stage = StageCompleted
	c.result.ConversionSeconds = time.Since(c.started).Seconds()
	c.result.SuccessRate = successRate(c.result)
	c.log.Info("conversion complete",
		slog.String("name", c.result.Name),
		slog.String("output", c.result.Output),
		slog.Int64("successful", c.result.SuccessfulEntries),
		slog.Int64("failed", c.result.FailedEntries),
		slog.Int64("duplicates", c.result.DuplicateEntries),
		slog.Float64("seconds", c.result.ConversionSeconds))
	c.progress(1.0, fmt.Sprintf("Conversion complete: %d entries", c.result.SuccessfulEntries))
}

// fail finalizes the result on the failure path. Any open batch and store are
// released and a partially written pack is removed. The result's Stage is
// left at the last stage that was reached.
func (c *converter) fail(err error) {
	if c.batch != nil {
		if rollbackErr := c.batch.Rollback(); rollbackErr != nil {
			c.log.Warn("rolling back entries", slog.String("error", rollbackErr.Error()))
		}
		c.batch = nil
	}
	if c.store != nil {
		if closeErr := c.store.Close(); closeErr != nil {
			c.log.Warn("closing pack", slog.String("error", closeErr.Error()))
		}
		c.store = nil
	}
	if c.createdStore {
		if removeErr := store.Remove(c.opts.Output); removeErr != nil {
			c.log.Warn("removing partial pack", slog.String("error", removeErr.Error()))
		}
	}

	c.result.Success = false
	c.result.Error = err.Error()
	c.result.ConversionSeconds = time.Since(c.started).Seconds()
	c.result.SuccessRate = successRate(c.result)
	c.log.Error("conversion failed",
		slog.String("stage", string(c.result.Stage)),
		slog.String("error", err.Error()))
	c.progress(1.0, fmt.Sprintf("Conversion failed: %v", err))
}

// Package pipeline runs a full HAR to CSV conversion.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dtnitsch/har2csv/models"
	"github.com/dtnitsch/har2csv/pkg/csvout"
	"github.com/dtnitsch/har2csv/pkg/extractor"
	"github.com/dtnitsch/har2csv/pkg/flatten"
	"github.com/dtnitsch/har2csv/pkg/harfile"
	"github.com/dtnitsch/har2csv/pkg/projector"
	"github.com/dtnitsch/har2csv/pkg/storage"
)

// ErrNoRecordsFound means the archive held no listing records. No file is written.
var ErrNoRecordsFound = errors.New("no records found to export")

type Options struct {
	Input  string
	Output string // defaults to DefaultOutputPath(Input)
	Config models.Config
	Logger *slog.Logger
}

type Result struct {
	Input     string          `json:"input" yaml:"input"`
	Output    string          `json:"output" yaml:"output"`
	Rows      int             `json:"rows" yaml:"rows"`
	Columns   []string        `json:"columns" yaml:"columns"`
	Stats     extractor.Stats `json:"stats" yaml:"stats"`
	Sources   map[string]int  `json:"sources" yaml:"sources"` // candidates per container key
	InputSize int64           `json:"input_size" yaml:"input_size"`
	SHA256    string          `json:"sha256" yaml:"sha256"`
}

// DefaultOutputPath places the CSV next to the archive: <dir>/<stem>.csv.
func DefaultOutputPath(input string) string {
	stem := harfile.ArchiveStem(input)
	if stem == "" {
		base := filepath.Base(input)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(filepath.Dir(input), stem+".csv")
}

// Run loads opts.Input, extracts every listing record, and writes the CSV.
// The returned Result is non-nil whenever the archive was loaded, including
// when err is ErrNoRecordsFound.
func Run(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	input := harfile.SanitizePath(opts.Input)
	output := opts.Output
	if output == "" {
		output = DefaultOutputPath(input)
	}

	loaded, err := harfile.LoadFile(input)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded archive",
		"path", input,
		"size", humanize.Bytes(uint64(loaded.Size)),
		"exchanges", len(loaded.Archive.Exchanges),
	)

	schema := projector.NewSchema(opts.Config.ColumnSchema())
	result := &Result{
		Input:     input,
		Columns:   schema.Columns(),
		InputSize: loaded.Size,
		SHA256:    storage.ContentHash(loaded.Raw),
		Sources:   make(map[string]int),
	}

	ex := extractor.New(opts.Config, logger)
	var rows []projector.Row
	for c := range ex.Candidates(loaded.Archive, &result.Stats) {
		result.Sources[c.Source]++
		rec := flatten.Flatten(c.Record)
		if opts.Config.Scoring() {
			projector.Annotate(rec, opts.Config.ScoreColumn)
		}
		rows = append(rows, schema.Project(rec))
	}

	logger.Debug("Extraction finished",
		"relevant", result.Stats.Relevant,
		"consumable", result.Stats.Consumable,
		"malformed", result.Stats.Malformed,
		"candidates", result.Stats.Candidates,
	)

	if len(rows) == 0 {
		return result, fmt.Errorf("%w: %s", ErrNoRecordsFound, input)
	}

	if err := csvout.Write(output, result.Columns, rows); err != nil {
		return result, err
	}
	result.Output = output
	result.Rows = len(rows)

	logger.Info("Wrote csv", "path", output, "rows", result.Rows, "columns", len(result.Columns))
	return result, nil
}

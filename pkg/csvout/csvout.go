// Package csvout renders projected rows as a CSV file.
package csvout

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"github.com/dtnitsch/har2csv/pkg/projector"
	"github.com/dtnitsch/har2csv/pkg/storage"
)

var ErrOutputWrite = errors.New("output write failed")

// Encode renders the header and rows. Lines end in CRLF.
func Encode(columns []string, rows []projector.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(columns))
		}
		if err := w.Write(row.Texts()); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes rows and saves them to path. The parent directory is created
// when missing and an existing file is replaced only after encoding succeeds.
func Write(path string, columns []string, rows []projector.Row) error {
	data, err := Encode(columns, rows)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, err)
	}
	s := &storage.Storage{}
	if err := s.SaveFile(path, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, err)
	}
	return nil
}

// Package canvascsv reads Canvas "Student Analysis Report" CSV exports into
// an in-memory header + rows form. It knows nothing about quiz semantics;
// column interpretation happens in the caller.
package canvascsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyExport indicates a CSV with no header row.
var ErrEmptyExport = errors.New("canvascsv: export has no header row")

// Export holds a parsed CSV export.
type Export struct {
	Header []string
	Rows   [][]string
}

// Load reads and parses a CSV export from disk.
func Load(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("canvascsv: open export: %w", err)
	}
	defer f.Close()

	exp, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("canvascsv: parse %s: %w", path, err)
	}
	return exp, nil
}

// Parse reads a CSV export from a reader. Rows may be ragged: Canvas pads
// answer cells inconsistently, so short rows are accepted and missing cells
// read as empty via Cell.
func Parse(r io.Reader) (*Export, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyExport
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	return &Export{Header: header, Rows: records[1:]}, nil
}

// Column returns the index of the first header cell equal to name,
// case-insensitively, or -1.
func (e *Export) Column(name string) int {
	for i, h := range e.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Cell returns the cell at idx in row, or "" when the row is short or the
// index is out of range.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

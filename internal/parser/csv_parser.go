package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Load reads a comma-delimited text file with a header row into a Dataset.
// The file is decoded as UTF-8 first; if the bytes are not valid UTF-8 the
// regional Shift-JIS (cp932) encoding is tried before giving up. Any failure
// is reported as a *LoadError.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("file is empty")}
	}

	decoded := raw
	if !utf8.Valid(raw) {
		decoded, err = io.ReadAll(transform.NewReader(bytes.NewReader(raw), japanese.ShiftJIS.NewDecoder()))
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("not valid UTF-8 and Shift-JIS decoding failed: %w", err)}
		}
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // tolerate ragged rows; short rows become NaN cells

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("failed to parse delimited data: %w", err)}
	}
	if len(records) == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("no header row found")}
	}

	header := records[0]
	rows := len(records) - 1

	ds := &Dataset{
		Path:    path,
		columns: make([]column, 0, len(header)),
		index:   make(map[string]int, len(header)),
		rows:    rows,
	}
	for _, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := ds.index[name]; dup {
			continue
		}
		ds.index[name] = len(ds.columns)
		ds.columns = append(ds.columns, newColumn(name, rows))
	}

	for _, record := range records[1:] {
		for i := range ds.columns {
			cell := ""
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			value, parseErr := strconv.ParseFloat(cell, 64)
			ds.columns[i].append(cell, value, cell != "" && parseErr == nil)
		}
	}

	for i := range ds.columns {
		ds.columns[i].numeric = columnIsNumeric(&ds.columns[i])
	}
	return ds, nil
}

// columnIsNumeric mirrors the loose dtype inference of tabular readers: a
// column is numeric when at least one cell parsed and no non-blank cell
// failed to parse.
func columnIsNumeric(c *column) bool {
	parsed := 0
	for i, cell := range c.raw {
		if cell == "" {
			continue
		}
		if isNaN(c.values[i]) {
			return false
		}
		parsed++
	}
	return parsed > 0
}

func isNaN(v float64) bool { return v != v }

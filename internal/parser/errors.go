package parser

import (
	"fmt"
	"strings"
)

// LoadError means the dataset could not be read or parsed at all (missing
// file, corrupt content, both candidate encodings failed).
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load data file %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ColumnNotFoundError means the configured column names do not match the
// dataset. It carries both the missing names and the full available list so
// the caller can re-prompt for a column selection and retry the same call.
type ColumnNotFoundError struct {
	Path      string
	Missing   []string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("required columns not found in %s: %s (available: %s)",
		e.Path, strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

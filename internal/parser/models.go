package parser

import "math"

// Dataset is an immutable in-memory table parsed from a delimited text file.
// Every column keeps the raw cell strings and the parsed float values, with
// NaN standing in for blank or unparseable cells.
type Dataset struct {
	Path    string
	columns []column
	index   map[string]int
	rows    int
}

type column struct {
	name    string
	raw     []string
	values  []float64
	numeric bool
}

// ColumnNames returns the header names in file order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.name
	}
	return names
}

// Has reports whether a column with the given name exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Float returns a copy of the parsed float values for a column. Blank and
// unparseable cells are NaN. The second return is false if the column does
// not exist.
func (d *Dataset) Float(name string) ([]float64, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(d.columns[i].values))
	copy(out, d.columns[i].values)
	return out, true
}

// IsNumeric reports whether every non-blank cell of the column parsed as a
// float and at least one cell did.
func (d *Dataset) IsNumeric(name string) bool {
	i, ok := d.index[name]
	if !ok {
		return false
	}
	return d.columns[i].numeric
}

// NumRows returns the number of data rows (excluding the header).
func (d *Dataset) NumRows() int { return d.rows }

func newColumn(name string, rows int) column {
	return column{name: name, raw: make([]string, 0, rows), values: make([]float64, 0, rows)}
}

func (c *column) append(cell string, value float64, parsed bool) {
	c.raw = append(c.raw, cell)
	if parsed {
		c.values = append(c.values, value)
	} else {
		c.values = append(c.values, math.NaN())
	}
}

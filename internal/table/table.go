package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the reconciled type tag of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
	Text
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Text:
		return "text"
	}
	return "unknown"
}

// IsText reports whether values of this kind are compared as strings.
func (k Kind) IsText() bool {
	return k == Categorical || k == Text
}

// Column holds the cells of one named column.
// Num is populated only for numeric columns; NaN marks a missing cell.
type Column struct {
	Name string
	Kind Kind
	Raw  []string
	Num  []float64
}

// Table represents a loaded dataset (CSV file or database table)
type Table struct {
	Name    string
	Columns []*Column

	index map[string]int
}

// New builds a table from a header row and string records, inferring column kinds.
// Short records are padded with missing cells.
func New(name string, headers []string, rows [][]string) *Table {
	t := &Table{Name: name}
	for colIdx, header := range headers {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if colIdx < len(row) {
				raw[i] = strings.TrimSpace(row[colIdx])
			}
		}
		t.Columns = append(t.Columns, NewColumn(header, raw))
	}
	t.reindex()
	return t
}

// FromColumns assembles a table from already built columns.
func FromColumns(name string, cols []*Column) *Table {
	t := &Table{Name: name, Columns: cols}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c.Name]; !dup {
			t.index[c.Name] = i
		}
	}
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Raw)
}

// Headers returns column names in table order.
func (t *Table) Headers() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// WithColumn returns a shallow copy of t where the column of the same name is replaced.
func (t *Table) WithColumn(col *Column) *Table {
	cols := make([]*Column, len(t.Columns))
	copy(cols, t.Columns)
	if i, ok := t.index[col.Name]; ok {
		cols[i] = col
	}
	return FromColumns(t.Name, cols)
}

// NumericColumns returns names of numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Kind == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// Row returns the raw cells of row i.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Raw[i]
	}
	return row
}

// NewColumn infers the kind of raw cells and parses numeric values.
func NewColumn(name string, raw []string) *Column {
	col := &Column{Name: name, Raw: raw, Kind: InferKind(raw)}
	if col.Kind == Numeric {
		col.Num, _ = parseNumeric(raw)
	}
	return col
}

// Values returns the non-missing numeric values of the column.
func (c *Column) Values() []float64 {
	values := make([]float64, 0, len(c.Num))
	for _, v := range c.Num {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}

// Strings returns the non-missing cells as strings.
func (c *Column) Strings() []string {
	values := make([]string, 0, len(c.Raw))
	for _, v := range c.Raw {
		if !IsMissing(v) {
			values = append(values, v)
		}
	}
	return values
}

// Key returns a canonical representation of cell i used for exact row matching.
func (c *Column) Key(i int) string {
	if c.Kind == Numeric {
		v := c.Num[i]
		if math.IsNaN(v) {
			return missingKey
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if IsMissing(c.Raw[i]) {
		return missingKey
	}
	return c.Raw[i]
}

const missingKey = "\x00NA"

var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// IsMissing reports whether a cell denotes a missing value.
func IsMissing(s string) bool {
	return missingTokens[s]
}

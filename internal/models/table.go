package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Cell is a single value of a table. A cell that is not Valid is null.
type Cell struct {
	Value string
	Valid bool
}

// NullCell is the zero Cell.
var NullCell = Cell{}

// NewCell returns a valid cell holding v.
func NewCell(v string) Cell {
	return Cell{Value: v, Valid: true}
}

// MarshalJSON encodes null cells as JSON null and valid cells as strings.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON implements json.Unmarshaler interface
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = NullCell
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = NewCell(v)
	return nil
}

// Row is one record, aligned with Table.Columns.
type Row []Cell

// Table is an ordered set of rows sharing one header.
//
// Rows are treated as immutable once a table is built: filtering produces a
// new Table whose Rows slice references the same Row values.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`

	index map[string]int
}

// NewTable builds a table and indexes its columns.
func NewTable(columns []string, rows []Row) *Table {
	t := &Table{Columns: columns, Rows: rows}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, exists := t.index[c]; !exists {
			t.index[c] = i
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of a column in the header.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	if t.index == nil {
		for i, c := range t.Columns {
			if c == name {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Cell returns the cell of row i in the named column, or a null cell when the
// column does not exist.
func (t *Table) Cell(i int, column string) Cell {
	idx, ok := t.ColumnIndex(column)
	if !ok || i < 0 || i >= len(t.Rows) || idx >= len(t.Rows[i]) {
		return NullCell
	}
	return t.Rows[i][idx]
}

// Text returns the trimmed text of a cell. Null or blank cells report false.
func (t *Table) Text(i int, column string) (string, bool) {
	c := t.Cell(i, column)
	if !c.Valid {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	return v, v != ""
}

// Where returns a new table holding the rows for which keep returns true,
// in their original order.
func (t *Table) Where(keep func(i int) bool) *Table {
	rows := make([]Row, 0, len(t.Rows))
	for i, r := range t.Rows {
		if keep(i) {
			rows = append(rows, r)
		}
	}
	return &Table{Columns: t.Columns, Rows: rows, index: t.index}
}

// Schema resolves the semantic fields present in the table header.
func (t *Table) Schema() Schema {
	if t == nil {
		return NewSchema(nil)
	}
	return NewSchema(t.Columns)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	columns := append([]string(nil), t.Columns...)
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append(Row(nil), r...)
	}
	return NewTable(columns, rows)
}

// CellState describes how a cell converted to a number.
type CellState int

const (
	// CellOK means the cell held a usable number.
	CellOK CellState = iota
	// CellNull means the cell was null, blank or NaN.
	CellNull
	// CellInvalid means the cell held text that is not a number.
	CellInvalid
)

// Float parses the cell of row i in column as a float64.
func (t *Table) Float(i int, column string) (float64, CellState) {
	c := t.Cell(i, column)
	if !c.Valid {
		return 0, CellNull
	}
	return ParseFloat(c.Value)
}

// Int parses the cell of row i in column as an integer. Integral floats such
// as "2020.0" are accepted; fractional values are invalid.
func (t *Table) Int(i int, column string) (int, CellState) {
	c := t.Cell(i, column)
	if !c.Valid {
		return 0, CellNull
	}
	return ParseInt(c.Value)
}

// ParseFloat converts raw text to a finite float64.
func ParseFloat(raw string) (float64, CellState) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, CellNull
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, CellInvalid
	}
	if math.IsNaN(f) {
		return 0, CellNull
	}
	if math.IsInf(f, 0) {
		return 0, CellInvalid
	}
	return f, CellOK
}

// ParseInt converts raw text to an int, accepting integral floats.
func ParseInt(raw string) (int, CellState) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, CellOK
	}
	f, state := ParseFloat(s)
	if state != CellOK {
		return 0, state
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, CellInvalid
	}
	return int(f), CellOK
}

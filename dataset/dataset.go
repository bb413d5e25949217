//
// Copyright 2025 RNCHEN
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
//

// Package dataset provides the in-memory tabular model shared by all stages
// of the anonymization pipeline.
//
// A Table is a header of distinct column names plus an ordered sequence of
// rows. Every row has exactly as many fields as the header; this invariant is
// enforced on construction and on append. Column lookup by name goes through
// an index computed once per table.
package dataset

import (
	"fmt"
	"sort"
)

// Table holds a rectangular block of string-valued records. All fields are
// treated as text; numeric interpretation is left to the stages that need it.
type Table struct {
	header []string
	rows   [][]string
	index  map[string]int
}

// New returns an empty table with the given header. The header must be
// non-empty and must not contain duplicate column names.
func New(header []string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset: header must contain at least one column")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := index[name]; ok {
			return nil, fmt.Errorf("dataset: duplicate column name %q", name)
		}
		index[name] = i
	}
	return &Table{
		header: append([]string(nil), header...),
		index:  index,
	}, nil
}

// Append adds a row to the table. The row must have exactly one field per
// header column. The table stores its own copy of the row.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.header) {
		return fmt.Errorf("dataset: row has %d fields, header has %d columns", len(row), len(t.header))
	}
	t.rows = append(t.rows, append([]string(nil), row...))
	return nil
}

// Header returns a copy of the column names in order.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.header)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Column returns the index of the named column and whether it exists.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) []string {
	return append([]string(nil), t.rows[i]...)
}

// Value returns the cell at the given row and column.
func (t *Table) Value(row, col int) string {
	return t.rows[row][col]
}

// SetRow replaces the i-th row. The replacement must have exactly one field
// per header column; the table stores its own copy.
func (t *Table) SetRow(i int, row []string) error {
	if len(row) != len(t.header) {
		return fmt.Errorf("dataset: row has %d fields, header has %d columns", len(row), len(t.header))
	}
	t.rows[i] = append([]string(nil), row...)
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out, _ := New(t.header)
	for _, row := range t.rows {
		out.Append(row)
	}
	return out
}

// Empty returns a new table with the same header and no rows.
func (t *Table) Empty() *Table {
	out, _ := New(t.header)
	return out
}

// DistinctValues returns the distinct values of the given column in sorted
// order, so that consumers behave identically regardless of row order.
func (t *Table) DistinctValues(col int) []string {
	seen := make(map[string]bool)
	for _, row := range t.rows {
		seen[row[col]] = true
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package table provides an ordered-column tabular structure with strict
// one-to-one joins and CSV serialization, separating what columns exist from
// what row data holds.
package table

import (
	"sort"
	"strconv"
	"strings"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrDuplicateMergeKey = Error("duplicate merge key in one-to-one join")
	ErrUnknownColumn     = Error("unknown column")
	ErrBadColumnLength   = Error("column values don't match the number of rows")
	ErrBadKeyLength      = Error("join keys don't match the number of rows")
)

// Column describes one column: its internal name, its CSV display title, and
// its declared position.
type Column struct {
	Name  string
	Title string
	Order int
}

// Table holds rows of column-name keyed values under an explicit ordered
// column list.
type Table struct {
	cols []Column
	rows []map[string]string
}

// New returns a Table with the given columns and no rows.
func New(cols ...Column) *Table {
	return &Table{cols: cols}
}

// Columns returns our columns in their current order.
func (t *Table) Columns() []Column {
	return t.cols
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// AppendRow adds a row of column-name keyed values. Values for unknown
// columns are ignored at serialization time; missing values read as empty.
func (t *Table) AppendRow(values map[string]string) {
	t.rows = append(t.rows, values)
}

// Value returns the value of the named column in the given row.
func (t *Table) Value(row int, colName string) string {
	return t.rows[row][colName]
}

// SortColumnsByOrder stably sorts the columns by their declared Order.
func (t *Table) SortColumnsByOrder() {
	sort.SliceStable(t.cols, func(i, j int) bool {
		return t.cols[i].Order < t.cols[j].Order
	})
}

// AddColumn appends a column at the end of the column list with one value
// per existing row.
func (t *Table) AddColumn(col Column, values []string) error {
	if len(values) != len(t.rows) {
		return ErrBadColumnLength
	}

	t.cols = append(t.cols, col)

	for i, value := range values {
		t.rows[i][col.Name] = value
	}

	return nil
}

// DropColumn removes the named column and its values.
func (t *Table) DropColumn(name string) {
	cols := make([]Column, 0, len(t.cols))

	for _, col := range t.cols {
		if col.Name != name {
			cols = append(cols, col)
		}
	}

	t.cols = cols

	for _, row := range t.rows {
		delete(row, name)
	}
}

// MoveColumnFirst moves the named column to the front of the column list.
func (t *Table) MoveColumnFirst(name string) error {
	col, rest, err := t.takeColumn(name)
	if err != nil {
		return err
	}

	t.cols = append([]Column{col}, rest...)

	return nil
}

// MoveColumnLast moves the named column to the back of the column list.
func (t *Table) MoveColumnLast(name string) error {
	col, rest, err := t.takeColumn(name)
	if err != nil {
		return err
	}

	t.cols = append(rest, col)

	return nil
}

func (t *Table) takeColumn(name string) (Column, []Column, error) {
	rest := make([]Column, 0, len(t.cols))

	var found *Column

	for i, col := range t.cols {
		if col.Name == name {
			found = &t.cols[i]
		} else {
			rest = append(rest, col)
		}
	}

	if found == nil {
		return Column{}, nil, ErrUnknownColumn
	}

	return *found, rest, nil
}

// LeftJoinOneToOne joins the right table onto this one. Row i of this table
// joins the right row whose rightKey column equals leftKeys[i]; an empty
// left key, or a key with no right row, leaves that row's joined values
// empty rather than dropping the row.
//
// Cardinality is strictly validated: a duplicate key on either side is
// ErrDuplicateMergeKey, a data-integrity problem that must not be silently
// patched over. The right table's columns are appended in their declared
// order; its key column is not copied across.
func (t *Table) LeftJoinOneToOne(right *Table, leftKeys []string, rightKey string) error {
	if len(leftKeys) != len(t.rows) {
		return ErrBadKeyLength
	}

	rightRows, err := indexRows(right, rightKey)
	if err != nil {
		return err
	}

	if err := checkUniqueKeys(leftKeys); err != nil {
		return err
	}

	right.SortColumnsByOrder()

	joinCols := make([]Column, 0, len(right.cols))

	for _, col := range right.cols {
		if col.Name != rightKey {
			joinCols = append(joinCols, col)
		}
	}

	t.cols = append(t.cols, joinCols...)

	for i, row := range t.rows {
		rightRow := rightRows[leftKeys[i]]

		for _, col := range joinCols {
			row[col.Name] = rightRow[col.Name]
		}
	}

	return nil
}

func indexRows(t *Table, key string) (map[string]map[string]string, error) {
	index := make(map[string]map[string]string, len(t.rows))

	for _, row := range t.rows {
		keyValue := row[key]

		if _, exists := index[keyValue]; exists {
			return nil, ErrDuplicateMergeKey
		}

		index[keyValue] = row
	}

	return index, nil
}

func checkUniqueKeys(keys []string) error {
	seen := make(map[string]bool, len(keys))

	for _, key := range keys {
		if key == "" {
			continue
		}

		if seen[key] {
			return ErrDuplicateMergeKey
		}

		seen[key] = true
	}

	return nil
}

// CSV serializes the table: a header row of column titles, then one line per
// row in column order. All non-numeric values are quoted; empty and missing
// values serialize as an empty quoted string.
func (t *Table) CSV() string {
	var sb strings.Builder

	for i, col := range t.cols {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(quote(col.Title))
	}

	sb.WriteByte('\n')

	for _, row := range t.rows {
		for i, col := range t.cols {
			if i > 0 {
				sb.WriteByte(',')
			}

			sb.WriteString(formatValue(row[col.Name]))
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

func formatValue(value string) string {
	if value != "" {
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return value
		}
	}

	return quote(value)
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

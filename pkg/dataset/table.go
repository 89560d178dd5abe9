package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// leadingColumns are placed first, in this order, when a table is built from
// JSON records. Remaining keys follow in sorted order.
var leadingColumns = []string{"id", "name", "parent_id"}

// Table is an ordered set of string columns with one row per record.
// Every row has exactly len(Columns) cells; absent values are "".
type Table struct {
	Columns []string
	Rows    [][]string
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// FromRecords builds a table from decoded JSON objects.
// Numbers keep their literal text, nulls become "", nested values are
// re-encoded as JSON.
func FromRecords(records []map[string]json.RawMessage) (*Table, error) {
	seen := make(map[string]bool)
	var extra []string
	for _, rec := range records {
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				extra = append(extra, key)
			}
		}
	}

	var columns []string
	for _, c := range leadingColumns {
		if seen[c] {
			columns = append(columns, c)
			delete(seen, c)
		}
	}
	rest := extra[:0:0]
	for _, c := range extra {
		if seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	columns = append(columns, rest...)

	t := &Table{Columns: columns, Rows: make([][]string, 0, len(records))}
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, col := range columns {
			raw, ok := rec[col]
			if !ok {
				continue
			}
			cell, err := cellText(raw)
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", i, col, err)
			}
			row[j] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func cellText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		// numbers and booleans
		return string(raw), nil
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// DropColumn removes a column in place. Dropping a missing column is a no-op.
func (t *Table) DropColumn(name string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return
	}
	t.Columns = append(t.Columns[:idx:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:idx:idx], row[idx+1:]...)
	}
}

// Column returns a copy of the values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Unique returns the distinct values of the named column in order of first
// appearance.
func (t *Table) Unique(name string) ([]string, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// Concat stacks tables vertically. The result has the union of all columns
// in first-seen order; cells for columns a table lacks are "". Nil tables are
// ignored. Duplicate rows are kept.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	index := make(map[string]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, row := range t.Rows {
			merged := make([]string, len(out.Columns))
			for j, c := range t.Columns {
				merged[index[c]] = row[j]
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// Records returns the rows as column-keyed maps.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, t.Len())
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[c] = row[j]
		}
		out = append(out, rec)
	}
	return out
}

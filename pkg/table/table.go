// Package table provides the in-memory columnar representation shared by
// the loader, type optimizer, and quality analyzer. A table is an ordered
// sequence of named columns of equal length; the type optimizer rewrites
// column storage in place but never changes row count or alignment.
package table

import "fmt"

// ColumnarTable is an ordered set of equal-length named columns.
type ColumnarTable struct {
	cols []*Column
	rows int
}

// New validates the columnar invariants: all columns share one length and
// names are unique within the table.
func New(cols []*Column) (*ColumnarTable, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table must have at least one column")
	}
	rows := cols[0].Len()
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Len() != rows {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", c.Name(), c.Len(), rows)
		}
		if _, dup := seen[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %s", c.Name())
		}
		seen[c.Name()] = struct{}{}
	}
	return &ColumnarTable{cols: cols, rows: rows}, nil
}

func (t *ColumnarTable) RowCount() int    { return t.rows }
func (t *ColumnarTable) ColumnCount() int { return len(t.cols) }

// Columns returns the columns in original file order.
func (t *ColumnarTable) Columns() []*Column { return t.cols }

// Column returns the named column, or nil.
func (t *ColumnarTable) Column(name string) *Column {
	for _, c := range t.cols {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// EstimateRowBytes estimates the in-memory size of one row, used to bound
// persistence chunk sizes against available memory.
func (t *ColumnarTable) EstimateRowBytes() int64 {
	var total int64
	for _, c := range t.cols {
		total += c.estimateValueBytes()
	}
	if total < 1 {
		total = 1
	}
	return total
}

// EstimateTotalBytes estimates the in-memory size of the whole table.
func (t *ColumnarTable) EstimateTotalBytes() int64 {
	return t.EstimateRowBytes() * int64(t.rows)
}

package dataprep

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Table is a labeled matrix with one row per entity and one column per timestamp.
// Rows are positional. A Table is never modified in place; every selection returns a copy.
type Table struct {
	columns []time.Time
	data    *mat.Dense
}

// NewTable builds a table from row-major values.
func NewTable(columns []time.Time, rows [][]float64) (*Table, error) {
	if len(columns) == 0 || len(rows) == 0 {
		return nil, ErrNilTable
	}
	data := mat.NewDense(len(rows), len(columns), nil)
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("dataprep: row %d has %d values, want %d", i, len(row), len(columns))
		}
		data.SetRow(i, row)
	}
	return &Table{columns: append([]time.Time(nil), columns...), data: data}, nil
}

// NewTableFromDense wraps a dense matrix. The matrix is copied.
func NewTableFromDense(columns []time.Time, data mat.Matrix) (*Table, error) {
	if data == nil || len(columns) == 0 {
		return nil, ErrNilTable
	}
	r, c := data.Dims()
	if r == 0 || c != len(columns) {
		return nil, fmt.Errorf("dataprep: matrix is %dx%d with %d column labels", r, c, len(columns))
	}
	return &Table{columns: append([]time.Time(nil), columns...), data: mat.DenseCopyOf(data)}, nil
}

// Rows returns the number of entities.
func (t *Table) Rows() int {
	if t == nil || t.data == nil {
		return 0
	}
	r, _ := t.data.Dims()
	return r
}

// Cols returns the number of timestamps.
func (t *Table) Cols() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// Columns returns a copy of the column labels.
func (t *Table) Columns() []time.Time {
	if t == nil {
		return nil
	}
	return append([]time.Time(nil), t.columns...)
}

// Column returns the label of column j.
func (t *Table) Column(j int) time.Time { return t.columns[j] }

// At returns the value at row i, column j.
func (t *Table) At(i, j int) float64 { return t.data.At(i, j) }

// Row returns a copy of row i.
func (t *Table) Row(i int) []float64 {
	return mat.Row(nil, i, t.data)
}

// Dense returns a copy of the underlying matrix.
func (t *Table) Dense() *mat.Dense {
	if t == nil || t.data == nil {
		return nil
	}
	return mat.DenseCopyOf(t.data)
}

// Transpose returns a copy with timestamps as rows and entities as columns.
func (t *Table) Transpose() *mat.Dense {
	if t == nil || t.data == nil {
		return nil
	}
	return mat.DenseCopyOf(t.data.T())
}

// SelectRows returns a table holding the given rows in the given order.
// The result is indexed 0..len(idx)-1.
func (t *Table) SelectRows(idx []int) (*Table, error) {
	if t == nil || t.data == nil || len(idx) == 0 {
		return nil, ErrNilTable
	}
	rows := t.Rows()
	data := mat.NewDense(len(idx), len(t.columns), nil)
	for i, src := range idx {
		if src < 0 || src >= rows {
			return nil, fmt.Errorf("dataprep: row %d out of range [0,%d)", src, rows)
		}
		data.SetRow(i, t.data.RawRowView(src))
	}
	return &Table{columns: t.Columns(), data: data}, nil
}

// SelectColumns returns a table holding the given columns in the given order.
func (t *Table) SelectColumns(idx []int) (*Table, error) {
	if t == nil || t.data == nil || len(idx) == 0 {
		return nil, ErrNilTable
	}
	rows := t.Rows()
	columns := make([]time.Time, len(idx))
	data := mat.NewDense(rows, len(idx), nil)
	for j, src := range idx {
		if src < 0 || src >= len(t.columns) {
			return nil, fmt.Errorf("dataprep: column %d out of range [0,%d)", src, len(t.columns))
		}
		columns[j] = t.columns[src]
		for i := 0; i < rows; i++ {
			data.Set(i, j, t.data.At(i, src))
		}
	}
	return &Table{columns: columns, data: data}, nil
}

// ZeroRows returns a copy with every value of the given rows set to zero.
func (t *Table) ZeroRows(idx []int) (*Table, error) {
	if t == nil || t.data == nil {
		return nil, ErrNilTable
	}
	rows := t.Rows()
	data := mat.DenseCopyOf(t.data)
	zero := make([]float64, len(t.columns))
	for _, i := range idx {
		if i < 0 || i >= rows {
			return nil, fmt.Errorf("dataprep: row %d out of range [0,%d)", i, rows)
		}
		data.SetRow(i, zero)
	}
	return &Table{columns: t.Columns(), data: data}, nil
}

// IsZeroRow reports whether every value of row i is zero.
func (t *Table) IsZeroRow(i int) bool {
	for _, v := range t.data.RawRowView(i) {
		if v != 0 {
			return false
		}
	}
	return true
}

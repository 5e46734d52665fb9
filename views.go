package sparsego

import (
	"fmt"

	"github.com/hupe1980/sparsego/pattern"
)

// View is a structure-and-value mutable view of a Matrix. It can insert,
// remove and overwrite entries but carries no ownership operations (no
// resize, clone, move or close). It shares the matrix's buffers and must
// not outlive them.
type View[V any] struct {
	m *Matrix[V]
}

// SemiConstView is a view whose structure is frozen: existing values may be
// overwritten in place (accumulation into already-stored slots, for
// example) but no entry can be inserted or removed. Because no offsets or
// capacities ever change through it, concurrent use across goroutines
// restricted to disjoint rows is safe.
type SemiConstView[V any] struct {
	m *Matrix[V]
}

// ConstView is a fully read-only view. Concurrent use from any number of
// goroutines is safe as long as the underlying matrix is not mutated.
type ConstView[V any] struct {
	m *Matrix[V]
}

// View returns a structure-and-value mutable view of the matrix.
func (m *Matrix[V]) View() View[V] { return View[V]{m} }

// SemiConstView returns a view with frozen structure and writable values.
func (m *Matrix[V]) SemiConstView() SemiConstView[V] { return SemiConstView[V]{m} }

// ConstView returns a fully read-only view.
func (m *Matrix[V]) ConstView() ConstView[V] { return ConstView[V]{m} }

// PatternView returns a structure-only view, dropping the values entirely.
func (m *Matrix[V]) PatternView() pattern.View { return m.pat.View() }

// SemiConst narrows the view to frozen structure with writable values.
func (v View[V]) SemiConst() SemiConstView[V] { return SemiConstView[V]{v.m} }

// Const narrows the view to fully read-only.
func (v View[V]) Const() ConstView[V] { return ConstView[V]{v.m} }

// PatternView narrows the view to structure only.
func (v View[V]) PatternView() pattern.View { return v.m.PatternView() }

// NumRows returns the number of rows.
func (v View[V]) NumRows() int { return v.m.NumRows() }

// NumColumns returns the number of columns.
func (v View[V]) NumColumns() int { return v.m.NumColumns() }

// NumNonZeros returns the total number of stored entries.
func (v View[V]) NumNonZeros() int { return v.m.NumNonZeros() }

// RowNonZeros returns the number of stored entries in the given row.
func (v View[V]) RowNonZeros(row int) int { return v.m.RowNonZeros(row) }

// RowCapacity returns the number of slots reserved for the given row.
func (v View[V]) RowCapacity(row int) int { return v.m.RowCapacity(row) }

// Columns returns the live column indices of the given row. Do not modify.
func (v View[V]) Columns(row int) []uint32 { return v.m.Columns(row) }

// Offsets returns the row-offsets array. Do not modify.
func (v View[V]) Offsets() []int { return v.m.Offsets() }

// Entries returns the live values of the given row, read-write.
func (v View[V]) Entries(row int) []V { return v.m.Entries(row) }

// Entry returns the value stored at (row, col), if any.
func (v View[V]) Entry(row int, col uint32) (V, bool) { return v.m.Entry(row, col) }

// InsertNonZero stores v at (row, col); see Matrix.InsertNonZero.
func (v View[V]) InsertNonZero(row int, col uint32, val V) bool {
	return v.m.InsertNonZero(row, col, val)
}

// InsertNonZeros stores a batch of entries; see Matrix.InsertNonZeros.
func (v View[V]) InsertNonZeros(row int, cols []uint32, vals []V) int {
	return v.m.InsertNonZeros(row, cols, vals)
}

// InsertNonZerosSorted merges a strictly ascending batch; see
// Matrix.InsertNonZerosSorted.
func (v View[V]) InsertNonZerosSorted(row int, cols []uint32, vals []V) int {
	return v.m.InsertNonZerosSorted(row, cols, vals)
}

// RemoveNonZero deletes the entry at (row, col); see Matrix.RemoveNonZero.
func (v View[V]) RemoveNonZero(row int, col uint32) bool { return v.m.RemoveNonZero(row, col) }

// RemoveNonZeros deletes a batch of columns; see Matrix.RemoveNonZeros.
func (v View[V]) RemoveNonZeros(row int, cols []uint32) int { return v.m.RemoveNonZeros(row, cols) }

// RemoveNonZerosSorted deletes a strictly ascending batch; see
// Matrix.RemoveNonZerosSorted.
func (v View[V]) RemoveNonZerosSorted(row int, cols []uint32) int {
	return v.m.RemoveNonZerosSorted(row, cols)
}

// SetValues overwrites every stored entry in the given row with val.
func (v View[V]) SetValues(row int, val V) { v.m.SetValues(row, val) }

// Const narrows the view to fully read-only.
func (v SemiConstView[V]) Const() ConstView[V] { return ConstView[V]{v.m} }

// PatternView narrows the view to structure only.
func (v SemiConstView[V]) PatternView() pattern.View { return v.m.PatternView() }

// NumRows returns the number of rows.
func (v SemiConstView[V]) NumRows() int { return v.m.NumRows() }

// NumColumns returns the number of columns.
func (v SemiConstView[V]) NumColumns() int { return v.m.NumColumns() }

// NumNonZeros returns the total number of stored entries.
func (v SemiConstView[V]) NumNonZeros() int { return v.m.NumNonZeros() }

// RowNonZeros returns the number of stored entries in the given row.
func (v SemiConstView[V]) RowNonZeros(row int) int { return v.m.RowNonZeros(row) }

// Columns returns the live column indices of the given row. Do not modify.
func (v SemiConstView[V]) Columns(row int) []uint32 { return v.m.Columns(row) }

// Offsets returns the row-offsets array. Do not modify.
func (v SemiConstView[V]) Offsets() []int { return v.m.Offsets() }

// Entries returns the live values of the given row. Values may be
// overwritten in place; the structure cannot change through this view.
func (v SemiConstView[V]) Entries(row int) []V { return v.m.Entries(row) }

// Entry returns the value stored at (row, col), if any.
func (v SemiConstView[V]) Entry(row int, col uint32) (V, bool) { return v.m.Entry(row, col) }

// SetValues overwrites every stored entry in the given row with val.
func (v SemiConstView[V]) SetValues(row int, val V) { v.m.SetValues(row, val) }

// PatternView narrows the view to structure only.
func (v ConstView[V]) PatternView() pattern.View { return v.m.PatternView() }

// NumRows returns the number of rows.
func (v ConstView[V]) NumRows() int { return v.m.NumRows() }

// NumColumns returns the number of columns.
func (v ConstView[V]) NumColumns() int { return v.m.NumColumns() }

// NumNonZeros returns the total number of stored entries.
func (v ConstView[V]) NumNonZeros() int { return v.m.NumNonZeros() }

// RowNonZeros returns the number of stored entries in the given row.
func (v ConstView[V]) RowNonZeros(row int) int { return v.m.RowNonZeros(row) }

// Columns returns the live column indices of the given row. Do not modify.
func (v ConstView[V]) Columns(row int) []uint32 { return v.m.Columns(row) }

// Offsets returns the row-offsets array. Do not modify.
func (v ConstView[V]) Offsets() []int { return v.m.Offsets() }

// Entries returns the live values of the given row. The slice aliases the
// matrix's storage; treat it as read-only.
func (v ConstView[V]) Entries(row int) []V { return v.m.Entries(row) }

// Entry returns the value stored at (row, col), if any.
func (v ConstView[V]) Entry(row int, col uint32) (V, bool) { return v.m.Entry(row, col) }

// Numeric is the constraint for value types that support accumulation.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~complex64 | ~complex128
}

// AddToRow accumulates vals into the given row's stored entries, position
// by position. vals must have exactly RowNonZeros(row) elements; the
// sparsity structure is never changed. Safe to call concurrently for
// disjoint rows.
func AddToRow[V Numeric](v SemiConstView[V], row int, vals []V) {
	entries := v.Entries(row)
	if len(vals) != len(entries) {
		panic(fmt.Sprintf("sparsego: AddToRow length mismatch %d != %d", len(vals), len(entries)))
	}
	for i := range entries {
		entries[i] += vals[i]
	}
}

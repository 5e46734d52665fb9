package pattern

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/sparsego/internal/conv"
)

// RowBitmap returns the given row's column set as a roaring bitmap.
// The bitmap is an independent copy; mutating it does not affect the
// pattern.
func (p *Pattern) RowBitmap(row int) *roaring.Bitmap {
	bm := roaring.New()
	bm.AddMany(p.Columns(row))
	return bm
}

// OccupiedColumns returns the union of all rows' column sets: the columns
// that hold at least one entry anywhere in the matrix.
func (p *Pattern) OccupiedColumns() *roaring.Bitmap {
	bm := roaring.New()
	for r := 0; r < p.NumRows(); r++ {
		bm.AddMany(p.Columns(r))
	}
	return bm
}

// NumOccupiedColumns returns the number of distinct columns holding at
// least one entry.
func (p *Pattern) NumOccupiedColumns() int {
	n, _ := conv.Uint64ToInt(p.OccupiedColumns().GetCardinality()) // safe: cardinality <= NumColumns
	return n
}

// RowBitmap returns the given row's column set as a roaring bitmap.
func (v View) RowBitmap(row int) *roaring.Bitmap { return v.p.RowBitmap(row) }

// OccupiedColumns returns the union of all rows' column sets.
func (v View) OccupiedColumns() *roaring.Bitmap { return v.p.OccupiedColumns() }

// NumOccupiedColumns returns the number of distinct occupied columns.
func (v View) NumOccupiedColumns() int { return v.p.NumOccupiedColumns() }

// Overlaps reports whether any row shared by the two views holds a column
// in common, i.e. whether the sparsity patterns collide anywhere.
func (v View) Overlaps(other View) bool {
	rows := min(v.NumRows(), other.NumRows())
	for r := 0; r < rows; r++ {
		if v.RowBitmap(r).Intersects(other.RowBitmap(r)) {
			return true
		}
	}
	return false
}

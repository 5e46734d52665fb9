package pattern

// View is a read-only, zero-cost view of a Pattern. It shares the pattern's
// storage and must not outlive it; lifetime is the caller's responsibility.
// Concurrent use from any number of goroutines is safe as long as the
// underlying pattern is not mutated.
type View struct {
	p *Pattern
}

// NumRows returns the number of rows.
func (v View) NumRows() int { return v.p.NumRows() }

// NumColumns returns the number of columns.
func (v View) NumColumns() int { return v.p.NumColumns() }

// NumNonZeros returns the total number of live entries.
func (v View) NumNonZeros() int { return v.p.NumNonZeros() }

// RowNonZeros returns the number of live entries in the given row.
func (v View) RowNonZeros(row int) int { return v.p.RowNonZeros(row) }

// RowCapacity returns the number of slots reserved for the given row.
func (v View) RowCapacity(row int) int { return v.p.RowCapacity(row) }

// Empty reports whether the pattern holds no entries at all.
func (v View) Empty() bool { return v.p.Empty() }

// EmptyRow reports whether the given row holds no entries.
func (v View) EmptyRow(row int) bool { return v.p.EmptyRow(row) }

// Columns returns the live column indices of the given row, ascending.
// The returned slice aliases the pattern's storage; do not modify.
func (v View) Columns(row int) []uint32 { return v.p.Columns(row) }

// Offsets returns the row-offsets array. Do not modify.
func (v View) Offsets() []int { return v.p.Offsets() }

// ContainsColumn reports whether the given row holds the given column.
func (v View) ContainsColumn(row int, col uint32) bool { return v.p.ContainsColumn(row, col) }

// Name returns the diagnostic label of the underlying pattern.
func (v View) Name() string { return v.p.Name() }

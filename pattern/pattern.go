// Package pattern implements the structural half of a compressed-row-storage
// matrix: row offsets, row sizes and a sorted, duplicate-free column set per
// row, without any values. It is usable on its own wherever only the
// sparsity pattern matters, and it is the base layer of the value-bearing
// container in the root package.
//
// Value-bearing containers keep their value buffer congruent with the
// column buffer by passing a Mirror into the *With mutation methods; the
// structure-only entry points (Insert, Remove, ...) use a mirror that drops
// the value-side notifications.
package pattern

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sparsego/internal/conv"
	"github.com/hupe1980/sparsego/internal/mem"
	"github.com/hupe1980/sparsego/rowbuf"
	"github.com/hupe1980/sparsego/sortedset"
)

// DefaultGrowthFactor is the multiplier applied to the required slot count
// when a row grows on demand. Doubling amortizes repeated single insertions
// to O(1) each, for at most 2x slack per row.
const DefaultGrowthFactor = 2

// ErrMemoryLimit is the panic value raised when a configured hard memory
// limit refuses a slab growth.
var ErrMemoryLimit = errors.New("sparsego: memory limit exceeded")

// MemoryReserver tracks (and optionally caps) the bytes held by container
// slabs. resource.Controller satisfies it.
type MemoryReserver interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

// Mirror keeps a parallel per-row buffer congruent with the column buffer
// during structural edits. ShiftRun and WriteNew positions are relative to
// the row start, matching the slot layout of the columns.
type Mirror interface {
	// GrowRow grows the row to hold at least minCapacity slots, moving the
	// mirror buffer alongside the columns and rebinding any cached row
	// handles. Invoked only when the current capacity is insufficient.
	GrowRow(row, minCapacity int)

	// ShiftRun mirrors a block move of n slots from src to dst.
	ShiftRun(dst, src, n int)

	// WriteNew mirrors the write of the srcPos'th pending entry at dst.
	WriteNew(dst, srcPos int)
}

// Option configures a Pattern.
type Option func(*options)

type options struct {
	growthFactor int
	reserver     MemoryReserver
	name         string
}

// WithGrowthFactor sets the on-demand growth multiplier. Values below 2
// fall back to DefaultGrowthFactor.
func WithGrowthFactor(factor int) Option {
	return func(o *options) {
		o.growthFactor = factor
	}
}

// WithMemoryReserver registers a reserver that accounts for slab bytes.
func WithMemoryReserver(r MemoryReserver) Option {
	return func(o *options) {
		o.reserver = r
	}
}

// WithName sets the diagnostic label.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Pattern is an owning structural container: a resizable set of rows, each
// holding a strictly ascending, duplicate-free sequence of column indices
// with independently reserved capacity.
//
// Invariants (hold before and after every exported method):
//   - offsets monotone, offsets[numRows] == len(columns)
//   - each row's live columns strictly ascending, all < NumColumns()
//   - RowNonZeros(r) <= RowCapacity(r)
//
// Thread safety: concurrent reads are safe; any mutation requires external
// synchronization.
type Pattern struct {
	numCols      int
	layout       *rowbuf.Layout
	columns      []uint32
	growthFactor int
	name         string

	reserver      MemoryReserver
	bytesReserved int64
}

// New creates a pattern with the given shape and an initial per-row slot
// reservation. The capacity is clamped to numColumns, since a row can never
// hold more entries than there are columns.
func New(numRows, numColumns, initialRowCapacity int, opts ...Option) *Pattern {
	if numColumns < 0 {
		panic(fmt.Sprintf("pattern: negative column count %d", numColumns))
	}
	if _, err := conv.IntToUint32(numColumns); err != nil {
		panic(fmt.Sprintf("pattern: column count %d not representable as uint32", numColumns))
	}
	if initialRowCapacity > numColumns {
		initialRowCapacity = numColumns
	}

	o := options{growthFactor: DefaultGrowthFactor}
	for _, opt := range opts {
		opt(&o)
	}
	if o.growthFactor < 2 {
		o.growthFactor = DefaultGrowthFactor
	}

	p := &Pattern{
		numCols:      numColumns,
		layout:       rowbuf.New(numRows, initialRowCapacity),
		growthFactor: o.growthFactor,
		name:         o.name,
		reserver:     o.reserver,
	}
	p.columns = mem.AllocAlignedUint32(p.layout.TotalCapacity())
	p.account()
	return p
}

// NumRows returns the number of rows.
func (p *Pattern) NumRows() int { return p.layout.NumRows() }

// NumColumns returns the number of columns.
func (p *Pattern) NumColumns() int { return p.numCols }

// NumNonZeros returns the total number of live entries.
func (p *Pattern) NumNonZeros() int { return p.layout.TotalSize() }

// RowNonZeros returns the number of live entries in the given row.
func (p *Pattern) RowNonZeros(row int) int { return p.layout.RowSize(row) }

// RowCapacity returns the number of slots reserved for the given row.
func (p *Pattern) RowCapacity(row int) int { return p.layout.RowCapacity(row) }

// RowStart returns the slot index at which the given row begins. Valid
// until the next capacity-changing operation.
func (p *Pattern) RowStart(row int) int { return p.layout.RowStart(row) }

// TotalCapacity returns the total slot count across all rows.
func (p *Pattern) TotalCapacity() int { return p.layout.TotalCapacity() }

// Empty reports whether the pattern holds no entries at all.
func (p *Pattern) Empty() bool { return p.NumNonZeros() == 0 }

// EmptyRow reports whether the given row holds no entries.
func (p *Pattern) EmptyRow(row int) bool { return p.layout.RowSize(row) == 0 }

// Columns returns the live column indices of the given row, ascending.
// The returned slice aliases internal storage and is invalidated by any
// capacity-changing operation; do not modify.
func (p *Pattern) Columns(row int) []uint32 {
	start := p.layout.RowStart(row)
	end := start + p.layout.RowSize(row)
	return p.columns[start:end:end]
}

// Offsets returns the row-offsets array of length NumRows()+1. The returned
// slice aliases internal storage; do not modify.
func (p *Pattern) Offsets() []int { return p.layout.Offsets() }

// ContainsColumn reports whether the given row holds the given column.
func (p *Pattern) ContainsColumn(row int, col uint32) bool {
	return sortedset.Contains(p.Columns(row), col)
}

// Insert adds col to the given row's column set. Returns false if already
// present. Grows the row on demand.
func (p *Pattern) Insert(row int, col uint32) bool {
	return p.InsertWith(row, col, structMirror{p})
}

// InsertSorted merges the strictly ascending cols into the given row in a
// single pass. Returns the number of columns actually inserted.
func (p *Pattern) InsertSorted(row int, cols []uint32) int {
	return p.InsertSortedWith(row, cols, structMirror{p})
}

// Remove deletes col from the given row's column set. Returns false if not
// present.
func (p *Pattern) Remove(row int, col uint32) bool {
	return p.RemoveWith(row, col, structMirror{p})
}

// RemoveSorted deletes the strictly ascending cols from the given row in a
// single pass. Returns the number of columns actually removed.
func (p *Pattern) RemoveSorted(row int, cols []uint32) int {
	return p.RemoveSortedWith(row, cols, structMirror{p})
}

// InsertWith is Insert with a caller-supplied mirror that keeps a parallel
// value buffer congruent with the row's columns.
func (p *Pattern) InsertWith(row int, col uint32, m Mirror) bool {
	p.checkRow(row)
	p.checkCol(col)

	size := p.layout.RowSize(row)
	if !sortedset.Insert(p.rowSlice(row), size, col, &bridge{p: p, row: row, m: m}) {
		return false
	}
	p.layout.SetRowSize(row, size+1)
	return true
}

// InsertSortedWith is InsertSorted with a caller-supplied mirror.
func (p *Pattern) InsertSortedWith(row int, cols []uint32, m Mirror) int {
	p.checkRow(row)
	if n := len(cols); n > 0 {
		p.checkCol(cols[n-1]) // cols ascending, checking the last covers all
	}

	size := p.layout.RowSize(row)
	n := sortedset.InsertSorted(p.rowSlice(row), size, cols, &bridge{p: p, row: row, m: m})
	p.layout.SetRowSize(row, size+n)
	return n
}

// RemoveWith is Remove with a caller-supplied mirror.
func (p *Pattern) RemoveWith(row int, col uint32, m Mirror) bool {
	p.checkRow(row)

	size := p.layout.RowSize(row)
	if !sortedset.Remove(p.rowSlice(row), size, col, m) {
		return false
	}
	p.layout.SetRowSize(row, size-1)
	return true
}

// RemoveSortedWith is RemoveSorted with a caller-supplied mirror.
func (p *Pattern) RemoveSortedWith(row int, cols []uint32, m Mirror) int {
	p.checkRow(row)

	size := p.layout.RowSize(row)
	n := sortedset.RemoveSorted(p.rowSlice(row), size, cols, m)
	p.layout.SetRowSize(row, size-n)
	return n
}

// SetRowCapacity sets the reserved capacity of a row, clamped to
// NumColumns(). Shrinking below the row's size truncates its live entries;
// callers that need the entries intact should reserve, not shrink. Any
// companion buffers are relocated alongside the columns.
func (p *Pattern) SetRowCapacity(row, newCapacity int, comps ...rowbuf.Companion) {
	p.checkRow(row)
	if newCapacity > p.numCols {
		newCapacity = p.numCols
	}
	p.layout.SetRowCapacity(row, newCapacity, p.withColumns(comps)...)
	p.account()
}

// Reserve ensures the slabs can hold at least nnz total entries without
// reallocating. Row boundaries are unchanged.
func (p *Pattern) Reserve(nnz int, comps ...rowbuf.Companion) {
	p.layout.Reserve(nnz, p.withColumns(comps)...)
	p.account()
}

// ReserveRow ensures the given row can hold at least nnz entries. No-op if
// the capacity is already sufficient.
func (p *Pattern) ReserveRow(row, nnz int, comps ...rowbuf.Companion) {
	if p.layout.RowCapacity(row) >= nnz {
		return
	}
	p.SetRowCapacity(row, nnz, comps...)
}

// Compress repacks every row so its capacity equals its size, leaving no
// slack between rows. Logical content is unchanged and no memory is freed.
func (p *Pattern) Compress(comps ...rowbuf.Companion) {
	p.layout.Compress(p.withColumns(comps)...)
	p.account()
}

// Resize changes the matrix dimensions. Surviving rows keep their content;
// appended rows start empty with the given capacity. Shrinking the column
// count does not purge now-out-of-range entries, which can leave rows whose
// stored columns exceed the new bound; callers reshaping from scratch
// should Clear first.
func (p *Pattern) Resize(numRows, numColumns, initialRowCapacity int, comps ...rowbuf.Companion) {
	if numColumns < 0 {
		panic(fmt.Sprintf("pattern: negative column count %d", numColumns))
	}
	if _, err := conv.IntToUint32(numColumns); err != nil {
		panic(fmt.Sprintf("pattern: column count %d not representable as uint32", numColumns))
	}
	if initialRowCapacity > numColumns {
		initialRowCapacity = numColumns
	}
	p.numCols = numColumns
	p.layout.Resize(numRows, initialRowCapacity, p.withColumns(comps)...)
	p.account()
}

// Clear empties every row. Capacities are unchanged.
func (p *Pattern) Clear() {
	for r := 0; r < p.layout.NumRows(); r++ {
		p.layout.SetRowSize(r, 0)
	}
}

// Clone returns a deep copy with independent storage. The copy reports its
// own bytes to the same reserver.
func (p *Pattern) Clone() *Pattern {
	c := &Pattern{
		numCols:      p.numCols,
		layout:       p.layout.Clone(),
		growthFactor: p.growthFactor,
		name:         p.name,
		reserver:     p.reserver,
	}
	c.columns = mem.AllocAlignedUint32(len(p.columns))
	copy(c.columns, p.columns)
	c.account()
	return c
}

// Close releases the reserved-memory accounting. The slabs themselves are
// reclaimed by the garbage collector.
func (p *Pattern) Close() error {
	if p.reserver != nil && p.bytesReserved > 0 {
		p.reserver.ReleaseMemory(p.bytesReserved)
		p.bytesReserved = 0
	}
	p.reserver = nil
	return nil
}

// SetName associates a diagnostic label with the pattern's buffers.
// It has no effect on logical content.
func (p *Pattern) SetName(name string) { p.name = name }

// Name returns the diagnostic label.
func (p *Pattern) Name() string { return p.name }

// MemoryFootprint returns the bytes currently held by the slabs.
func (p *Pattern) MemoryFootprint() int64 {
	offs := p.layout.Offsets()
	return int64(cap(offs))*8 + int64(p.layout.NumRows())*8 + int64(cap(p.columns))*4
}

func (p *Pattern) String() string {
	return fmt.Sprintf("Pattern{name: %q, rows: %d, cols: %d, nnz: %d, capacity: %d}",
		p.name, p.NumRows(), p.numCols, p.NumNonZeros(), p.TotalCapacity())
}

// View returns a read-only view sharing this pattern's storage.
func (p *Pattern) View() View { return View{p} }

// growRow applies the on-demand growth policy: capacity jumps to
// growthFactor times the required count, clamped to the column count.
func (p *Pattern) growRow(row, minCapacity int, comps ...rowbuf.Companion) {
	p.SetRowCapacity(row, p.growthFactor*minCapacity, comps...)
}

// rowSlice returns the row's slots at full capacity.
func (p *Pattern) rowSlice(row int) []uint32 {
	start := p.layout.RowStart(row)
	end := start + p.layout.RowCapacity(row)
	return p.columns[start:end:end]
}

func (p *Pattern) withColumns(comps []rowbuf.Companion) []rowbuf.Companion {
	all := make([]rowbuf.Companion, 0, len(comps)+1)
	all = append(all, columnsBuf{p})
	return append(all, comps...)
}

func (p *Pattern) account() {
	if p.reserver == nil {
		return
	}
	bytes := p.MemoryFootprint()
	delta := bytes - p.bytesReserved
	switch {
	case delta > 0:
		if !p.reserver.TryAcquireMemory(delta) {
			panic(ErrMemoryLimit)
		}
	case delta < 0:
		p.reserver.ReleaseMemory(-delta)
	}
	p.bytesReserved = bytes
}

func (p *Pattern) checkRow(row int) {
	if row < 0 || row >= p.layout.NumRows() {
		panic(fmt.Sprintf("pattern: row %d out of range [0,%d)", row, p.layout.NumRows()))
	}
}

func (p *Pattern) checkCol(col uint32) {
	if uint64(col) >= uint64(p.numCols) {
		panic(fmt.Sprintf("pattern: column %d out of range [0,%d)", col, p.numCols))
	}
}

// columnsBuf adapts the aligned columns slab to rowbuf.Companion.
type columnsBuf struct {
	p *Pattern
}

func (b columnsBuf) Resize(n int) {
	s := b.p.columns
	if n <= cap(s) {
		b.p.columns = s[:n]
		return
	}
	grown := mem.AllocAlignedUint32(n)
	copy(grown, s)
	b.p.columns = grown
}

func (b columnsBuf) Move(dst, src, n int) {
	s := b.p.columns
	copy(s[dst:dst+n], s[src:src+n])
}

func (b columnsBuf) Reserve(n int) {
	s := b.p.columns
	if n <= cap(s) {
		return
	}
	grown := mem.AllocAlignedUint32(n)
	copy(grown, s)
	b.p.columns = grown[:len(s)]
}

// structMirror is the mirror for structure-only mutation: growth still runs
// the shared policy, value-side notifications go nowhere.
type structMirror struct {
	p *Pattern
}

func (m structMirror) GrowRow(row, minCapacity int) { m.p.growRow(row, minCapacity) }

func (m structMirror) ShiftRun(dst, src, n int) {}

func (m structMirror) WriteNew(dst, srcPos int) {}

// bridge adapts a Mirror to the sortedset callback protocol, adding the
// capacity-growth trigger that sortedset itself stays ignorant of.
type bridge struct {
	p   *Pattern
	row int
	m   Mirror
}

func (b *bridge) EnsureCapacity(nToAdd int) []uint32 {
	size := b.p.layout.RowSize(b.row)
	if size+nToAdd > b.p.layout.RowCapacity(b.row) {
		b.m.GrowRow(b.row, size+nToAdd)
	}
	return b.p.rowSlice(b.row)
}

func (b *bridge) ShiftRun(dst, src, n int) { b.m.ShiftRun(dst, src, n) }

func (b *bridge) WriteNew(dst, srcPos int) { b.m.WriteNew(dst, srcPos) }

package sparsego

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/sparsego/pattern"
	"github.com/hupe1980/sparsego/rowbuf"
	"github.com/hupe1980/sparsego/sortedset"
)

// Matrix is an owning, growable CRS sparse matrix with entries of type V.
//
// The structural buffers (offsets, sizes, columns) are owned by the
// embedded pattern; the value buffer is owned here and kept congruent with
// the column buffer slot for slot through the mirror callbacks threaded
// into every structural edit.
//
// Thread safety: concurrent reads are safe; any mutation requires external
// synchronization. See the package documentation for the full model.
type Matrix[V any] struct {
	pat    *pattern.Pattern
	values []V

	growthFactor int
	elemSize     int64

	reserver      MemoryReserver
	bytesReserved int64
}

// New creates a numRows x numColumns matrix with initialRowCapacity slots
// reserved per row, all rows empty. All arguments may be zero.
func New[V any](numRows, numColumns, initialRowCapacity int, opts ...Option) *Matrix[V] {
	cfg := config{growthFactor: DefaultGrowthFactor}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.growthFactor < 2 {
		cfg.growthFactor = DefaultGrowthFactor
	}

	m := &Matrix[V]{
		pat: pattern.New(numRows, numColumns, initialRowCapacity,
			pattern.WithGrowthFactor(cfg.growthFactor),
			pattern.WithMemoryReserver(cfg.reserver),
			pattern.WithName(cfg.name),
		),
		growthFactor: cfg.growthFactor,
		reserver:     cfg.reserver,
	}
	var zero V
	m.elemSize = int64(unsafe.Sizeof(zero))
	m.values = make([]V, m.pat.TotalCapacity())
	m.account()
	return m
}

// NumRows returns the number of rows.
func (m *Matrix[V]) NumRows() int { return m.pat.NumRows() }

// NumColumns returns the number of columns.
func (m *Matrix[V]) NumColumns() int { return m.pat.NumColumns() }

// NumNonZeros returns the total number of stored entries.
func (m *Matrix[V]) NumNonZeros() int { return m.pat.NumNonZeros() }

// RowNonZeros returns the number of stored entries in the given row.
func (m *Matrix[V]) RowNonZeros(row int) int { return m.pat.RowNonZeros(row) }

// RowCapacity returns the number of slots reserved for the given row.
func (m *Matrix[V]) RowCapacity(row int) int { return m.pat.RowCapacity(row) }

// Empty reports whether the matrix holds no entries at all.
func (m *Matrix[V]) Empty() bool { return m.pat.Empty() }

// EmptyRow reports whether the given row holds no entries.
func (m *Matrix[V]) EmptyRow(row int) bool { return m.pat.EmptyRow(row) }

// Columns returns the live column indices of the given row, ascending.
// The returned slice aliases internal storage and is invalidated by any
// capacity-changing operation; do not modify.
func (m *Matrix[V]) Columns(row int) []uint32 { return m.pat.Columns(row) }

// Offsets returns the row-offsets array of length NumRows()+1. Do not
// modify.
func (m *Matrix[V]) Offsets() []int { return m.pat.Offsets() }

// ContainsColumn reports whether the given row stores an entry at col.
func (m *Matrix[V]) ContainsColumn(row int, col uint32) bool {
	return m.pat.ContainsColumn(row, col)
}

// Entries returns the live values of the given row, positionally aligned
// with Columns(row). The returned slice aliases internal storage and is
// invalidated by any capacity-changing operation.
func (m *Matrix[V]) Entries(row int) []V {
	start := m.pat.RowStart(row)
	end := start + m.pat.RowNonZeros(row)
	return m.values[start:end:end]
}

// Entry returns the value stored at (row, col), if any.
func (m *Matrix[V]) Entry(row int, col uint32) (V, bool) {
	pos, found := sortedset.Find(m.Columns(row), col)
	if !found {
		var zero V
		return zero, false
	}
	return m.values[m.pat.RowStart(row)+pos], true
}

// InsertNonZero stores v at (row, col). Returns true iff the entry was
// absent before; inserting over an existing entry is a no-op that leaves
// the stored value untouched. The row grows on demand.
func (m *Matrix[V]) InsertNonZero(row int, col uint32, v V) bool {
	mir := valueMirror[V]{mx: m, src: []V{v}}
	mir.bind(row)
	return m.pat.InsertWith(row, col, &mir)
}

// InsertNonZeros stores each (cols[i], vals[i]) in the given row through
// the single-insert path and returns the number actually inserted
// (duplicates already present insert nothing). Which of several equal
// columns within one batch wins is unspecified; sort the batch with
// sortedset.DualSort and call InsertNonZerosSorted instead, which is also
// substantially faster.
func (m *Matrix[V]) InsertNonZeros(row int, cols []uint32, vals []V) int {
	checkLengths(len(cols), len(vals))
	n := 0
	for i := range cols {
		if m.InsertNonZero(row, cols[i], vals[i]) {
			n++
		}
	}
	return n
}

// InsertNonZerosSorted merges the strictly ascending cols and their values
// into the given row in a single pass, shifting existing entries at most
// once per contiguous run. Returns the number of entries actually inserted.
func (m *Matrix[V]) InsertNonZerosSorted(row int, cols []uint32, vals []V) int {
	checkLengths(len(cols), len(vals))
	mir := valueMirror[V]{mx: m, src: vals}
	mir.bind(row)
	return m.pat.InsertSortedWith(row, cols, &mir)
}

// RemoveNonZero deletes the entry at (row, col), compacting the row.
// Returns false if no such entry exists.
func (m *Matrix[V]) RemoveNonZero(row int, col uint32) bool {
	mir := valueMirror[V]{mx: m}
	mir.bind(row)
	return m.pat.RemoveWith(row, col, &mir)
}

// RemoveNonZeros deletes each column in cols from the given row and
// returns the number of entries actually removed.
func (m *Matrix[V]) RemoveNonZeros(row int, cols []uint32) int {
	n := 0
	for _, col := range cols {
		if m.RemoveNonZero(row, col) {
			n++
		}
	}
	return n
}

// RemoveNonZerosSorted deletes the strictly ascending cols from the given
// row in a single compacting pass. Returns the number of entries removed.
func (m *Matrix[V]) RemoveNonZerosSorted(row int, cols []uint32) int {
	mir := valueMirror[V]{mx: m}
	mir.bind(row)
	return m.pat.RemoveSortedWith(row, cols, &mir)
}

// SetValues overwrites every stored entry in the given row with v. The
// sparsity structure is unchanged.
func (m *Matrix[V]) SetValues(row int, v V) {
	entries := m.Entries(row)
	for i := range entries {
		entries[i] = v
	}
}

// Reserve ensures the matrix can hold at least nnz total entries without
// reallocating. Row boundaries are unchanged.
func (m *Matrix[V]) Reserve(nnz int) {
	m.pat.Reserve(nnz, m.valuesComp())
	m.account()
}

// ReserveRow ensures the given row can hold at least nnz entries, growing
// its capacity to exactly nnz if it is currently smaller.
func (m *Matrix[V]) ReserveRow(row, nnz int) {
	if m.pat.RowCapacity(row) >= nnz {
		return
	}
	m.SetRowCapacity(row, nnz)
}

// SetRowCapacity sets the reserved capacity of a row, clamped to
// NumColumns(). Shrinking below the row's current size truncates its live
// entries; callers that need the entries intact should reserve, not shrink.
func (m *Matrix[V]) SetRowCapacity(row, newCapacity int) {
	m.pat.SetRowCapacity(row, newCapacity, m.valuesComp())
	m.account()
}

// Compress repacks every row so its capacity equals its size, leaving no
// slack between rows. Content and order are unchanged, no memory is freed,
// and a second call changes nothing. Typically run before handing the
// matrix to a read-mostly consumer.
func (m *Matrix[V]) Compress() {
	m.pat.Compress(m.valuesComp())
	m.account()
}

// Resize changes the matrix dimensions. Surviving rows keep their content;
// appended rows start empty with initialRowCapacity slots. Shrinking the
// column count does not purge now-out-of-range entries, which can leave
// rows whose stored columns exceed the new bound; callers reshaping from
// scratch should Clear first.
func (m *Matrix[V]) Resize(numRows, numColumns, initialRowCapacity int) {
	m.pat.Resize(numRows, numColumns, initialRowCapacity, m.valuesComp())
	m.account()
}

// Clear empties every row. Capacities are unchanged.
func (m *Matrix[V]) Clear() { m.pat.Clear() }

// Clone returns a deep copy with independent storage: mutating the clone
// never affects the source. The clone reports its own bytes to the same
// reserver.
func (m *Matrix[V]) Clone() *Matrix[V] {
	c := &Matrix[V]{
		pat:          m.pat.Clone(),
		values:       make([]V, len(m.values)),
		growthFactor: m.growthFactor,
		elemSize:     m.elemSize,
		reserver:     m.reserver,
	}
	copy(c.values, m.values)
	c.account()
	return c
}

// Move transfers buffer ownership to a new matrix in O(1) and leaves the
// receiver logically empty (zero rows, zero entries) but reusable.
func (m *Matrix[V]) Move() *Matrix[V] {
	moved := &Matrix[V]{
		pat:           m.pat,
		values:        m.values,
		growthFactor:  m.growthFactor,
		elemSize:      m.elemSize,
		reserver:      m.reserver,
		bytesReserved: m.bytesReserved,
	}

	m.pat = pattern.New(0, 0, 0,
		pattern.WithGrowthFactor(m.growthFactor),
		pattern.WithMemoryReserver(m.reserver),
		pattern.WithName(m.pat.Name()),
	)
	m.values = nil
	m.bytesReserved = 0
	m.account()
	return moved
}

// Close releases the reserved-memory accounting. The matrix must not be
// used afterwards; the buffers themselves are reclaimed by the garbage
// collector.
func (m *Matrix[V]) Close() error {
	if m.reserver != nil && m.bytesReserved > 0 {
		m.reserver.ReleaseMemory(m.bytesReserved)
		m.bytesReserved = 0
	}
	m.reserver = nil
	return m.pat.Close()
}

// SetName associates a diagnostic label with the matrix's buffers, for
// instrumentation by external memory tooling. No effect on content.
func (m *Matrix[V]) SetName(name string) { m.pat.SetName(name) }

// Name returns the diagnostic label.
func (m *Matrix[V]) Name() string { return m.pat.Name() }

// MemoryUsage returns the bytes currently held by all four buffers.
func (m *Matrix[V]) MemoryUsage() int64 {
	return m.pat.MemoryFootprint() + int64(cap(m.values))*m.elemSize
}

func (m *Matrix[V]) String() string {
	return fmt.Sprintf("CRSMatrix{name: %q, rows: %d, cols: %d, nnz: %d, bytes: %d}",
		m.Name(), m.NumRows(), m.NumColumns(), m.NumNonZeros(), m.MemoryUsage())
}

func (m *Matrix[V]) valuesComp() rowbuf.Companion {
	return rowbuf.SliceCompanion[V]{Data: &m.values}
}

func (m *Matrix[V]) account() {
	if m.reserver == nil {
		return
	}
	bytes := int64(cap(m.values)) * m.elemSize
	delta := bytes - m.bytesReserved
	switch {
	case delta > 0:
		if !m.reserver.TryAcquireMemory(delta) {
			panic(ErrMemoryLimit)
		}
	case delta < 0:
		m.reserver.ReleaseMemory(-delta)
	}
	m.bytesReserved = bytes
}

func checkLengths(nCols, nVals int) {
	if nCols != nVals {
		panic(fmt.Sprintf("sparsego: cols/vals length mismatch %d != %d", nCols, nVals))
	}
}

// valueMirror bridges structural edits on a row's column buffer to the
// value buffer: growth triggers the doubling policy with the value buffer
// as companion, and every shift or write on the columns is replayed on the
// row's value slots.
type valueMirror[V any] struct {
	mx   *Matrix[V]
	row  int
	vals []V // row slots at full capacity
	src  []V // pending values, aligned with the pending columns
}

func (mir *valueMirror[V]) bind(row int) {
	mir.row = row
	mir.rebind()
}

func (mir *valueMirror[V]) rebind() {
	start := mir.mx.pat.RowStart(mir.row)
	end := start + mir.mx.pat.RowCapacity(mir.row)
	mir.vals = mir.mx.values[start:end:end]
}

// GrowRow runs the growth policy: capacity jumps to growthFactor times the
// required count (clamped to the column count inside SetRowCapacity), so
// repeated single insertions reallocate O(log n) times.
func (mir *valueMirror[V]) GrowRow(row, minCapacity int) {
	mir.mx.SetRowCapacity(row, mir.mx.growthFactor*minCapacity)
	mir.rebind()
}

func (mir *valueMirror[V]) ShiftRun(dst, src, n int) {
	copy(mir.vals[dst:dst+n], mir.vals[src:src+n])
}

func (mir *valueMirror[V]) WriteNew(dst, srcPos int) {
	mir.vals[dst] = mir.src[srcPos]
}

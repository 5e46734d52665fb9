// Package rowbuf implements the array-of-arrays buffer layout that backs the
// sparse containers: a single contiguous allocation partitioned into rows,
// where each row has an independent size and reserved capacity.
//
// The layout itself stores only offsets and sizes. The actual payload lives
// in one or more parallel data buffers that the caller registers per
// operation through the Companion interface; every structural change
// (capacity growth, compaction, reshaping) is applied to all companions so
// their slots stay congruent with each other.
//
// Thread safety: none. Structural mutation requires external coordination,
// identical to the containers built on top.
package rowbuf

import "fmt"

// Companion is a parallel data buffer kept slot-congruent with the layout.
// A layout operation that relocates row slots invokes the same relocation on
// every companion passed to it.
type Companion interface {
	// Resize sets the buffer length to n, preserving the prefix. Growing may
	// reallocate the backing storage.
	Resize(n int)

	// Move copies n slots from src to dst within the buffer. The ranges may
	// overlap in either direction.
	Move(dst, src, n int)

	// Reserve ensures the backing capacity is at least n slots without
	// changing the buffer length.
	Reserve(n int)
}

// SliceCompanion adapts a plain slice to the Companion interface. It is the
// default companion for value buffers whose element type carries pointers
// and therefore must stay on the regular Go heap.
type SliceCompanion[T any] struct {
	Data *[]T
}

// Resize sets the slice length to n, reallocating if n exceeds the capacity.
func (c SliceCompanion[T]) Resize(n int) {
	s := *c.Data
	if n <= cap(s) {
		*c.Data = s[:n]
		return
	}
	grown := make([]T, n)
	copy(grown, s)
	*c.Data = grown
}

// Move copies n slots from src to dst. Overlapping ranges are handled.
func (c SliceCompanion[T]) Move(dst, src, n int) {
	s := *c.Data
	copy(s[dst:dst+n], s[src:src+n])
}

// Reserve grows the backing capacity to at least n slots.
func (c SliceCompanion[T]) Reserve(n int) {
	s := *c.Data
	if n <= cap(s) {
		return
	}
	grown := make([]T, len(s), n)
	copy(grown, s)
	*c.Data = grown
}

// Layout partitions a linear buffer into rows with independent capacities.
//
// Invariants maintained by every method:
//   - len(offsets) == NumRows()+1, offsets[0] == 0, offsets monotone
//   - offsets[NumRows()] is the total slot count of every companion buffer
//   - 0 <= sizes[r] <= RowCapacity(r) for every row
type Layout struct {
	offsets []int
	sizes   []int
}

// New creates a layout with numRows rows, each with rowCapacity reserved
// slots and size zero.
func New(numRows, rowCapacity int) *Layout {
	if numRows < 0 {
		panic(fmt.Sprintf("rowbuf: negative row count %d", numRows))
	}
	if rowCapacity < 0 {
		panic(fmt.Sprintf("rowbuf: negative row capacity %d", rowCapacity))
	}
	offsets := make([]int, numRows+1)
	for i := 1; i <= numRows; i++ {
		offsets[i] = i * rowCapacity
	}
	return &Layout{
		offsets: offsets,
		sizes:   make([]int, numRows),
	}
}

// NumRows returns the number of rows.
func (l *Layout) NumRows() int {
	return len(l.sizes)
}

// RowStart returns the slot index at which the given row begins.
func (l *Layout) RowStart(row int) int {
	l.checkRow(row)
	return l.offsets[row]
}

// RowSize returns the number of live slots in the given row.
func (l *Layout) RowSize(row int) int {
	l.checkRow(row)
	return l.sizes[row]
}

// RowCapacity returns the number of slots reserved for the given row.
func (l *Layout) RowCapacity(row int) int {
	l.checkRow(row)
	return l.offsets[row+1] - l.offsets[row]
}

// TotalSize returns the number of live slots across all rows.
func (l *Layout) TotalSize() int {
	total := 0
	for _, s := range l.sizes {
		total += s
	}
	return total
}

// TotalCapacity returns the total slot count, equal to the length of every
// companion buffer.
func (l *Layout) TotalCapacity() int {
	return l.offsets[len(l.offsets)-1]
}

// Offsets returns the offsets array of length NumRows()+1. The returned
// slice aliases internal state; do not modify.
func (l *Layout) Offsets() []int {
	return l.offsets
}

// SetRowSize records the live slot count of a row after the caller has
// populated or vacated slots. n must not exceed the row capacity.
func (l *Layout) SetRowSize(row, n int) {
	l.checkRow(row)
	if n < 0 || n > l.RowCapacity(row) {
		panic(fmt.Sprintf("rowbuf: size %d out of range [0,%d] for row %d", n, l.RowCapacity(row), row))
	}
	l.sizes[row] = n
}

// SetRowCapacity changes the reserved capacity of a row, relocating the tail
// rows of every companion buffer to make (or reclaim) room. If the new
// capacity is below the row's size, the size is truncated.
func (l *Layout) SetRowCapacity(row, newCapacity int, comps ...Companion) {
	l.checkRow(row)
	if newCapacity < 0 {
		panic(fmt.Sprintf("rowbuf: negative capacity %d for row %d", newCapacity, row))
	}

	delta := newCapacity - l.RowCapacity(row)
	if delta == 0 {
		return
	}

	total := l.TotalCapacity()
	tailStart := l.offsets[row+1]
	tailLen := total - tailStart

	if delta > 0 {
		for _, c := range comps {
			c.Resize(total + delta)
			c.Move(tailStart+delta, tailStart, tailLen)
		}
	} else {
		for _, c := range comps {
			c.Move(tailStart+delta, tailStart, tailLen)
			c.Resize(total + delta)
		}
	}

	for r := row + 1; r < len(l.offsets); r++ {
		l.offsets[r] += delta
	}
	if l.sizes[row] > newCapacity {
		l.sizes[row] = newCapacity
	}
}

// Compress repacks every row so that its capacity equals its size, with no
// slack between rows. The companion buffers shrink in length but keep their
// backing allocation. Calling Compress twice in a row is a no-op.
func (l *Layout) Compress(comps ...Companion) {
	dst := 0
	for r := 0; r < len(l.sizes); r++ {
		start := l.offsets[r]
		n := l.sizes[r]
		if dst != start && n > 0 {
			for _, c := range comps {
				c.Move(dst, start, n)
			}
		}
		l.offsets[r] = dst
		dst += n
	}
	l.offsets[len(l.sizes)] = dst
	for _, c := range comps {
		c.Resize(dst)
	}
}

// Resize changes the number of rows. Existing rows up to the new count keep
// their content and capacity; appended rows start empty with rowCapacity
// reserved slots; removed rows are discarded along with their slots.
func (l *Layout) Resize(newRows, rowCapacity int, comps ...Companion) {
	if newRows < 0 {
		panic(fmt.Sprintf("rowbuf: negative row count %d", newRows))
	}
	if rowCapacity < 0 {
		panic(fmt.Sprintf("rowbuf: negative row capacity %d", rowCapacity))
	}

	old := l.NumRows()
	switch {
	case newRows < old:
		l.offsets = l.offsets[:newRows+1]
		l.sizes = l.sizes[:newRows]
	case newRows > old:
		total := l.offsets[old]
		for r := old; r < newRows; r++ {
			total += rowCapacity
			l.offsets = append(l.offsets, total)
			l.sizes = append(l.sizes, 0)
		}
	default:
		return
	}
	for _, c := range comps {
		c.Resize(l.TotalCapacity())
	}
}

// Reserve ensures the companion buffers can hold at least n total slots
// without reallocating. Row boundaries are unchanged.
func (l *Layout) Reserve(n int, comps ...Companion) {
	for _, c := range comps {
		c.Reserve(n)
	}
}

// Clone returns an independent copy of the layout.
func (l *Layout) Clone() *Layout {
	c := &Layout{
		offsets: make([]int, len(l.offsets)),
		sizes:   make([]int, len(l.sizes)),
	}
	copy(c.offsets, l.offsets)
	copy(c.sizes, l.sizes)
	return c
}

func (l *Layout) checkRow(row int) {
	if row < 0 || row >= len(l.sizes) {
		panic(fmt.Sprintf("rowbuf: row %d out of range [0,%d)", row, len(l.sizes)))
	}
}

package sparsego

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsego/resource"
	"github.com/hupe1980/sparsego/sortedset"
)

func TestNew(t *testing.T) {
	m := New[float64](3, 10, 2)

	assert.Equal(t, 3, m.NumRows())
	assert.Equal(t, 10, m.NumColumns())
	assert.Equal(t, 0, m.NumNonZeros())
	assert.True(t, m.Empty())
	for r := 0; r < 3; r++ {
		assert.Equal(t, 2, m.RowCapacity(r))
		assert.True(t, m.EmptyRow(r))
	}
}

func TestInsertNonZero(t *testing.T) {
	m := New[float64](2, 10, 2)

	require.True(t, m.InsertNonZero(0, 5, 5.5))
	require.True(t, m.InsertNonZero(0, 2, 2.2))

	assert.Equal(t, []uint32{2, 5}, m.Columns(0))
	assert.Equal(t, []float64{2.2, 5.5}, m.Entries(0))

	// Inserting over an existing entry is a no-op that keeps the old value.
	assert.False(t, m.InsertNonZero(0, 5, 999.0))
	v, ok := m.Entry(0, 5)
	require.True(t, ok)
	assert.Equal(t, 5.5, v)

	_, ok = m.Entry(0, 3)
	assert.False(t, ok)
	_, ok = m.Entry(1, 5)
	assert.False(t, ok)
}

// Assemble a small matrix, delete an entry, compress, and verify every
// intermediate observation.
func TestAssembleRemoveCompress(t *testing.T) {
	m := New[float64](3, 3, 0)

	require.True(t, m.InsertNonZero(0, 0, 1.0))
	require.True(t, m.InsertNonZero(0, 2, 3.0))
	require.True(t, m.InsertNonZero(1, 1, 5.0))
	assert.Equal(t, 3, m.NumNonZeros())

	require.True(t, m.RemoveNonZero(0, 0))
	assert.Equal(t, 2, m.NumNonZeros())
	assert.Equal(t, []uint32{2}, m.Columns(0))
	assert.Equal(t, []float64{3.0}, m.Entries(0))

	m.Compress()
	assert.Equal(t, 1, m.RowCapacity(0))
	assert.Equal(t, 2, m.NumNonZeros())
	assert.Equal(t, []float64{3.0}, m.Entries(0))
	assert.Equal(t, []uint32{1}, m.Columns(1))
	assert.Equal(t, []float64{5.0}, m.Entries(1))
	assert.True(t, m.EmptyRow(2))
	for r := 0; r < 3; r++ {
		assert.Equal(t, m.RowNonZeros(r), m.RowCapacity(r), "row %d", r)
	}
}

func TestInsertNonZerosSorted(t *testing.T) {
	m := New[int](1, 100, 2)
	m.InsertNonZero(0, 10, 100)
	m.InsertNonZero(0, 30, 300)

	n := m.InsertNonZerosSorted(0, []uint32{5, 10, 20, 40}, []int{50, -1, 200, 400})
	assert.Equal(t, 3, n)

	assert.Equal(t, []uint32{5, 10, 20, 30, 40}, m.Columns(0))
	assert.Equal(t, []int{50, 100, 200, 300, 400}, m.Entries(0))

	assert.Panics(t, func() { m.InsertNonZerosSorted(0, []uint32{1, 2}, []int{1}) })
	assert.Panics(t, func() { m.InsertNonZerosSorted(0, []uint32{2, 2}, []int{1, 1}) })
}

// A sorted batch insert must land in exactly the same state as inserting the
// entries one at a time in arbitrary order.
func TestSortedMatchesUnsorted(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 20; trial++ {
		cols := make([]uint32, 0, 40)
		seen := make(map[uint32]struct{})
		for len(cols) < 40 {
			c := uint32(rng.Intn(500))
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			cols = append(cols, c)
		}
		vals := make([]float64, len(cols))
		for i, c := range cols {
			vals[i] = float64(c) * 0.5
		}

		single := New[float64](1, 500, 0)
		batched := New[float64](1, 500, 0)

		for i := range cols {
			single.InsertNonZero(0, cols[i], vals[i])
		}

		sortedCols := append([]uint32(nil), cols...)
		sortedVals := append([]float64(nil), vals...)
		sortedset.DualSort(sortedCols, sortedVals)
		batched.InsertNonZerosSorted(0, sortedCols, sortedVals)

		require.Equal(t, single.Columns(0), batched.Columns(0), "trial %d", trial)
		require.Equal(t, single.Entries(0), batched.Entries(0), "trial %d", trial)
	}
}

func TestRemoveNonZeros(t *testing.T) {
	m := New[int](1, 20, 8)
	m.InsertNonZerosSorted(0, []uint32{1, 3, 5, 7, 9}, []int{10, 30, 50, 70, 90})

	n := m.RemoveNonZerosSorted(0, []uint32{0, 3, 9, 12})
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint32{1, 5, 7}, m.Columns(0))
	assert.Equal(t, []int{10, 50, 70}, m.Entries(0))

	n = m.RemoveNonZeros(0, []uint32{7, 1})
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint32{5}, m.Columns(0))
	assert.Equal(t, []int{50}, m.Entries(0))

	assert.False(t, m.RemoveNonZero(0, 105))
}

// Values must survive row relocations caused by another row growing.
func TestValuesSurviveNeighborGrowth(t *testing.T) {
	m := New[float64](3, 1000, 1)
	m.InsertNonZero(0, 7, 0.7)
	m.InsertNonZero(2, 9, 2.9)

	for c := uint32(0); c < 50; c++ {
		m.InsertNonZero(1, c, float64(c))
	}

	assert.Equal(t, []float64{0.7}, m.Entries(0))
	assert.Equal(t, []float64{2.9}, m.Entries(2))
	assert.Equal(t, 50, m.RowNonZeros(1))
	for i, c := range m.Columns(1) {
		assert.Equal(t, float64(c), m.Entries(1)[i])
	}
}

func TestSetValues(t *testing.T) {
	m := New[float64](2, 10, 4)
	m.InsertNonZerosSorted(0, []uint32{1, 4, 8}, []float64{1, 4, 8})

	m.SetValues(0, 0.0)

	assert.Equal(t, []float64{0, 0, 0}, m.Entries(0))
	assert.Equal(t, []uint32{1, 4, 8}, m.Columns(0), "structure unchanged")
	m.SetValues(1, 9.0) // empty row: no-op
	assert.True(t, m.EmptyRow(1))
}

func TestReserveRowKeepsContent(t *testing.T) {
	m := New[int](2, 100, 2)
	m.InsertNonZerosSorted(0, []uint32{3, 8}, []int{30, 80})

	m.ReserveRow(0, 50)
	assert.Equal(t, 50, m.RowCapacity(0))
	assert.Equal(t, []uint32{3, 8}, m.Columns(0))
	assert.Equal(t, []int{30, 80}, m.Entries(0))

	m.ReserveRow(0, 10)
	assert.Equal(t, 50, m.RowCapacity(0), "never shrinks")
}

func TestSetRowCapacityTruncates(t *testing.T) {
	m := New[int](1, 10, 4)
	m.InsertNonZerosSorted(0, []uint32{1, 2, 3}, []int{10, 20, 30})

	m.SetRowCapacity(0, 1)

	assert.Equal(t, []uint32{1}, m.Columns(0))
	assert.Equal(t, []int{10}, m.Entries(0))

	m.SetRowCapacity(0, 9999)
	assert.Equal(t, 10, m.RowCapacity(0), "clamped to column count")
}

func TestResize(t *testing.T) {
	m := New[float64](2, 10, 2)
	m.InsertNonZerosSorted(0, []uint32{3, 7}, []float64{0.3, 0.7})

	m.Resize(4, 20, 2)
	assert.Equal(t, 4, m.NumRows())
	assert.Equal(t, 20, m.NumColumns())
	assert.Equal(t, []float64{0.3, 0.7}, m.Entries(0))
	assert.True(t, m.EmptyRow(3))

	m.Resize(1, 20, 0)
	assert.Equal(t, 1, m.NumRows())
	assert.Equal(t, []float64{0.3, 0.7}, m.Entries(0))
}

func TestClear(t *testing.T) {
	m := New[int](2, 10, 4)
	m.InsertNonZerosSorted(0, []uint32{1, 2}, []int{10, 20})

	m.Clear()

	assert.True(t, m.Empty())
	assert.Equal(t, 4, m.RowCapacity(0))

	// The slots are reusable immediately.
	m.InsertNonZero(0, 5, 50)
	assert.Equal(t, []int{50}, m.Entries(0))
}

func TestClone(t *testing.T) {
	m := New[float64](2, 10, 2)
	m.InsertNonZero(0, 1, 1.1)

	c := m.Clone()
	c.InsertNonZero(0, 2, 2.2)
	c.SetValues(0, 0)

	assert.Equal(t, []float64{1.1}, m.Entries(0), "source unaffected")
	assert.Equal(t, []uint32{1, 2}, c.Columns(0))
}

func TestMove(t *testing.T) {
	m := New[float64](2, 10, 2)
	m.InsertNonZero(1, 4, 4.4)

	moved := m.Move()

	assert.Equal(t, 0, m.NumRows())
	assert.True(t, m.Empty())
	assert.Equal(t, []float64{4.4}, moved.Entries(1))
	assert.Equal(t, 2, moved.NumRows())

	// The drained source stays usable.
	m.Resize(1, 5, 1)
	assert.True(t, m.InsertNonZero(0, 0, 1.0))
}

func TestNameAndString(t *testing.T) {
	m := New[float64](1, 5, 0, WithName("stiffness"))

	assert.Equal(t, "stiffness", m.Name())
	assert.Contains(t, m.String(), `"stiffness"`)
	assert.Contains(t, m.String(), "CRSMatrix")

	m.SetName("mass")
	assert.Equal(t, "mass", m.Name())
}

func TestMemoryAccounting(t *testing.T) {
	ctrl := resource.NewController(resource.Config{})
	m := New[float64](4, 1000, 4, WithMemoryReserver(ctrl))

	require.Equal(t, m.MemoryUsage(), ctrl.MemoryUsage())

	for c := uint32(0); c < 200; c++ {
		m.InsertNonZero(2, c, float64(c))
	}
	assert.Equal(t, m.MemoryUsage(), ctrl.MemoryUsage(), "growth is accounted")

	c := m.Clone()
	assert.Equal(t, m.MemoryUsage()+c.MemoryUsage(), ctrl.MemoryUsage())

	require.NoError(t, c.Close())
	assert.Equal(t, m.MemoryUsage(), ctrl.MemoryUsage())
	require.NoError(t, m.Close())
	assert.Zero(t, ctrl.MemoryUsage())
}

func TestMemoryLimitPanics(t *testing.T) {
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 256})

	assert.PanicsWithValue(t, ErrMemoryLimit, func() {
		m := New[float64](1, 1_000_000, 0, WithMemoryReserver(ctrl))
		defer m.Close()
		for c := uint32(0); c < 100_000; c++ {
			m.InsertNonZero(0, c, 1.0)
		}
	})
}

func BenchmarkInsertNonZero(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	cols := make([]uint32, 1024)
	for i := range cols {
		cols[i] = uint32(rng.Intn(1 << 20))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := New[float64](1, 1<<20, 0)
		for _, c := range cols {
			m.InsertNonZero(0, c, 1.0)
		}
	}
}

func BenchmarkInsertNonZerosSorted(b *testing.B) {
	cols := make([]uint32, 1024)
	vals := make([]float64, 1024)
	for i := range cols {
		cols[i] = uint32(i * 7)
		vals[i] = float64(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := New[float64](1, 1<<20, 0)
		m.InsertNonZerosSorted(0, cols, vals)
	}
}

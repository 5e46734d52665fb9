// Package sortedset implements sorted-array set algorithms: binary-search
// lookup plus single and batched insertion/removal that preserve strict
// ascending order and uniqueness.
//
// The algorithms operate on the key buffer only. A caller that keeps a
// second buffer congruent with the keys (a value buffer paired slot-by-slot
// with a column buffer, for example) receives every structural edit through
// the Callbacks interface and mirrors it. A caller without a parallel buffer
// supplies callbacks whose write notifications do nothing.
package sortedset

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
)

// Callbacks receives structural-edit notifications during insertion so a
// parallel buffer can be kept congruent with the key buffer.
//
// All positions are relative to the start of the key buffer.
type Callbacks[K cmp.Ordered] interface {
	// EnsureCapacity is invoked once per insertion call, before any slot is
	// written, with the number of keys about to be added. The implementation
	// grows the key buffer if needed and returns it at full capacity,
	// possibly relocated.
	EnsureCapacity(nToAdd int) []K

	// ShiftRun is invoked after a contiguous run of n existing keys moved
	// from src to dst inside the key buffer. The ranges may overlap.
	ShiftRun(dst, src, n int)

	// WriteNew is invoked after the srcPos'th pending key was written into
	// slot dst of the key buffer.
	WriteNew(dst, srcPos int)
}

// RemoveCallbacks receives structural-edit notifications during removal.
// Removal never grows or writes new slots, so only run moves are reported.
type RemoveCallbacks interface {
	ShiftRun(dst, src, n int)
}

// Find returns the position of k in the sorted set and whether it is
// present. If absent, the position is where k would be inserted.
func Find[K cmp.Ordered](set []K, k K) (int, bool) {
	return slices.BinarySearch(set, k)
}

// Contains reports whether k is present in the sorted set.
func Contains[K cmp.Ordered](set []K, k K) bool {
	_, found := slices.BinarySearch(set, k)
	return found
}

// IsSortedUnique reports whether keys is strictly ascending.
func IsSortedUnique[K cmp.Ordered](keys []K) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			return false
		}
	}
	return true
}

// Insert adds k to the sorted set held in the first size slots of set.
// Returns false without mutating anything if k is already present.
// cb.EnsureCapacity is only invoked when an insertion actually happens.
func Insert[K cmp.Ordered](set []K, size int, k K, cb Callbacks[K]) bool {
	pos, found := slices.BinarySearch(set[:size], k)
	if found {
		return false
	}

	set = cb.EnsureCapacity(1)
	if n := size - pos; n > 0 {
		copy(set[pos+1:size+1], set[pos:size])
		cb.ShiftRun(pos+1, pos, n)
	}
	set[pos] = k
	cb.WriteNew(pos, 0)
	return true
}

// InsertSorted merges keys into the sorted set held in the first size slots
// of set, in a single backward pass that shifts each run of existing keys at
// most once. keys must be strictly ascending. Returns the number of keys
// actually inserted; keys already present are skipped.
func InsertSorted[K cmp.Ordered](set []K, size int, keys []K, cb Callbacks[K]) int {
	checkSortedUnique(keys)
	if len(keys) == 0 {
		return 0
	}

	// Count the keys that are not already present.
	nInsert := 0
	for i, j := 0, 0; j < len(keys); {
		switch {
		case i < size && set[i] < keys[j]:
			i++
		case i < size && set[i] == keys[j]:
			i++
			j++
		default:
			nInsert++
			j++
		}
	}
	if nInsert == 0 {
		return 0
	}

	set = cb.EnsureCapacity(nInsert)

	// Backward merge. dst always equals i plus the number of insertions
	// still pending among keys[:j+1], so when the pending keys run out the
	// remaining prefix is already in place.
	i := size - 1
	dst := size + nInsert - 1
	for j := len(keys) - 1; j >= 0; {
		switch {
		case i >= 0 && set[i] > keys[j]:
			runEnd := i
			for i >= 0 && set[i] > keys[j] {
				i--
			}
			n := runEnd - i
			copy(set[dst-n+1:dst+1], set[i+1:runEnd+1])
			cb.ShiftRun(dst-n+1, i+1, n)
			dst -= n
		case i >= 0 && set[i] == keys[j]:
			j--
		default:
			set[dst] = keys[j]
			cb.WriteNew(dst, j)
			dst--
			j--
		}
	}
	return nInsert
}

// Remove deletes k from the sorted set held in the first size slots of set,
// compacting the remaining keys. Returns false if k is not present.
func Remove[K cmp.Ordered](set []K, size int, k K, cb RemoveCallbacks) bool {
	pos, found := slices.BinarySearch(set[:size], k)
	if !found {
		return false
	}
	if n := size - pos - 1; n > 0 {
		copy(set[pos:pos+n], set[pos+1:size])
		cb.ShiftRun(pos, pos+1, n)
	}
	return true
}

// RemoveSorted deletes every key in keys from the sorted set held in the
// first size slots of set, compacting survivors in a single forward pass.
// keys must be strictly ascending. Returns the number of keys removed.
func RemoveSorted[K cmp.Ordered](set []K, size int, keys []K, cb RemoveCallbacks) int {
	checkSortedUnique(keys)
	if len(keys) == 0 || size == 0 {
		return 0
	}

	matches := make([]int, 0, min(len(keys), size))
	for i, j := 0, 0; i < size && j < len(keys); {
		switch {
		case set[i] < keys[j]:
			i++
		case set[i] > keys[j]:
			j++
		default:
			matches = append(matches, i)
			i++
			j++
		}
	}
	if len(matches) == 0 {
		return 0
	}

	// Shift each surviving run down by the number of removals before it.
	for idx, pos := range matches {
		start := pos + 1
		end := size
		if idx+1 < len(matches) {
			end = matches[idx+1]
		}
		if n := end - start; n > 0 {
			copy(set[pos-idx:pos-idx+n], set[start:end])
			cb.ShiftRun(pos-idx, start, n)
		}
	}
	return len(matches)
}

// DualSort sorts keys ascending while applying the identical permutation to
// values. Useful for turning an arbitrary batch into input acceptable to
// InsertSorted.
func DualSort[K cmp.Ordered, V any](keys []K, values []V) {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("sortedset: length mismatch %d != %d", len(keys), len(values)))
	}
	sort.Sort(&dualSorter[K, V]{keys: keys, values: values})
}

type dualSorter[K cmp.Ordered, V any] struct {
	keys   []K
	values []V
}

func (d *dualSorter[K, V]) Len() int { return len(d.keys) }

func (d *dualSorter[K, V]) Less(i, j int) bool { return d.keys[i] < d.keys[j] }

func (d *dualSorter[K, V]) Swap(i, j int) {
	d.keys[i], d.keys[j] = d.keys[j], d.keys[i]
	d.values[i], d.values[j] = d.values[j], d.values[i]
}

func checkSortedUnique[K cmp.Ordered](keys []K) {
	if !IsSortedUnique(keys) {
		panic("sortedset: keys must be strictly ascending")
	}
}

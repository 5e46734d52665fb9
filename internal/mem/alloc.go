// Package mem provides aligned slab allocation for the column buffers.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of allocated slabs (64 bytes, one cache
// line). Column buffers are handed to read-mostly consumers that may scan
// them with vector loads, so slabs start on a cache-line boundary.
const Alignment = 64

// AllocAligned allocates a byte slice of the given size whose first element
// sits on a 64-byte boundary.
//
// Slightly more memory than requested is allocated to make room for the
// alignment shift; the backing array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size == 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // required for alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocAlignedUint32 allocates a uint32 slice of the given size with 64-byte
// alignment.
func AllocAlignedUint32(size int) []uint32 {
	if size == 0 {
		return nil
	}

	byteSlice := AllocAligned(size * 4)

	// 64-byte alignment implies the 4-byte alignment required for uint32.
	ptr := unsafe.Pointer(&byteSlice[0])      //nolint:gosec // required for alignment
	return unsafe.Slice((*uint32)(ptr), size) //nolint:gosec // required for alignment
}

// Package sparsego implements a growable sparse matrix in compressed row
// storage (CRS): per row, a strictly ascending, duplicate-free set of
// column indices packed into one contiguous buffer, with a value buffer
// aligned to it slot for slot. Rows carry independent reserved capacity
// and grow on demand with an amortized doubling policy, so a matrix can be
// assembled incrementally without knowing its sparsity up front.
//
// The owning container is Matrix. The same storage is exposed through a
// lattice of progressively weaker views, so a matrix built on a control
// goroutine can be handed to consumers without copying:
//
//	Matrix  ->  View            structure and values mutable, no ownership ops
//	        ->  SemiConstView   values writable in place, structure frozen
//	        ->  ConstView       fully read-only
//	        ->  pattern.View    sparsity structure only, no values
//
// Conversions run top to bottom only and cost nothing; every view shares
// the matrix's buffers and must not outlive them.
//
// # Concurrency
//
// Structural mutation (insert, remove, resize, capacity changes) is
// unsynchronized and must run on a single goroutine at a time. Reads
// through ConstView are safe from any number of goroutines. Writing values
// in place through SemiConstView is safe across goroutines restricted to
// disjoint rows, since no offsets or capacities change; ForEachRow packages
// that access pattern.
package sparsego

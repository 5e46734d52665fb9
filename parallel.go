package sparsego

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sparsego/resource"
)

// ForEachRowOptions configures ForEachRow.
type ForEachRowOptions struct {
	// Parallelism is the maximum number of rows processed concurrently.
	// Defaults to GOMAXPROCS.
	Parallelism int

	// Controller, if set, gates each row behind a worker slot and throttles
	// by stored-entry count against the controller's throughput limit.
	Controller *resource.Controller
}

// ForEachRow invokes fn once per row, concurrently, over a semi-const view.
// Each invocation receives the row's columns and its writable value slots,
// so disjoint-row accumulation is safe without further coordination (the
// structure is frozen through the view, so no offsets move underneath the
// workers).
//
// The first error returned by fn cancels the remaining rows and is returned
// from ForEachRow, as is ctx cancellation.
func ForEachRow[V any](ctx context.Context, v SemiConstView[V], fn func(row int, cols []uint32, entries []V) error, optFns ...func(*ForEachRowOptions)) error {
	o := ForEachRowOptions{Parallelism: runtime.GOMAXPROCS(0)}
	for _, optFn := range optFns {
		optFn(&o)
	}
	if o.Parallelism < 1 {
		o.Parallelism = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Parallelism)

	for row := 0; row < v.NumRows(); row++ {
		row := row
		g.Go(func() error {
			if o.Controller != nil {
				if err := o.Controller.AcquireWorker(ctx); err != nil {
					return err
				}
				defer o.Controller.ReleaseWorker()

				if err := o.Controller.AcquireThroughput(ctx, v.RowNonZeros(row)); err != nil {
					return err
				}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			return fn(row, v.Columns(row), v.Entries(row))
		})
	}

	return g.Wait()
}

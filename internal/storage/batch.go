package storage

import (
	"fmt"
	"log"
	"time"
)

// BatchFn writes one batch of rows and returns the number written.
type BatchFn func(batch [][]any) (int64, error)

// InBatches splits rows into consecutive batches of at most size and invokes
// fn for each non-empty batch, returning the running total reported by fn and
// the first error. Backends whose insert statement has a placeholder or
// packet limit (MySQL multi-row INSERT) use it to keep statements bounded.
//
// When more than one batch is needed, a progress line with instantaneous
// rows/sec is logged per flush.
func InBatches(rows [][]any, size int, fn BatchFn) (int64, error) {
	if size <= 0 {
		return 0, fmt.Errorf("batch size must be > 0")
	}
	if fn == nil {
		return 0, fmt.Errorf("batch fn must not be nil")
	}

	var (
		total   int64
		batches int64
		start   = time.Now()
		lastTS  = start
		verbose = len(rows) > size
	)

	for off := 0; off < len(rows); off += size {
		end := off + size
		if end > len(rows) {
			end = len(rows)
		}

		n, err := fn(rows[off:end])
		total += n
		if err != nil {
			return total, err
		}

		batches++
		if verbose {
			now := time.Now()
			sinceLast := now.Sub(lastTS)
			rps := float64(0)
			if sinceLast > 0 {
				rps = float64(n) / sinceLast.Seconds()
			}
			log.Printf(
				"storage: batch #%d rows=%d total=%d rps=%.0f elapsed=%s",
				batches, n, total, rps, now.Sub(start).Truncate(time.Millisecond),
			)
			lastTS = now
		}
	}

	return total, nil
}

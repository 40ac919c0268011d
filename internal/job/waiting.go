package job

import (
	"context"
	"time"
)

// SleepWork returns a runnable that sleeps for the given duration before
// returning, standing in for a decode/raster body whose cost is dominated
// by wall-clock wait rather than CPU — used by BuildFromYAML's demo graphs
// so a submitted workload has an observable, tunable duration.
func SleepWork(ms int64) func(context.Context) error {
	if ms <= 0 {
		return func(context.Context) error { return nil }
	}

	remaining := time.Duration(ms) * time.Millisecond
	return func(ctx context.Context) error {
		start := time.Now()
		select {
		case <-ctx.Done():
			remaining -= time.Since(start)
			if remaining < 0 {
				remaining = 0
			}
			return ctx.Err()
		case <-time.After(remaining):
			return nil
		}
	}
}

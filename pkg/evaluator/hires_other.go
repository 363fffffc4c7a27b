//go:build !windows

package evaluator

import "time"

var hiresEpoch = time.Now()

// hiresNow returns a monotonic timestamp in nanoseconds, used for trace durations.
func hiresNow() int64 {
	return time.Since(hiresEpoch).Nanoseconds()
}

// hiresSinceMicros returns the microseconds elapsed since start.
func hiresSinceMicros(start int64) int64 {
	return (hiresNow() - start) / 1_000
}

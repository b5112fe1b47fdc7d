package timer

import "time"

// wallTickPeriod is the tick length in nanoseconds.
var wallTickPeriod = int64(TickFreq.Period())

// A WallCounter is a Source derived from the wall clock. Two processes on
// the same machine observe the same tick stream through it without sharing
// any state, which is what cross-process runs use. The 32-bit register wraps
// roughly every 43 seconds at TickFreq; Delta corrects a single wrap, far
// longer than any packet latency.
type WallCounter struct{}

// Read returns the current wall-clock tick, truncated to the register width.
// The division stays in integer math: epoch-scale nanosecond counts lose
// their low bits in a float64, which would quantize the counter.
func (WallCounter) Read() uint32 {
	return wallTicks(time.Now().UnixNano())
}

func wallTicks(ns int64) uint32 {
	return uint32(ns / wallTickPeriod)
}

// Package timer provides the free-running tick counter that both sides of the
// exchange read, together with the tick-frequency math used to convert raw
// tick deltas into wall-clock time.
package timer

import (
	"log"
	"time"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// TickFreq is the frequency of the shared counter. It is a protocol constant:
// both sides must use the same value when converting ticks to time.
const TickFreq = 100 * MHz

// Period returns the time between two consecutive ticks
func (f Freq) Period() time.Duration {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return time.Duration(float64(time.Second) / float64(f))
}

// Ticks converts a duration to the number of ticks that elapse in it.
func (f Freq) Ticks(d time.Duration) uint64 {
	return uint64(d.Seconds() * float64(f))
}

// Micros converts a tick count to microseconds.
func (f Freq) Micros(ticks uint32) float64 {
	return float64(ticks) / (float64(f) / 1e6)
}

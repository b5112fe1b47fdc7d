package timer

import (
	"errors"
	"sync/atomic"
	"time"
)

// MaxTick is the largest value the counter can hold before wrapping.
const MaxTick = uint32(0xFFFFFFFF)

// ErrNotAdvancing indicates that two reads separated by a delay returned the
// same counter value. Measurements taken against such a counter are
// meaningless, but the exchange itself still works, so callers should treat
// this as a warning rather than aborting.
var ErrNotAdvancing = errors.New("tick counter is not advancing")

// A Source is a free-running unsigned counter readable by both sides. It is
// monotonic except for wraparound at 32 bits.
type Source interface {
	Read() uint32
}

// Delta returns the number of ticks from earlier to later, correcting for a
// single counter wraparound. A measured latency is never negative.
func Delta(later, earlier uint32) uint32 {
	if later >= earlier {
		return later - earlier
	}
	return (MaxTick - earlier) + later + 1
}

// A Counter is a Source backed by the monotonic clock, scaled to TickFreq.
// Two Counters created from the same StartTime observe the same tick stream,
// which is how the two in-process sides share one counter.
type Counter struct {
	start time.Time
}

// NewCounter creates a Counter that starts ticking now.
func NewCounter() *Counter {
	return &Counter{start: time.Now()}
}

// NewCounterAt creates a Counter that counts ticks since the given instant.
func NewCounterAt(start time.Time) *Counter {
	return &Counter{start: start}
}

// Read returns the current counter value, truncated to the register width.
func (c *Counter) Read() uint32 {
	return uint32(TickFreq.Ticks(time.Since(c.start)))
}

// A Manual is a Source whose value is set explicitly. It exists for tests
// that need exact timestamps, including ones near the wraparound boundary.
type Manual struct {
	value uint32
}

// Read returns the current value.
func (m *Manual) Read() uint32 {
	return atomic.LoadUint32(&m.value)
}

// Set sets the value returned by subsequent reads.
func (m *Manual) Set(v uint32) {
	atomic.StoreUint32(&m.value, v)
}

// Advance adds n ticks to the current value, wrapping at 32 bits.
func (m *Manual) Advance(n uint32) {
	atomic.AddUint32(&m.value, n)
}

// Verify checks that a source is actually ticking by reading it twice across
// a small delay. A stuck counter is reported as ErrNotAdvancing.
func Verify(s Source) error {
	v1 := s.Read()
	time.Sleep(time.Millisecond)
	v2 := s.Read()

	if v1 == v2 {
		return ErrNotAdvancing
	}

	return nil
}

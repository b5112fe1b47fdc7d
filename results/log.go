// Package results implements the append-only measurement log that lives
// inside the shared region: a count word followed by fixed-size records. The
// receiver appends during the run; the sender drains after shutdown.
package results

import (
	"errors"
	"fmt"
	"log"

	"github.com/cohlab/cohmark/cache"
	"github.com/cohlab/cohmark/timer"
)

// ValidMarker distinguishes a populated record slot from zeroed memory. Any
// other value in the valid field means the slot cannot be trusted.
const ValidMarker = uint32(0xA5A5A5A5)

// Record sizes in the shared layout.
const (
	headerBytes = 4
	RecordBytes = 20
)

// ErrInvalidCount indicates that the log header holds a count that cannot be
// real: zero, or more than the log can hold. The whole run is reported as
// invalid and no records are returned.
var ErrInvalidCount = errors.New("invalid result count")

// A Record is one per-packet measurement.
type Record struct {
	PacketSize        uint32
	SenderTimestamp   uint32
	ReceiverTimestamp uint32
	DeltaTicks        uint32
	Valid             uint32
}

// DeltaMicros converts the record's tick delta to microseconds.
func (r Record) DeltaMicros() float64 {
	return timer.TickFreq.Micros(r.DeltaTicks)
}

// A Log is the receiver-side writer of the results area.
type Log struct {
	mem      cache.Space
	off      int
	capacity int

	appended uint32
	attempts uint64
}

// NewLog creates a writer over the results area at the given offset.
func NewLog(mem cache.Space, off, capacity int) *Log {
	if capacity <= 0 {
		panic(fmt.Sprintf("invalid result capacity %d", capacity))
	}
	if off < 0 || off+headerBytes+capacity*RecordBytes > mem.Size() {
		panic(fmt.Sprintf(
			"results area [%d, %d) does not fit region of size %d",
			off, off+headerBytes+capacity*RecordBytes, mem.Size()))
	}

	return &Log{mem: mem, off: off, capacity: capacity}
}

// Reset zeroes the results area and flushes it, so a drain of an empty run
// finds a zero count instead of stale records from a previous life of the
// memory.
func (l *Log) Reset() {
	size := headerBytes + l.capacity*RecordBytes
	l.mem.WriteAt(make([]byte, size), l.off)
	l.mem.FlushRange(l.off, size)
	l.appended = 0
	l.attempts = 0
}

// Append records one completed packet. The delta is wrap-corrected at append
// time. Appends past capacity are silently dropped: the attempt counter still
// advances but no slot is written.
func (l *Log) Append(packetSize, senderTS, receiverTS uint32) {
	l.attempts++

	if int(l.appended) >= l.capacity {
		return
	}

	base := l.off + headerBytes + int(l.appended)*RecordBytes
	l.mem.SetUint32(base, packetSize)
	l.mem.SetUint32(base+4, senderTS)
	l.mem.SetUint32(base+8, receiverTS)
	l.mem.SetUint32(base+12, timer.Delta(receiverTS, senderTS))
	l.mem.SetUint32(base+16, ValidMarker)

	l.appended++
}

// Finalize writes the count header and flushes everything the run produced,
// making the log readable by the other side.
func (l *Log) Finalize() {
	l.mem.SetUint32(l.off, l.appended)
	l.mem.FlushRange(l.off, headerBytes+int(l.appended)*RecordBytes)
	l.mem.Barrier()
}

// Appended returns the number of records actually written.
func (l *Log) Appended() uint32 {
	return l.appended
}

// Attempts returns the number of Append calls, including dropped ones.
func (l *Log) Attempts() uint64 {
	return l.attempts
}

// Drain reads the results area back through the given view. It validates the
// count, then iterates the records, skipping any whose marker does not match
// with a diagnostic rather than failing the batch. The skipped count is
// returned alongside the good records.
func Drain(mem cache.Space, off, capacity int) ([]Record, int, error) {
	mem.InvalidateRange(off, headerBytes)
	mem.Barrier()

	count := mem.Uint32(off)
	if count == 0 || int(count) > capacity {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	mem.InvalidateRange(off, headerBytes+int(count)*RecordBytes)
	mem.Barrier()

	records := make([]Record, 0, count)
	skipped := 0

	for i := 0; i < int(count); i++ {
		base := off + headerBytes + i*RecordBytes

		rec := Record{
			PacketSize:        mem.Uint32(base),
			SenderTimestamp:   mem.Uint32(base + 4),
			ReceiverTimestamp: mem.Uint32(base + 8),
			DeltaTicks:        mem.Uint32(base + 12),
			Valid:             mem.Uint32(base + 16),
		}

		if rec.Valid != ValidMarker {
			log.Printf("results: invalid marker 0x%08X at record %d, skipping",
				rec.Valid, i)
			skipped++
			continue
		}

		records = append(records, rec)
	}

	return records, skipped, nil
}

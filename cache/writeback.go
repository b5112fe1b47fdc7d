package cache

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/cohlab/cohmark/region"
)

// A Writeback is a Space that simulates a private write-back cache in front
// of the shared region. Reads and writes hit a line-granular shadow copy;
// only FlushRange moves dirty lines to the backing region and only
// InvalidateRange discards stale ones. A side that skips the maintenance
// discipline genuinely reads stale data, which is what makes the protocol's
// flush/invalidate points observable in software.
//
// Maintenance is line-granular: invalidating a 4-byte word drops the whole
// 64-byte line and flushing a line writes back all 64 bytes, exactly like the
// hardware it stands in for.
type Writeback struct {
	backing region.Region

	shadow []byte
	valid  []bool
	dirty  []bool

	lineCost time.Duration

	stats Stats
}

// Stats counts the maintenance work a Writeback has performed.
type Stats struct {
	Fetches       uint64
	Writebacks    uint64
	Invalidations uint64
}

// NewWriteback creates a write-back cached view over a region.
func NewWriteback(r region.Region) *Writeback {
	size := r.Size()
	if size%LineSize != 0 {
		panic(fmt.Sprintf("region size %d is not a multiple of the line size", size))
	}

	return &Writeback{
		backing: r,
		shadow:  make([]byte, size),
		valid:   make([]bool, size/LineSize),
		dirty:   make([]bool, size/LineSize),
	}
}

// WithLineCost sets a per-line busy-wait charged by maintenance operations,
// so that measured deltas scale with the touched range as they do on
// hardware.
func (c *Writeback) WithLineCost(d time.Duration) *Writeback {
	c.lineCost = d
	return c
}

// Size returns the size of the underlying region.
func (c *Writeback) Size() int {
	return c.backing.Size()
}

// Stats returns the maintenance counters accumulated so far.
func (c *Writeback) Stats() Stats {
	return c.stats
}

// Uint32 reads a word through the cache, fetching the line on a miss.
func (c *Writeback) Uint32(off int) uint32 {
	c.ensureValid(off / LineSize)
	return *c.shadowWord(off)
}

// SetUint32 writes a word into the cache, marking the line dirty. The write
// does not reach the backing region until the line is flushed.
func (c *Writeback) SetUint32(off int, v uint32) {
	line := off / LineSize
	c.ensureValid(line)
	*c.shadowWord(off) = v
	c.dirty[line] = true
}

// ReadAt copies bytes through the cache, fetching missing lines.
func (c *Writeback) ReadAt(p []byte, off int) {
	if len(p) == 0 {
		return
	}

	first, last := c.lineSpan(off, len(p))
	for line := first; line <= last; line++ {
		c.ensureValid(line)
	}

	copy(p, c.shadow[off:off+len(p)])
}

// WriteAt copies bytes into the cache, marking the touched lines dirty.
// Partially covered lines are fetched first so a later flush does not write
// back garbage for the untouched bytes.
func (c *Writeback) WriteAt(p []byte, off int) {
	if len(p) == 0 {
		return
	}

	first, last := c.lineSpan(off, len(p))
	for line := first; line <= last; line++ {
		c.ensureValid(line)
		c.dirty[line] = true
	}

	copy(c.shadow[off:off+len(p)], p)
}

// InvalidateRange drops every line overlapping the range without writing it
// back. The next access to those lines fetches from the backing region.
func (c *Writeback) InvalidateRange(off, n int) {
	if n <= 0 {
		return
	}

	first, last := c.lineSpan(off, n)
	for line := first; line <= last; line++ {
		c.valid[line] = false
		c.dirty[line] = false
		c.stats.Invalidations++
		c.chargeLine()
	}
}

// FlushRange writes every dirty line overlapping the range back to the
// backing region and marks it clean.
func (c *Writeback) FlushRange(off, n int) {
	if n <= 0 {
		return
	}

	first, last := c.lineSpan(off, n)
	for line := first; line <= last; line++ {
		if !c.valid[line] || !c.dirty[line] {
			continue
		}

		c.copyLine(line, c.backing.SetUint32, func(o int) uint32 { return *c.shadowWord(o) })
		c.dirty[line] = false
		c.stats.Writebacks++
		c.chargeLine()
	}
}

// Barrier completes outstanding memory operations. Maintenance in this model
// finishes synchronously and the word accessors on the backing region already
// fence, so there is nothing left to wait for.
func (c *Writeback) Barrier() {}

func (c *Writeback) ensureValid(line int) {
	if c.valid[line] {
		return
	}

	c.copyLine(line, func(o int, v uint32) { *c.shadowWord(o) = v }, c.backing.Uint32)
	c.valid[line] = true
	c.dirty[line] = false
	c.stats.Fetches++
}

// copyLine moves one line word by word so that control words never tear even
// while the other side is storing to them.
func (c *Writeback) copyLine(line int, store func(int, uint32), load func(int) uint32) {
	base := line * LineSize
	for o := base; o < base+LineSize; o += 4 {
		store(o, load(o))
	}
}

func (c *Writeback) shadowWord(off int) *uint32 {
	if off < 0 || off+4 > len(c.shadow) {
		panic(fmt.Sprintf("word offset %d out of range [0, %d)", off, len(c.shadow)))
	}
	if off%4 != 0 {
		panic(fmt.Sprintf("word offset %d is not 4-byte aligned", off))
	}

	return (*uint32)(unsafe.Pointer(&c.shadow[off]))
}

func (c *Writeback) lineSpan(off, n int) (first, last int) {
	if off < 0 || off+n > len(c.shadow) {
		panic(fmt.Sprintf("range [%d, %d) out of region of size %d",
			off, off+n, len(c.shadow)))
	}

	return off / LineSize, (off + n - 1) / LineSize
}

func (c *Writeback) chargeLine() {
	if c.lineCost == 0 {
		return
	}

	// Busy wait. A sleep would be far coarser than the modeled cost.
	start := time.Now()
	for time.Since(start) < c.lineCost {
	}
}

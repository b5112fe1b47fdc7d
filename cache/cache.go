// Package cache provides each side's view of the shared region together with
// the cache-management operations the exchange protocol issues. The protocol
// never touches the region directly; it goes through a Space, so that the
// same state machine runs unchanged over a hardware-coherent view (where
// maintenance is a no-op) and over a simulated write-back cache (where
// skipping a flush or an invalidate genuinely loses writes).
package cache

import (
	"github.com/cohlab/cohmark/region"
)

// LineSize is the cache line granularity of all maintenance operations.
const LineSize = 64

// A Space is one side's view of the shared region. Word access must be
// untearable. Maintenance operations act on byte ranges, rounded outward to
// line boundaries.
type Space interface {
	Size() int

	Uint32(off int) uint32
	SetUint32(off int, v uint32)
	ReadAt(p []byte, off int)
	WriteAt(p []byte, off int)

	// InvalidateRange discards any locally cached copy of the range without
	// writing it back, so the next read fetches from the backing region.
	InvalidateRange(off, n int)

	// FlushRange writes any locally dirty copy of the range back to the
	// backing region, making local writes visible to the other side.
	FlushRange(off, n int)

	// Barrier completes all outstanding memory operations. Issued after
	// maintenance and before timestamp capture.
	Barrier()
}

// A Coherent is a Space over an inherently coherent (or uncached) region.
// All maintenance operations are legal no-ops; the protocol must run
// correctly in this mode, which is exactly the property under test.
type Coherent struct {
	region.Region
}

// NewCoherent wraps a region in a coherent view.
func NewCoherent(r region.Region) *Coherent {
	return &Coherent{Region: r}
}

// InvalidateRange does nothing: reads always observe the backing region.
func (c *Coherent) InvalidateRange(off, n int) {}

// FlushRange does nothing: writes always reach the backing region.
func (c *Coherent) FlushRange(off, n int) {}

// Barrier does nothing: the atomic word accessors already order accesses.
func (c *Coherent) Barrier() {}

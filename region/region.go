// Package region provides the contiguous block of memory that the sender and
// the receiver share. The region itself enforces nothing about the exchange;
// it only guarantees that word access is atomic and untearable, so that
// visibility is decided by cache management and not by the compiler.
package region

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// A Region is a fixed-size block addressable by both sides. Word accessors
// are atomic; byte-range accessors are plain copies whose ordering is the
// caller's responsibility.
type Region interface {
	Size() int

	// Uint32 atomically reads the word at a 4-byte-aligned offset.
	Uint32(off int) uint32

	// SetUint32 atomically writes the word at a 4-byte-aligned offset.
	SetUint32(off int, v uint32)

	// ReadAt copies len(p) bytes starting at off into p.
	ReadAt(p []byte, off int)

	// WriteAt copies p into the region starting at off.
	WriteAt(p []byte, off int)

	Close() error
}

// bytesRegion implements word and range access over a byte slice. Both the
// heap-backed and the file-mapped regions embed it.
type bytesRegion struct {
	mem []byte
}

func (r *bytesRegion) Size() int {
	return len(r.mem)
}

func (r *bytesRegion) word(off int) *uint32 {
	if off < 0 || off+4 > len(r.mem) {
		panic(fmt.Sprintf("word offset %d out of range [0, %d)", off, len(r.mem)))
	}
	if off%4 != 0 {
		panic(fmt.Sprintf("word offset %d is not 4-byte aligned", off))
	}

	return (*uint32)(unsafe.Pointer(&r.mem[off]))
}

func (r *bytesRegion) Uint32(off int) uint32 {
	return atomic.LoadUint32(r.word(off))
}

func (r *bytesRegion) SetUint32(off int, v uint32) {
	atomic.StoreUint32(r.word(off), v)
}

func (r *bytesRegion) ReadAt(p []byte, off int) {
	if off < 0 || off+len(p) > len(r.mem) {
		panic(fmt.Sprintf("range [%d, %d) out of region of size %d",
			off, off+len(p), len(r.mem)))
	}

	copy(p, r.mem[off:off+len(p)])
}

func (r *bytesRegion) WriteAt(p []byte, off int) {
	if off < 0 || off+len(p) > len(r.mem) {
		panic(fmt.Sprintf("range [%d, %d) out of region of size %d",
			off, off+len(p), len(r.mem)))
	}

	copy(r.mem[off:off+len(p)], p)
}

// A HeapRegion is a Region backed by ordinary process memory. It is the
// backing store for loopback runs, where the two sides are goroutines rather
// than processes.
type HeapRegion struct {
	bytesRegion
}

// NewHeapRegion creates a zeroed heap-backed region of the given size.
func NewHeapRegion(size int) *HeapRegion {
	if size <= 0 || size%4 != 0 {
		panic(fmt.Sprintf("invalid region size %d", size))
	}

	return &HeapRegion{bytesRegion{mem: make([]byte, size)}}
}

// Close releases the region. Heap regions have nothing to release.
func (r *HeapRegion) Close() error {
	r.mem = nil
	return nil
}

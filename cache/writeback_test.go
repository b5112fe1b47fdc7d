package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cohlab/cohmark/cache"
	"github.com/cohlab/cohmark/region"
)

var _ = Describe("Writeback", func() {
	var (
		backing *region.HeapRegion
		a, b    *cache.Writeback
	)

	BeforeEach(func() {
		backing = region.NewHeapRegion(1024)
		a = cache.NewWriteback(backing)
		b = cache.NewWriteback(backing)
	})

	AfterEach(func() {
		backing.Close()
	})

	It("should not make writes visible before a flush", func() {
		b.Uint32(0) // b caches the line while it is still zero

		a.SetUint32(0, 0x0F0F0F0F)

		b.InvalidateRange(0, 4)
		Expect(b.Uint32(0)).To(Equal(uint32(0)))
	})

	It("should make writes visible after flush and invalidate", func() {
		b.Uint32(0)

		a.SetUint32(0, 0x0F0F0F0F)
		a.FlushRange(0, 4)

		b.InvalidateRange(0, 4)
		Expect(b.Uint32(0)).To(Equal(uint32(0x0F0F0F0F)))
	})

	It("should keep a stale copy until invalidated", func() {
		b.Uint32(0)

		a.SetUint32(0, 0x0F0F0F0F)
		a.FlushRange(0, 4)

		Expect(b.Uint32(0)).To(Equal(uint32(0)),
			"the cached line must shadow the backing region")
	})

	It("should fetch from backing on a cold miss", func() {
		a.SetUint32(128, 7)
		a.FlushRange(128, 4)

		Expect(b.Uint32(128)).To(Equal(uint32(7)))
	})

	It("should drop dirty data on invalidate", func() {
		a.SetUint32(0, 123)
		a.InvalidateRange(0, 4)
		a.FlushRange(0, 4)

		Expect(backing.Uint32(0)).To(Equal(uint32(0)))
	})

	It("should operate at line granularity", func() {
		b.Uint32(0)

		a.SetUint32(60, 9) // same line as offset 0
		a.FlushRange(60, 4)

		b.InvalidateRange(0, 4) // drops the whole line
		Expect(b.Uint32(60)).To(Equal(uint32(9)))
	})

	It("should round a range outward to line boundaries", func() {
		a.WriteAt([]byte{1, 2, 3}, 62) // straddles two lines
		a.FlushRange(62, 3)

		got := make([]byte, 3)
		backing.ReadAt(got, 62)
		Expect(got).To(Equal([]byte{1, 2, 3}))
	})

	It("should preserve untouched bytes of a partially written line", func() {
		a.SetUint32(0, 0xAABBCCDD)
		a.FlushRange(0, 4)

		b.WriteAt([]byte{0xFF}, 5)
		b.FlushRange(0, 64)

		b.InvalidateRange(0, 64)
		Expect(b.Uint32(0)).To(Equal(uint32(0xAABBCCDD)))
	})

	It("should treat empty ranges as no-ops", func() {
		a.InvalidateRange(0, 0)
		a.FlushRange(0, 0)

		Expect(a.Stats().Invalidations).To(Equal(uint64(0)))
		Expect(a.Stats().Writebacks).To(Equal(uint64(0)))
	})

	It("should count maintenance work", func() {
		a.SetUint32(0, 1)
		a.FlushRange(0, 4)
		a.InvalidateRange(0, 128)

		Expect(a.Stats().Fetches).To(Equal(uint64(1)))
		Expect(a.Stats().Writebacks).To(Equal(uint64(1)))
		Expect(a.Stats().Invalidations).To(Equal(uint64(2)))
	})
})

var _ = Describe("Coherent", func() {
	It("should pass every access straight through", func() {
		backing := region.NewHeapRegion(256)
		defer backing.Close()

		a := cache.NewCoherent(backing)
		b := cache.NewCoherent(backing)

		a.SetUint32(0, 42)
		Expect(b.Uint32(0)).To(Equal(uint32(42)),
			"maintenance is a no-op on a coherent view")

		a.InvalidateRange(0, 64)
		a.FlushRange(0, 64)
		a.Barrier()
		Expect(b.Uint32(0)).To(Equal(uint32(42)))
	})
})

package timer

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WallCounter", func() {
	It("should convert epoch-scale nanoseconds without losing ticks", func() {
		// A 2026-era UnixNano value. Float math at this magnitude drops
		// the low bits; the integer division must not.
		ns := int64(1788135510995029480)

		Expect(wallTicks(ns)).To(Equal(uint32(ns / 10)))
	})

	It("should advance by one tick per tick period", func() {
		ns := int64(1788135510995029480)

		Expect(wallTicks(ns+wallTickPeriod) - wallTicks(ns)).
			To(Equal(uint32(1)))
	})

	It("should observe increments finer than the float64 quantum", func() {
		c := WallCounter{}

		smallest := uint32(MaxTick)
		prev := c.Read()
		for i := 0; i < 100000; i++ {
			v := c.Read()
			if d := Delta(v, prev); d > 0 && d < smallest {
				smallest = d
			}
			prev = v
		}

		// Routing the epoch through float64 quantizes reads to 32-tick
		// steps; direct integer division resolves single ticks.
		Expect(smallest).To(BeNumerically("<", 32))
	})

	It("should pass the advancing check", func() {
		Expect(Verify(WallCounter{})).To(Succeed())
	})
})

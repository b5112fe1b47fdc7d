package timer

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Delta", func() {
	It("should subtract directly when there is no wraparound", func() {
		Expect(Delta(100, 40)).To(Equal(uint32(60)))
	})

	It("should return zero for equal timestamps", func() {
		Expect(Delta(7, 7)).To(Equal(uint32(0)))
	})

	It("should correct across the wraparound boundary", func() {
		Expect(Delta(1, MaxTick-2)).To(Equal(uint32(4)))
	})

	It("should handle a wrap landing exactly on zero", func() {
		Expect(Delta(0, MaxTick)).To(Equal(uint32(1)))
	})
})

var _ = Describe("Counter", func() {
	It("should advance over time", func() {
		c := NewCounter()
		v1 := c.Read()
		time.Sleep(2 * time.Millisecond)
		v2 := c.Read()

		Expect(Delta(v2, v1)).To(BeNumerically(">", 0))
	})

	It("should observe the same tick stream from a shared start time", func() {
		start := time.Now()
		a := NewCounterAt(start)
		b := NewCounterAt(start)

		va := a.Read()
		vb := b.Read()

		// Both counters read within a few microseconds of each other.
		Expect(Delta(vb, va)).To(BeNumerically("<", uint32(TickFreq.Ticks(10*time.Millisecond))))
	})

	It("should pass the advancing check", func() {
		Expect(Verify(NewCounter())).To(Succeed())
	})
})

var _ = Describe("Manual", func() {
	It("should report a stuck counter", func() {
		m := &Manual{}
		m.Set(42)

		Expect(Verify(m)).To(MatchError(ErrNotAdvancing))
	})

	It("should wrap when advancing past the register width", func() {
		m := &Manual{}
		m.Set(MaxTick)
		m.Advance(3)

		Expect(m.Read()).To(Equal(uint32(2)))
	})
})

var _ = Describe("Freq", func() {
	It("should get period", func() {
		Expect(TickFreq.Period()).To(Equal(10 * time.Nanosecond))
	})

	It("should convert ticks to microseconds", func() {
		Expect(TickFreq.Micros(250)).To(BeNumerically("~", 2.5, 1e-9))
	})

	It("should convert durations to ticks", func() {
		Expect(TickFreq.Ticks(time.Millisecond)).To(Equal(uint64(100000)))
	})
})

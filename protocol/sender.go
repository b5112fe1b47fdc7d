package protocol

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cohlab/cohmark/cache"
	"github.com/cohlab/cohmark/timer"
)

// Sender-side failures. Per-packet failures are non-fatal: the caller counts
// them and moves on, never retrying the same measurement window.
var (
	ErrPacketTooLarge  = errors.New("packet exceeds payload capacity")
	ErrAckTimeout      = errors.New("no ack within timeout")
	ErrReadyTimeout    = errors.New("receiver not ready within timeout")
	ErrShutdownTimeout = errors.New("receiver did not finish within timeout")
)

// SenderConfig carries the externally supplied timing parameters of the
// sending side. They are not protocol state.
type SenderConfig struct {
	// AckTimeout bounds the spin for an ack after a packet is announced.
	AckTimeout time.Duration

	// PollDelay is the pause between ack poll iterations.
	PollDelay time.Duration

	// ReadyTimeout bounds the wait for the receiver to come up.
	ReadyTimeout time.Duration
}

// DefaultSenderConfig returns the timing the original measurement campaign
// used: a 10 ms ack timeout with microsecond polls, and 30 s for the
// receiver to boot.
func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		AckTimeout:   10 * time.Millisecond,
		PollDelay:    time.Microsecond,
		ReadyTimeout: 30 * time.Second,
	}
}

// A Sender runs the producing side of the exchange: it owns the payload and
// metadata fields until it announces a packet with CmdStart, and it may only
// write the control word again after the receiver has handed ownership back
// with CmdAck.
type Sender struct {
	mem    cache.Space
	layout Layout
	clock  timer.Source
	cfg    SenderConfig

	sent   uint64
	failed uint64
}

// NewSender creates the sending side over a view of the shared region.
func NewSender(
	mem cache.Space,
	layout Layout,
	clock timer.Source,
	cfg SenderConfig,
) (*Sender, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	if mem.Size() < layout.RegionSize {
		return nil, fmt.Errorf("region size %d smaller than layout size %d",
			mem.Size(), layout.RegionSize)
	}

	return &Sender{mem: mem, layout: layout, clock: clock, cfg: cfg}, nil
}

// WaitReady polls the status word until the receiver reports StatusReady.
func (s *Sender) WaitReady() error {
	deadline := time.Now().Add(s.cfg.ReadyTimeout)

	for time.Now().Before(deadline) {
		s.mem.InvalidateRange(offStatus, 4)
		if s.mem.Uint32(offStatus) == StatusReady {
			return nil
		}

		time.Sleep(10 * time.Millisecond)
	}

	return ErrReadyTimeout
}

// Send transfers one packet through the region and waits for the ack.
//
// The order of operations is the protocol: payload first, then metadata, then
// the timestamp, then a flush and a barrier, and only then the control word
// that makes the packet visible. A timeout counts the packet as failed; the
// measurement window is not retried.
func (s *Sender) Send(payload []byte) error {
	size := len(payload)
	if size > s.layout.PayloadCapacity {
		return fmt.Errorf("%w: %d > %d",
			ErrPacketTooLarge, size, s.layout.PayloadCapacity)
	}

	if size > 0 {
		s.mem.WriteAt(payload, HeaderSize)
	}

	s.mem.SetUint32(offPacketSize, uint32(size))

	ts := s.clock.Read()
	s.mem.SetUint32(offSenderTS, ts)
	s.mem.SetUint32(offReceiverTS, 0)

	s.mem.FlushRange(0, HeaderSize+size)
	s.mem.Barrier()

	s.mem.SetUint32(offCommand, CmdStart)
	s.mem.FlushRange(offCommand, 4)

	if err := s.waitAck(); err != nil {
		// Withdraw the announcement. Leaving CmdStart in backing would
		// let the next Send's payload flush re-announce the old packet
		// to a late-waking receiver before the new payload lands.
		s.mem.SetUint32(offCommand, CmdIdle)
		s.mem.FlushRange(offCommand, 4)

		atomic.AddUint64(&s.failed, 1)
		return err
	}

	s.mem.SetUint32(offCommand, CmdIdle)
	s.mem.FlushRange(offCommand, 4)

	atomic.AddUint64(&s.sent, 1)

	return nil
}

func (s *Sender) waitAck() error {
	deadline := time.Now().Add(s.cfg.AckTimeout)

	for {
		s.mem.InvalidateRange(offCommand, 4)
		if s.mem.Uint32(offCommand) == CmdAck {
			return nil
		}

		if !time.Now().Before(deadline) {
			return ErrAckTimeout
		}

		time.Sleep(s.cfg.PollDelay)
	}
}

// Done announces the end of the run. The receiver finalizes its log and
// reports StatusDone.
func (s *Sender) Done() {
	s.mem.SetUint32(offCommand, CmdDone)
	s.mem.FlushRange(offCommand, 4)
	s.mem.Barrier()
}

// WaitShutdown polls the status word until the receiver has finalized its
// results after a Done.
func (s *Sender) WaitShutdown(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		s.mem.InvalidateRange(offStatus, 4)
		if s.mem.Uint32(offStatus) == StatusDone {
			return nil
		}

		time.Sleep(100 * time.Microsecond)
	}

	return ErrShutdownTimeout
}

// Sent returns the number of successfully acknowledged packets.
func (s *Sender) Sent() uint64 {
	return atomic.LoadUint64(&s.sent)
}

// Failed returns the number of packets that timed out waiting for an ack.
func (s *Sender) Failed() uint64 {
	return atomic.LoadUint64(&s.failed)
}

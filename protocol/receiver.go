package protocol

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/cohlab/cohmark/cache"
	"github.com/cohlab/cohmark/results"
	"github.com/cohlab/cohmark/timer"
)

// A Policy decides what the receiver does with the payload of each packet.
// The two policies are deliberately mutually exclusive: measuring pure cache
// management cost and actually touching the data never happen in the same
// run.
type Policy int

const (
	// MeasureInvalidation invalidates the payload range but never reads the
	// bytes, isolating the cache-management cost that hardware coherency
	// would eliminate from the cost of moving data.
	MeasureInvalidation Policy = iota

	// ChecksumPayload reads the payload and accumulates a checksum, the
	// functional variant that proves the bytes actually arrived.
	ChecksumPayload
)

// ReceiverConfig carries the externally supplied parameters of the receiving
// side.
type ReceiverConfig struct {
	// Policy selects the payload handling for the whole run.
	Policy Policy

	// PollDelay is the pause between control-word polls while idle.
	PollDelay time.Duration
}

// DefaultReceiverConfig returns an invalidation-measuring receiver with
// microsecond polls.
func DefaultReceiverConfig() ReceiverConfig {
	return ReceiverConfig{
		Policy:    MeasureInvalidation,
		PollDelay: time.Microsecond,
	}
}

// A Receiver runs the consuming side of the exchange. While the sender is
// live, the receiver writes only the control word (to ack), the status word
// and the receiver timestamp; the payload is read-only to it.
type Receiver struct {
	mem    cache.Space
	layout Layout
	clock  timer.Source
	cfg    ReceiverConfig
	log    *results.Log

	received  uint64
	malformed uint64
	checksum  uint32

	scratch []byte
}

// NewReceiver creates the receiving side over a view of the shared region.
func NewReceiver(
	mem cache.Space,
	layout Layout,
	clock timer.Source,
	cfg ReceiverConfig,
) (*Receiver, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	if mem.Size() < layout.RegionSize {
		return nil, fmt.Errorf("region size %d smaller than layout size %d",
			mem.Size(), layout.RegionSize)
	}

	r := &Receiver{
		mem:    mem,
		layout: layout,
		clock:  clock,
		cfg:    cfg,
		log:    results.NewLog(mem, layout.ResultsOffset, layout.ResultsCapacity),
	}

	if cfg.Policy == ChecksumPayload {
		r.scratch = make([]byte, layout.PayloadCapacity)
	}

	return r, nil
}

// Run resets the results log, reports ready, and polls the control word
// until the sender announces the end of the run. Cancellation exists only as
// the CmdDone command; there is no asynchronous interruption on the memory
// boundary this stands in for.
func (r *Receiver) Run() error {
	r.log.Reset()

	r.mem.SetUint32(offStatus, StatusReady)
	r.mem.FlushRange(0, HeaderSize)

	for {
		done := r.poll()
		if done {
			return nil
		}

		time.Sleep(r.cfg.PollDelay)
	}
}

// poll performs one iteration of the receive loop: invalidate the control
// word, look at it, and act. Observing CmdIdle, CmdAck or any unknown value
// never advances the state machine.
func (r *Receiver) poll() (done bool) {
	r.mem.InvalidateRange(offCommand, 4)

	switch r.mem.Uint32(offCommand) {
	case CmdDone:
		r.shutdown()
		return true
	case CmdStart:
		r.receivePacket()
		return false
	default:
		return false
	}
}

// receivePacket handles one announced packet: invalidate the metadata, read
// it, apply the payload policy, and only after every cache operation has
// completed capture the receive timestamp.
func (r *Receiver) receivePacket() {
	r.mem.SetUint32(offStatus, StatusBusy)
	r.mem.FlushRange(offStatus, 4)

	r.mem.InvalidateRange(0, r.layout.metadataSpan())

	size := r.mem.Uint32(offPacketSize)
	senderTS := r.mem.Uint32(offSenderTS)

	if int(size) > r.layout.PayloadCapacity {
		log.Printf("protocol: packet size %d exceeds capacity %d, dropping",
			size, r.layout.PayloadCapacity)
		atomic.AddUint64(&r.malformed, 1)
		r.ack()
		return
	}

	if size > 0 {
		r.mem.InvalidateRange(HeaderSize, int(size))

		if r.cfg.Policy == ChecksumPayload {
			p := r.scratch[:size]
			r.mem.ReadAt(p, HeaderSize)
			for _, b := range p {
				r.checksum += uint32(b)
			}
		}
	}

	r.mem.Barrier()

	receiverTS := r.clock.Read()
	r.mem.SetUint32(offReceiverTS, receiverTS)

	r.log.Append(size, senderTS, receiverTS)
	atomic.AddUint64(&r.received, 1)

	r.ack()
}

// ack hands ownership of the control word back to the sender.
func (r *Receiver) ack() {
	r.mem.SetUint32(offStatus, StatusReady)
	r.mem.SetUint32(offCommand, CmdAck)
	r.mem.FlushRange(0, HeaderSize)
}

// shutdown finalizes the results log and reports the terminal status.
func (r *Receiver) shutdown() {
	r.log.Finalize()

	r.mem.SetUint32(offStatus, StatusDone)
	r.mem.FlushRange(offStatus, 4)
}

// Received returns the number of packets processed so far.
func (r *Receiver) Received() uint64 {
	return atomic.LoadUint64(&r.received)
}

// Malformed returns the number of announced packets whose metadata could not
// be trusted.
func (r *Receiver) Malformed() uint64 {
	return atomic.LoadUint64(&r.malformed)
}

// Checksum returns the accumulated payload checksum. Only meaningful under
// ChecksumPayload.
func (r *Receiver) Checksum() uint32 {
	return r.checksum
}

// Appended returns the number of result records written so far.
func (r *Receiver) Appended() uint32 {
	return r.log.Appended()
}

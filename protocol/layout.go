// Package protocol implements the lock-free packet exchange between the
// sender side and the receiver side of a shared memory region. Coordination
// happens entirely through a control word that exactly one side may write in
// any given phase; ordering is established by explicit flush, invalidate and
// barrier calls on each side's view, never by an OS primitive.
package protocol

import "fmt"

// Control-word commands. The sender writes CmdStart and CmdDone; the
// receiver writes CmdAck. These values are the protocol vocabulary and must
// be identical on both sides.
const (
	CmdIdle  = uint32(0x00000000)
	CmdStart = uint32(0x0F0F0F0F)
	CmdAck   = uint32(0xF0F0F0F0)
	CmdDone  = uint32(0xFFFFFFFF)
)

// Receiver lifecycle states, owned by the receiver independently of the
// per-packet command.
const (
	StatusReady = uint32(0xAAAAAAAA)
	StatusBusy  = uint32(0xBBBBBBBB)
	StatusDone  = uint32(0xCCCCCCCC)
)

// Control block layout at offset 0 of the region. The field order and the
// total size are a bit-for-bit contract between the two sides.
const (
	offCommand    = 0
	offPacketSize = 4
	offSenderTS   = 8
	offReceiverTS = 12
	offStatus     = 16

	// HeaderSize is the padded control block size. The payload starts
	// immediately after.
	HeaderSize = 32
)

// metadataBytes is how many bytes the receiver invalidates before reading
// the packet metadata: the control block plus alignment slack, four cache
// lines worth.
const metadataBytes = 256

// A Layout parameterizes the geometry of a shared region: one protocol
// engine, two memory variants.
type Layout struct {
	// RegionSize is the total size of the shared region in bytes.
	RegionSize int

	// PayloadCapacity bounds packet_size. The payload area runs from
	// HeaderSize to HeaderSize+PayloadCapacity.
	PayloadCapacity int

	// ResultsOffset is where the results log starts within the region.
	ResultsOffset int

	// ResultsCapacity is the maximum number of result records.
	ResultsCapacity int
}

// DDRLayout describes the large DRAM-backed variant: an 8 MiB region with
// the results log at the 4 MiB mark.
func DDRLayout() Layout {
	return Layout{
		RegionSize:      8 << 20,
		PayloadCapacity: (4 << 20) - HeaderSize,
		ResultsOffset:   4 << 20,
		ResultsCapacity: 10000,
	}
}

// TCMLayout describes the small tightly-coupled-memory variant: a 64 KiB
// region, a 4 KiB payload area and the results log at 8 KiB.
func TCMLayout() Layout {
	return Layout{
		RegionSize:      64 << 10,
		PayloadCapacity: 4 << 10,
		ResultsOffset:   8 << 10,
		ResultsCapacity: 1000,
	}
}

// Validate checks that the layout is internally consistent.
func (l Layout) Validate() error {
	if l.RegionSize <= 0 || l.RegionSize%4 != 0 {
		return fmt.Errorf("invalid region size %d", l.RegionSize)
	}

	if l.PayloadCapacity < 0 {
		return fmt.Errorf("negative payload capacity %d", l.PayloadCapacity)
	}

	if HeaderSize+l.PayloadCapacity > l.ResultsOffset {
		return fmt.Errorf(
			"payload area [%d, %d) overlaps results area at %d",
			HeaderSize, HeaderSize+l.PayloadCapacity, l.ResultsOffset)
	}

	resultsEnd := l.ResultsOffset + 4 + l.ResultsCapacity*20
	if l.ResultsCapacity <= 0 || resultsEnd > l.RegionSize {
		return fmt.Errorf(
			"results area [%d, %d) does not fit region of size %d",
			l.ResultsOffset, resultsEnd, l.RegionSize)
	}

	return nil
}

func (l Layout) metadataSpan() int {
	if metadataBytes > l.ResultsOffset {
		return l.ResultsOffset
	}
	return metadataBytes
}

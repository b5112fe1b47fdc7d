package bench

import (
	"fmt"
	"time"

	"github.com/cohlab/cohmark/protocol"
	"github.com/cohlab/cohmark/region"
	"github.com/cohlab/cohmark/timer"
)

// openRetryDelay paces receiver-side attempts to open a segment that the
// sender has not created yet.
const openRetryDelay = 50 * time.Millisecond

// RunSenderMapped runs the sending side over a named shared-memory segment,
// the cross-process counterpart of Run. The segment is created here and
// removed on return; the receiving process attaches to it by name.
func (e *Experiment) RunSenderMapped(name string) (*Summary, error) {
	backing, err := region.CreateMapped(name, e.cfg.Layout.RegionSize)
	if err != nil {
		return nil, fmt.Errorf("creating segment %q: %w", name, err)
	}
	defer backing.Close()

	clock := timer.WallCounter{}

	senderCfg := protocol.DefaultSenderConfig()
	senderCfg.AckTimeout = e.cfg.AckTimeout

	snd, err := protocol.NewSender(
		e.sideView(backing), e.cfg.Layout, clock, senderCfg)
	if err != nil {
		return nil, err
	}

	if e.monitor != nil {
		e.monitor.Register(senderStats{snd})
	}

	if err := snd.WaitReady(); err != nil {
		return nil, err
	}

	archive, closeArchive, err := e.openArchive()
	if err != nil {
		return nil, err
	}
	if closeArchive != nil {
		defer closeArchive()
	}

	start := time.Now()

	for _, size := range e.cfg.Sizes {
		e.runStep(snd, size, archive)
	}

	snd.Done()
	if err := snd.WaitShutdown(shutdownTimeout); err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:   e.cfg.RunID,
		Sent:    snd.Sent(),
		Failed:  snd.Failed(),
		Elapsed: time.Since(start),
	}

	if err := e.drain(backing, summary, archive); err != nil {
		return nil, err
	}

	if err := e.exportCSV(summary); err != nil {
		return nil, err
	}

	return summary, nil
}

// RunReceiverMapped runs the receiving side over a named shared-memory
// segment, retrying the attach until the sender has created it. It returns
// when the sender announces the end of the run.
func (e *Experiment) RunReceiverMapped(
	name string,
	attachTimeout time.Duration,
) error {
	backing, err := attachMapped(name, attachTimeout)
	if err != nil {
		return err
	}
	defer backing.Close()

	rcvCfg := protocol.DefaultReceiverConfig()
	rcvCfg.Policy = e.cfg.Policy

	rcv, err := protocol.NewReceiver(
		e.sideView(backing), e.cfg.Layout, timer.WallCounter{}, rcvCfg)
	if err != nil {
		return err
	}

	if e.monitor != nil {
		e.monitor.Register(receiverStats{rcv})
	}

	return rcv.Run()
}

func attachMapped(
	name string,
	timeout time.Duration,
) (region.Region, error) {
	deadline := time.Now().Add(timeout)

	for {
		backing, err := region.OpenMapped(name)
		if err == nil {
			return backing, nil
		}

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("attaching to segment %q: %w", name, err)
		}

		time.Sleep(openRetryDelay)
	}
}

package bench

import (
	"fmt"
	"log"
	"time"

	"github.com/rs/xid"

	"github.com/cohlab/cohmark/cache"
	"github.com/cohlab/cohmark/datarecording"
	"github.com/cohlab/cohmark/monitoring"
	"github.com/cohlab/cohmark/protocol"
	"github.com/cohlab/cohmark/region"
	"github.com/cohlab/cohmark/results"
	"github.com/cohlab/cohmark/timer"
)

const shutdownTimeout = 5 * time.Second

// A Summary is the outcome of one benchmark run.
type Summary struct {
	RunID   string
	Sent    uint64
	Failed  uint64
	Drained int
	Skipped int
	Elapsed time.Duration

	// Records are the drained measurements, in append order.
	Records []results.Record
}

// MeanMicros returns the average measured latency in microseconds, or zero
// when nothing was drained.
func (s *Summary) MeanMicros() float64 {
	if len(s.Records) == 0 {
		return 0
	}

	var total float64
	for _, rec := range s.Records {
		total += rec.DeltaMicros()
	}

	return total / float64(len(s.Records))
}

// MeanMicrosBySize returns the average latency per packet size, in
// microseconds.
func (s *Summary) MeanMicrosBySize() map[uint32]float64 {
	totals := make(map[uint32]float64)
	counts := make(map[uint32]int)

	for _, rec := range s.Records {
		totals[rec.PacketSize] += rec.DeltaMicros()
		counts[rec.PacketSize]++
	}

	means := make(map[uint32]float64, len(totals))
	for size, total := range totals {
		means[size] = total / float64(counts[size])
	}

	return means
}

// An Experiment runs both benchmark sides in-process over one backing
// region, each side seeing the memory through its own cache view.
type Experiment struct {
	cfg     Config
	monitor *monitoring.Monitor
}

// NewExperiment creates an experiment from a validated configuration.
func NewExperiment(cfg Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid benchmark config: %w", err)
	}

	if cfg.RunID == "" {
		cfg.RunID = xid.New().String()
	}

	return &Experiment{cfg: cfg}, nil
}

// WithMonitor attaches a monitor that reports the run's progress.
func (e *Experiment) WithMonitor(m *monitoring.Monitor) *Experiment {
	e.monitor = m
	return e
}

func (e *Experiment) sideView(backing region.Region) cache.Space {
	if e.cfg.Coherent {
		return cache.NewCoherent(backing)
	}
	return cache.NewWriteback(backing)
}

// Run executes the sweep and returns its summary. Per-packet ack timeouts
// are counted and skipped; only setup failures abort the run.
func (e *Experiment) Run() (*Summary, error) {
	cfg := e.cfg

	backing := region.NewHeapRegion(cfg.Layout.RegionSize)
	defer backing.Close()

	return e.runOn(backing)
}

// runOn executes the sweep over an already created backing region.
func (e *Experiment) runOn(backing region.Region) (*Summary, error) {
	cfg := e.cfg

	clock := timer.NewCounter()
	if err := timer.Verify(clock); err != nil {
		log.Printf("bench: %s, latencies will be meaningless", err)
	}

	senderCfg := protocol.DefaultSenderConfig()
	senderCfg.AckTimeout = cfg.AckTimeout

	snd, err := protocol.NewSender(
		e.sideView(backing), cfg.Layout, clock, senderCfg)
	if err != nil {
		return nil, err
	}

	rcvCfg := protocol.DefaultReceiverConfig()
	rcvCfg.Policy = cfg.Policy

	rcv, err := protocol.NewReceiver(
		e.sideView(backing), cfg.Layout, clock, rcvCfg)
	if err != nil {
		return nil, err
	}

	if e.monitor != nil {
		e.monitor.Register(senderStats{snd})
		e.monitor.Register(receiverStats{rcv})
	}

	recvDone := make(chan error, 1)
	go func() { recvDone <- rcv.Run() }()

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

	for _, size := range cfg.Sizes {
		e.runStep(snd, size, archive)
	}

	snd.Done()
	if err := snd.WaitShutdown(shutdownTimeout); err != nil {
		return nil, err
	}
	<-recvDone

	summary := &Summary{
		RunID:   cfg.RunID,
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

// runStep sends one sweep step's worth of packets.
func (e *Experiment) runStep(
	snd *protocol.Sender,
	size int,
	archive *datarecording.Archive,
) {
	cfg := e.cfg

	var bar *monitoring.ProgressBar
	if e.monitor != nil {
		name := fmt.Sprintf("%s size %d", cfg.Variant, size)
		bar = e.monitor.CreateProgressBar(name, uint64(cfg.Iterations))
		defer e.monitor.CompleteProgressBar(bar)
	}

	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i & 0xFF)
	}

	sentBefore := snd.Sent()
	failedBefore := snd.Failed()
	stepStart := time.Now()

	for i := 0; i < cfg.Iterations; i++ {
		err := snd.Send(payload)
		if err != nil {
			log.Printf("bench: packet %d of size %d: %s", i, size, err)
		}

		if bar != nil {
			bar.Add(1)
		}

		if cfg.SettleDelay > 0 {
			time.Sleep(cfg.SettleDelay)
		}
	}

	if archive != nil {
		archive.RecordRun(datarecording.RunRow{
			RunID:         cfg.RunID,
			Layout:        string(cfg.Variant),
			Policy:        policyName(cfg.Policy),
			Coherent:      cfg.Coherent,
			PacketSize:    uint32(size),
			Iterations:    cfg.Iterations,
			Sent:          snd.Sent() - sentBefore,
			Failed:        snd.Failed() - failedBefore,
			ElapsedMicros: float64(time.Since(stepStart).Microseconds()),
		})
	}
}

func (e *Experiment) openArchive() (*datarecording.Archive, func(), error) {
	if e.cfg.DBPath == "" {
		return nil, nil, nil
	}

	recorder := datarecording.New(e.cfg.DBPath)
	archive := datarecording.NewArchive(recorder)

	exec := datarecording.NewExecRecorder(recorder)
	exec.Start()

	closeArchive := func() {
		exec.End()
		_ = recorder.Close()
	}

	return archive, closeArchive, nil
}

// drain pulls the finalized results log out of the region.
func (e *Experiment) drain(
	backing region.Region,
	summary *Summary,
	archive *datarecording.Archive,
) error {
	records, skipped, err := results.Drain(
		cache.NewCoherent(backing),
		e.cfg.Layout.ResultsOffset,
		e.cfg.Layout.ResultsCapacity,
	)
	if err != nil {
		return fmt.Errorf("draining results: %w", err)
	}

	summary.Records = records
	summary.Drained = len(records)
	summary.Skipped = skipped

	if archive != nil {
		for _, rec := range records {
			archive.RecordMeasurement(e.cfg.RunID, rec)
		}
		archive.Flush()
	}

	return nil
}

func (e *Experiment) exportCSV(summary *Summary) error {
	if e.cfg.CSVPath == "" {
		return nil
	}

	w := results.NewCSVWriter(e.cfg.CSVPath)
	if err := w.Init(); err != nil {
		return err
	}

	for _, rec := range summary.Records {
		w.Write(rec)
	}

	return w.Close()
}

func policyName(p protocol.Policy) string {
	if p == protocol.ChecksumPayload {
		return "checksum"
	}
	return "invalidate"
}

// senderStats adapts the sender's counters for the monitor.
type senderStats struct {
	s *protocol.Sender
}

func (s senderStats) Name() string { return "sender" }

func (s senderStats) Counters() map[string]uint64 {
	return map[string]uint64{
		"sent":   s.s.Sent(),
		"failed": s.s.Failed(),
	}
}

// receiverStats adapts the receiver's counters for the monitor.
type receiverStats struct {
	r *protocol.Receiver
}

func (r receiverStats) Name() string { return "receiver" }

func (r receiverStats) Counters() map[string]uint64 {
	return map[string]uint64{
		"received":  r.r.Received(),
		"malformed": r.r.Malformed(),
		"appended":  uint64(r.r.Appended()),
	}
}

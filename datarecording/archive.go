package datarecording

import (
	"context"

	"github.com/cohlab/cohmark/results"
)

// Table names used by the benchmark archive.
const (
	MeasurementTable = "measurements"
	RunTable         = "runs"
)

// A MeasurementRow is one drained result record, denormalized with the run
// that produced it.
type MeasurementRow struct {
	RunID             string
	PacketSize        uint32
	SenderTimestamp   uint32
	ReceiverTimestamp uint32
	DeltaTicks        uint32
	DeltaMicros       float64
}

// A RunRow summarizes one sweep step of a benchmark run. Steps are archived
// as they finish, before the results log is drained; per-record outcomes
// live in the measurement table, keyed by the same run ID.
type RunRow struct {
	RunID         string
	Layout        string
	Policy        string
	Coherent      bool
	PacketSize    uint32
	Iterations    int
	Sent          uint64
	Failed        uint64
	ElapsedMicros float64
}

// An Archive stores benchmark output in the two standard tables.
type Archive struct {
	recorder DataRecorder
}

// NewArchive creates the measurement and run tables on the given recorder.
func NewArchive(recorder DataRecorder) *Archive {
	a := &Archive{recorder: recorder}

	recorder.CreateTable(MeasurementTable, MeasurementRow{})
	recorder.CreateTable(RunTable, RunRow{})

	return a
}

// RecordMeasurement archives one drained result record.
func (a *Archive) RecordMeasurement(runID string, rec results.Record) {
	a.recorder.InsertData(MeasurementTable, MeasurementRow{
		RunID:             runID,
		PacketSize:        rec.PacketSize,
		SenderTimestamp:   rec.SenderTimestamp,
		ReceiverTimestamp: rec.ReceiverTimestamp,
		DeltaTicks:        rec.DeltaTicks,
		DeltaMicros:       rec.DeltaMicros(),
	})
}

// RecordRun archives one sweep-step summary.
func (a *Archive) RecordRun(row RunRow) {
	a.recorder.InsertData(RunTable, row)
}

// Flush writes all buffered rows.
func (a *Archive) Flush() {
	a.recorder.Flush()
}

// ReadRuns loads all sweep-step summaries from an archive file.
func ReadRuns(dbFilename string) ([]RunRow, error) {
	reader := NewReader(dbFilename)
	defer reader.Close()

	reader.MapTable(RunTable, RunRow{})

	raw, _, err := reader.Query(
		context.Background(), RunTable, QueryParams{})
	if err != nil {
		return nil, err
	}

	rows := make([]RunRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, *r.(*RunRow))
	}

	return rows, nil
}

// ReadMeasurements loads all measurement rows from an archive file, ordered
// as they were recorded.
func ReadMeasurements(dbFilename string) ([]MeasurementRow, error) {
	reader := NewReader(dbFilename)
	defer reader.Close()

	reader.MapTable(MeasurementTable, MeasurementRow{})

	raw, _, err := reader.Query(
		context.Background(), MeasurementTable, QueryParams{})
	if err != nil {
		return nil, err
	}

	rows := make([]MeasurementRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, *r.(*MeasurementRow))
	}

	return rows, nil
}

package results_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohlab/cohmark/cache"
	"github.com/cohlab/cohmark/region"
	"github.com/cohlab/cohmark/results"
	"github.com/cohlab/cohmark/timer"
)

func newLogSpace(t *testing.T, size int) cache.Space {
	t.Helper()

	r := region.NewHeapRegion(size)
	t.Cleanup(func() { r.Close() })

	return cache.NewCoherent(r)
}

func TestAppendAndDrain(t *testing.T) {
	mem := newLogSpace(t, 4096)

	l := results.NewLog(mem, 0, 100)
	l.Reset()
	l.Append(64, 1000, 1250)
	l.Append(128, 2000, 2600)
	l.Finalize()

	records, skipped, err := results.Drain(mem, 0, 100)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, records, 2)

	assert.Equal(t, uint32(64), records[0].PacketSize)
	assert.Equal(t, uint32(250), records[0].DeltaTicks)
	assert.Equal(t, results.ValidMarker, records[0].Valid)
	assert.Equal(t, uint32(600), records[1].DeltaTicks)
}

func TestAppendComputesWrapCorrectedDelta(t *testing.T) {
	mem := newLogSpace(t, 4096)

	l := results.NewLog(mem, 0, 10)
	l.Reset()
	l.Append(1, timer.MaxTick-2, 1)
	l.Finalize()

	records, _, err := results.Drain(mem, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint32(4), records[0].DeltaTicks)
}

func TestAppendBeyondCapacityIsDropped(t *testing.T) {
	mem := newLogSpace(t, 4096)

	l := results.NewLog(mem, 64, 3)
	l.Reset()
	for i := 0; i < 10; i++ {
		l.Append(uint32(i), 0, 1)
	}
	l.Finalize()

	assert.Equal(t, uint32(3), l.Appended())
	assert.Equal(t, uint64(10), l.Attempts())

	records, skipped, err := results.Drain(mem, 64, 3)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, records, 3)

	// The word right after the last slot must be untouched.
	assert.Equal(t, uint32(0), mem.Uint32(64+4+3*results.RecordBytes))
}

func TestDrainRejectsZeroCount(t *testing.T) {
	mem := newLogSpace(t, 4096)

	l := results.NewLog(mem, 0, 10)
	l.Reset()
	l.Finalize()

	_, _, err := results.Drain(mem, 0, 10)
	assert.ErrorIs(t, err, results.ErrInvalidCount)
}

func TestDrainRejectsOversizedCount(t *testing.T) {
	mem := newLogSpace(t, 4096)

	mem.SetUint32(0, 5000)

	_, _, err := results.Drain(mem, 0, 10)
	assert.ErrorIs(t, err, results.ErrInvalidCount)
}

func TestDrainSkipsCorruptRecord(t *testing.T) {
	mem := newLogSpace(t, 4096)

	l := results.NewLog(mem, 0, 10)
	l.Reset()
	l.Append(1, 0, 10)
	l.Append(2, 0, 20)
	l.Append(3, 0, 30)
	l.Finalize()

	// Corrupt the marker of the middle record.
	mem.SetUint32(4+1*results.RecordBytes+16, 0xDEADBEEF)

	records, skipped, err := results.Drain(mem, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, records, 2)
	assert.Equal(t, uint32(1), records[0].PacketSize)
	assert.Equal(t, uint32(3), records[1].PacketSize)
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w := results.NewCSVWriter(path)
	require.NoError(t, w.Init())

	w.Write(results.Record{
		PacketSize:        64,
		SenderTimestamp:   100,
		ReceiverTimestamp: 350,
		DeltaTicks:        250,
		Valid:             results.ValidMarker,
	})
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"packet_size,sender_timestamp,receiver_timestamp,delta_ticks,delta_us",
		lines[0])
	assert.Equal(t, "64,100,350,250,2.500", lines[1])
}

func TestCSVWriterRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	w := results.NewCSVWriter(path)
	assert.Error(t, w.Init())
}

package results

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A CSVWriter stores drained records into a CSV file.
type CSVWriter struct {
	path string
	file *os.File

	records    []Record
	bufferSize int
}

// NewCSVWriter creates a CSVWriter that will write to the given path. An
// empty path picks a unique name.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the CSV file and writes the header. It refuses to overwrite
// an existing file.
func (w *CSVWriter) Init() error {
	if w.path == "" {
		w.path = "cohmark_results_" + xid.New().String() + ".csv"
	}

	filename := w.path
	_, err := os.Stat(filename)
	if err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	w.file = file

	fmt.Fprintf(file, "packet_size,sender_timestamp,receiver_timestamp,delta_ticks,delta_us\n")

	atexit.Register(func() { w.Flush() })

	return nil
}

// Path returns the file path the writer resolved to.
func (w *CSVWriter) Path() string {
	return w.path
}

// Write buffers one record, flushing when the buffer fills.
func (w *CSVWriter) Write(rec Record) {
	w.records = append(w.records, rec)
	if len(w.records) >= w.bufferSize {
		w.Flush()
	}
}

// Flush writes buffered records to the file.
func (w *CSVWriter) Flush() {
	for _, rec := range w.records {
		fmt.Fprintf(w.file, "%d,%d,%d,%d,%.3f\n",
			rec.PacketSize,
			rec.SenderTimestamp,
			rec.ReceiverTimestamp,
			rec.DeltaTicks,
			rec.DeltaMicros(),
		)
	}

	w.records = nil
}

// Close flushes and closes the file.
func (w *CSVWriter) Close() error {
	w.Flush()
	return w.file.Close()
}

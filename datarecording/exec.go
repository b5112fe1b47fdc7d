package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecInfo is one property of the recorded program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// An ExecRecorder stores how the benchmark binary was invoked, so an archive
// can be traced back to the exact command that produced it.
type ExecRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []ExecInfo
}

// NewExecRecorder creates an ExecRecorder writing into the given recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		tableName: "exec_info",
		recorder:  recorder,
	}

	e.recorder.CreateTable(e.tableName, ExecInfo{})

	return e
}

// Start captures the invocation: start time, command line and working
// directory.
func (e *ExecRecorder) Start() {
	startTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.entries = append(e.entries, ExecInfo{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	e.entries = append(e.entries, ExecInfo{"Command", cmd})

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	e.entries = append(e.entries, ExecInfo{"Working Directory", cwd})
}

// End writes the captured entries plus the exit time into the database.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(e.tableName, entry)
	}

	endTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.recorder.InsertData(e.tableName, ExecInfo{"End Time", endTime})

	e.entries = nil

	e.recorder.Flush()
}

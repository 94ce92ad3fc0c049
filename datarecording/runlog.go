package datarecording

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type runInfo struct {
	Property string
	Value    string
}

// A RunLogger records metadata about one simulation run into a run_info
// table: start time, command line, working directory, end time, and any
// summary properties added along the way.
type RunLogger struct {
	tablename string
	recorder  DataRecorder
	entries   []runInfo
}

// NewRunLogger creates a RunLogger on the given recorder and creates its
// table.
func NewRunLogger(recorder DataRecorder) *RunLogger {
	l := &RunLogger{
		tablename: "run_info",
		recorder:  recorder,
	}

	l.recorder.CreateTable(l.tablename, runInfo{})

	return l
}

// Start logs the current run's launch information.
func (l *RunLogger) Start() {
	currentTime := time.Now()
	startTime := currentTime.Format("2006-01-02 15:04:05.000000000")
	l.entries = append(l.entries, runInfo{"Start Time", startTime})

	cmd := strings.Join(os.Args, " ")
	l.entries = append(l.entries, runInfo{"Command", cmd})

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}

	cwd := filepath.Dir(ex)
	l.entries = append(l.entries, runInfo{"Working Directory", cwd})
}

// AddProperty records one summary property, e.g. the total traffic
// volume after the run.
func (l *RunLogger) AddProperty(property, value string) {
	l.entries = append(l.entries, runInfo{property, value})
}

// End writes the collected entries along with the run's end time.
func (l *RunLogger) End() {
	for _, entry := range l.entries {
		l.recorder.InsertData(l.tablename, entry)
	}

	endTime := time.Now()
	endValue := endTime.Format("2006-01-02 15:04:05.000000000")
	l.recorder.InsertData(l.tablename, runInfo{"End Time", endValue})

	l.entries = nil

	l.recorder.Flush()
}

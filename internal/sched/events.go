// internal/sched/events.go

package sched

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// StatusKind represents the type of scheduler event. This generalizes the
// teacher's CFS tick/dispatch/preempt/finish enum to the lifecycle events
// of a dependency-graph scheduler.
type StatusKind int

const (
	StatusNamespaceTokenIssued StatusKind = iota
	StatusTaskEnqueued
	StatusTaskDispatched
	StatusTaskFinished
	StatusTaskCanceled
	StatusNamespaceDrained
	StatusShutdown
)

func (sk StatusKind) String() string {
	switch sk {
	case StatusNamespaceTokenIssued:
		return "TokenIssued"
	case StatusTaskEnqueued:
		return "Enqueued"
	case StatusTaskDispatched:
		return "Dispatched"
	case StatusTaskFinished:
		return "Finished"
	case StatusTaskCanceled:
		return "Canceled"
	case StatusNamespaceDrained:
		return "Drained"
	case StatusShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// StatusEvent is emitted on every scheduler-visible state transition. The
// CorrelationID is a fresh random id minted for each event, so it names one
// event rather than grouping the events of a submission; it plays no role in
// scheduling.
type StatusEvent struct {
	Time          time.Time
	Kind          StatusKind
	NamespaceID   uint64
	Priority      uint
	Detail        string
	CorrelationID uuid.UUID
}

func newStatusEvent(kind StatusKind, namespaceID uint64, priority uint, detail string) StatusEvent {
	return StatusEvent{
		Time:          time.Now(),
		Kind:          kind,
		NamespaceID:   namespaceID,
		Priority:      priority,
		Detail:        detail,
		CorrelationID: uuid.New(),
	}
}

// EventLogger drains a TaskGraphRunner's StatusEvent channel, printing each
// event and optionally mirroring it to a CSV sink. Generalizes the teacher's
// Scheduler.Run consume-loop / handleEvent pair, which did the same for its
// tick/dispatch/preempt/finish events.
type EventLogger struct {
	csvFile   *os.File
	csvWriter *csv.Writer
}

// NewEventLogger returns a logger with no CSV sink. Use EnableCSVLogging to
// add one before RunEventLogger starts draining.
func NewEventLogger() *EventLogger {
	return &EventLogger{}
}

// EnableCSVLogging opens path and mirrors every drained event to it as a CSV
// row. Must be called before RunEventLogger.
func (l *EventLogger) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Write([]string{"timestamp", "kind", "namespace_id", "priority", "detail", "correlation_id"})
	w.Flush()
	l.csvFile = f
	l.csvWriter = w
	return nil
}

// RunEventLogger drains ch until it is closed (i.e. until the runner's Close
// finishes), printing each event and mirroring it to the CSV sink if one was
// enabled. Intended to run in its own goroutine, started before the first
// call into the runner.
func (l *EventLogger) RunEventLogger(ch <-chan StatusEvent) {
	for ev := range ch {
		l.handleEvent(ev)
	}
	if l.csvFile != nil {
		l.csvWriter.Flush()
		l.csvFile.Close()
	}
}

func (l *EventLogger) handleEvent(ev StatusEvent) {
	fmt.Printf("%s [%-14s] namespace=%d priority=%d %s\n",
		ev.Time.Format("Jan 02 15:04:05.000"),
		ev.Kind.String(),
		ev.NamespaceID,
		ev.Priority,
		ev.Detail,
	)

	if l.csvWriter == nil {
		return
	}
	rec := []string{
		ev.Time.Format(time.RFC3339Nano),
		ev.Kind.String(),
		strconv.FormatUint(ev.NamespaceID, 10),
		strconv.FormatUint(uint64(ev.Priority), 10),
		ev.Detail,
		ev.CorrelationID.String(),
	}
	l.csvWriter.Write(rec)
	l.csvWriter.Flush()
}

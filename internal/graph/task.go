// Package graph holds the plain data carriers of the scheduler: the Task
// contract, and the TaskGraph of Nodes and Edges that describes how tasks
// depend on one another. Nothing in this package touches scheduling policy;
// it is the external contract a producer submits and the scheduler consumes.
package graph

import "sync/atomic"

// Task is an opaque unit of work. Implementations must not acquire the
// scheduler's lock from RunOnWorkerThread, directly or indirectly.
//
// Run is called at most once per task across the process lifetime. The
// WillRun/DidRun pair brackets that single call; HasFinishedRunning is the
// monotone false->true flag callers may poll after the fact.
type Task interface {
	WillRun()
	RunOnWorkerThread(workerIndex int)
	DidRun()
	HasFinishedRunning() bool
}

// BaseTask implements the did-run lifecycle of Task. Embed it in concrete
// task types so only RunOnWorkerThread needs to be supplied.
type BaseTask struct {
	didRun atomic.Bool
}

// WillRun asserts the task has not already run. A second call on a task
// that already ran is a contract violation (spec.md §7) and panics.
func (t *BaseTask) WillRun() {
	if t.didRun.Load() {
		panic("graph: Task.WillRun called on a task that already ran")
	}
}

// DidRun marks the task finished. Monotone false->true.
func (t *BaseTask) DidRun() {
	t.didRun.Store(true)
}

// HasFinishedRunning reports whether DidRun has been called.
func (t *BaseTask) HasFinishedRunning() bool {
	return t.didRun.Load()
}

package sched

import "github.com/KnightChaser/graphrunner/internal/graph"

// TaskNamespace is the per-client state the runner keeps: the currently
// authoritative graph, the heap of tasks ready to dispatch, the queue of
// completed (or canceled) tasks awaiting collection by the origin, and a
// count of this namespace's tasks presently executing on a worker.
type TaskNamespace struct {
	id uint64

	graph     graph.Graph
	ready     *taskHeap
	completed []graph.Task
	running   uint
}

func newTaskNamespace(id uint64) *TaskNamespace {
	return &TaskNamespace{
		id:    id,
		ready: newTaskHeap(),
	}
}

// hasFinishedRunningTasks is the derived predicate of spec.md §3: the
// namespace has nothing left to do and nothing left to hand back.
func (ns *TaskNamespace) hasFinishedRunningTasks() bool {
	return ns.ready.empty() && ns.running == 0 && len(ns.graph.Nodes) == 0
}

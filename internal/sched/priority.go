package sched

import (
	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/KnightChaser/graphrunner/internal/graph"
)

// prioritizedTask pairs a task with the priority it was enqueued at, the
// element type of a namespace's ready_to_run_tasks heap (spec.md §4.3).
type prioritizedTask struct {
	task     graph.Task
	priority uint
}

// compareTaskPriority orders prioritizedTask so that the smallest numeric
// priority value — the highest scheduling urgency — sits at the root of the
// gods binary heap and is what Pop returns first.
func compareTaskPriority(a, b interface{}) int {
	pa, pb := a.(*prioritizedTask), b.(*prioritizedTask)
	switch {
	case pa.priority < pb.priority:
		return -1
	case pa.priority > pb.priority:
		return 1
	default:
		return 0
	}
}

// taskHeap wraps a gods binaryheap.Heap as a namespace's ready-to-run-tasks
// priority queue. This replaces the teacher's redblacktree (which ordered
// tasks by CFS vruntime, a concept this scheduler has no use for) with the
// sibling binaryheap container from the same already-required gods module —
// see DESIGN.md.
type taskHeap struct {
	tree *binaryheap.Heap
}

func newTaskHeap() *taskHeap {
	return &taskHeap{tree: binaryheap.NewWith(compareTaskPriority)}
}

// push inserts task at the given priority.
func (h *taskHeap) push(task graph.Task, priority uint) {
	h.tree.Push(&prioritizedTask{task: task, priority: priority})
}

// pop removes and returns the highest-urgency task, if any.
func (h *taskHeap) pop() (graph.Task, bool) {
	v, ok := h.tree.Pop()
	if !ok {
		return nil, false
	}
	return v.(*prioritizedTask).task, true
}

// peekPriority returns the priority of the head task without removing it.
func (h *taskHeap) peekPriority() (uint, bool) {
	v, ok := h.tree.Peek()
	if !ok {
		return 0, false
	}
	return v.(*prioritizedTask).priority, true
}

func (h *taskHeap) empty() bool { return h.tree.Empty() }

func (h *taskHeap) size() int { return h.tree.Size() }

func (h *taskHeap) clear() { h.tree.Clear() }

// compareNamespacePriority orders namespaces by the priority of each one's
// current head ready task. It is only ever called with namespaces whose
// ready heap is non-empty (spec.md §4.3).
func compareNamespacePriority(a, b interface{}) int {
	na, nb := a.(*TaskNamespace), b.(*TaskNamespace)
	pa, _ := na.ready.peekPriority()
	pb, _ := nb.ready.peekPriority()
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}

// namespaceHeap wraps a gods binaryheap.Heap as the runner-wide
// ready_to_run_namespaces queue. Namespaces are stored by pointer, the same
// raw-reference choice the original makes.
type namespaceHeap struct {
	tree *binaryheap.Heap
}

func newNamespaceHeap() *namespaceHeap {
	return &namespaceHeap{tree: binaryheap.NewWith(compareNamespacePriority)}
}

func (h *namespaceHeap) push(ns *TaskNamespace) { h.tree.Push(ns) }

func (h *namespaceHeap) pop() (*TaskNamespace, bool) {
	v, ok := h.tree.Pop()
	if !ok {
		return nil, false
	}
	return v.(*TaskNamespace), true
}

func (h *namespaceHeap) empty() bool { return h.tree.Empty() }

func (h *namespaceHeap) clear() { h.tree.Clear() }

func (h *namespaceHeap) size() int { return h.tree.Size() }

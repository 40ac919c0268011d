// internal/sched/runner.go

package sched

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KnightChaser/graphrunner/internal/graph"
)

// TaskGraphRunner is the scheduler proper: it owns the worker goroutines,
// the set of namespaces, the priority heap of ready-to-run namespaces, the
// single lock and its two condition variables, the shutdown flag, and the
// per-worker currently-running-task slots. It is the Go port of
// cc::internal::TaskGraphRunner (spec.md §4, §5).
type TaskGraphRunner struct {
	mu           sync.Mutex
	readyCond    *sync.Cond // signalled when new work is ready, or on shutdown
	finishedCond *sync.Cond // signalled when any namespace becomes fully drained

	namespaces      map[uint64]*TaskNamespace
	readyNamespaces *namespaceHeap
	runningTasks    []graph.Task // length == max(numWorkers, 1); slot i is worker i's current task

	nextNamespaceID uint64
	nextThreadIndex int

	shutdown bool

	emitEvents bool
	events     chan StatusEvent

	metrics *Metrics

	workersWG sync.WaitGroup
}

// Option configures a TaskGraphRunner at construction.
type Option func(*TaskGraphRunner)

// WithMetrics wires a Metrics sink into the runner.
func WithMetrics(m *Metrics) Option {
	return func(r *TaskGraphRunner) { r.metrics = m }
}

const eventBufferSize = 256

// New constructs a TaskGraphRunner and starts its worker goroutines. A
// worker count of 0 is legal (min worker count of 1 still applies to the
// runningTasks slot so RunTaskForTesting can use slot 0).
func New(cfg RunnerConfig, opts ...Option) *TaskGraphRunner {
	r := &TaskGraphRunner{
		namespaces:      make(map[uint64]*TaskNamespace),
		readyNamespaces: newNamespaceHeap(),
		nextNamespaceID: 1,
		emitEvents:      cfg.EmitEvents,
	}
	r.readyCond = sync.NewCond(&r.mu)
	r.finishedCond = sync.NewCond(&r.mu)

	for _, opt := range opts {
		opt(r)
	}

	if r.emitEvents {
		r.events = make(chan StatusEvent, eventBufferSize)
	}

	numWorkers := cfg.NumWorkers
	if numWorkers < 0 {
		numWorkers = 0
	}
	slots := numWorkers
	if slots < 1 {
		slots = 1
	}
	r.runningTasks = make([]graph.Task, slots)

	r.workersWG.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go r.run()
	}

	return r
}

// StatusChannel exposes the event stream for an optional consumer (see
// RunEventLogger). Nil if the runner was constructed with EmitEvents=false.
func (r *TaskGraphRunner) StatusChannel() <-chan StatusEvent {
	return r.events
}

func (r *TaskGraphRunner) emitEvent(ev StatusEvent) {
	if !r.emitEvents || r.events == nil {
		return
	}
	// Non-blocking: a slow or absent consumer must never stall the scheduler.
	select {
	case r.events <- ev:
	default:
	}
}

// GetNamespaceToken allocates and returns a fresh NamespaceToken. No
// TaskNamespace is materialized yet; that happens lazily on first
// SetTaskGraph (spec.md §4.1).
func (r *TaskGraphRunner) GetNamespaceToken() NamespaceToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextNamespaceID
	r.nextNamespaceID++
	if _, exists := r.namespaces[id]; exists {
		panic("sched: namespace id collision")
	}

	token := NamespaceToken{id: id, debug: uuid.New()}
	r.emitEvent(newStatusEvent(StatusNamespaceTokenIssued, id, 0, token.debug.String()))
	return token
}

// isRunningLocked reports whether task currently occupies a worker slot.
// Must be called with r.mu held.
func (r *TaskGraphRunner) isRunningLocked(task graph.Task) bool {
	for _, t := range r.runningTasks {
		if t == task {
			return true
		}
	}
	return false
}

// SetTaskGraph atomically replaces token's namespace graph with g, per
// spec.md §4.4. On return, g holds the replaced-out remnant of the previous
// graph (the nodes not carried over into the new one) for caller inspection
// or reuse — this mirrors the original's in/out TaskGraph* parameter.
func (r *TaskGraphRunner) SetTaskGraph(token NamespaceToken, g *graph.Graph) {
	if !token.IsValid() {
		panic("sched: SetTaskGraph called with an invalid token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutdown {
		panic("sched: SetTaskGraph called after shutdown")
	}

	ns, ok := r.namespaces[token.id]
	if !ok {
		ns = newTaskNamespace(token.id)
		r.namespaces[token.id] = ns
	}

	// Step 2: discount dependency counts for tasks that already finished but
	// have not yet been collected — the new graph's author didn't know.
	for _, finished := range ns.completed {
		for it := graph.NewDependentIterator(g, finished); it.Valid(); it.Next() {
			dep := it.Node()
			if dep.Dependencies > 0 {
				dep.Dependencies--
			}
		}
	}

	// Step 3: build the fresh ready heap, and strip carried-over nodes out
	// of the old graph (what's left becomes the cancellation candidate set).
	newReady := newTaskHeap()
	for i := range g.Nodes {
		node := &g.Nodes[i]

		if oldIdx := ns.graph.IndexOfTask(node.Task); oldIdx >= 0 {
			ns.graph.RemoveNodeAt(oldIdx)
		}

		if node.Dependencies != 0 {
			continue
		}
		if node.Task.HasFinishedRunning() {
			continue
		}
		if r.isRunningLocked(node.Task) {
			continue
		}
		newReady.push(node.Task, node.Priority)
		r.emitEvent(newStatusEvent(StatusTaskEnqueued, ns.id, node.Priority, ""))
	}

	// Step 5: swap graphs. ns.graph becomes authoritative; g becomes the old
	// remnant, iterated below and handed back to the caller as-is.
	ns.graph.Swap(g)
	ns.ready = newReady

	// Step 6: cancellation — anything left in the remnant that never ran and
	// isn't running now is superseded. It is appended to completed_tasks
	// without running, honoring the "replies are guaranteed" contract.
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if node.Task.HasFinishedRunning() {
			continue
		}
		if r.isRunningLocked(node.Task) {
			continue
		}
		ns.completed = append(ns.completed, node.Task)
		r.metrics.incCanceled()
		r.emitEvent(newStatusEvent(StatusTaskCanceled, ns.id, node.Priority, ""))
	}

	// Step 7: rebuild the global ready-namespace heap from scratch.
	r.readyNamespaces.clear()
	for _, other := range r.namespaces {
		if !other.ready.empty() {
			r.readyNamespaces.push(other)
		}
	}

	r.updateMetricsLocked()

	// Step 8: signal iff there's now work to do.
	if !r.readyNamespaces.empty() {
		r.readyCond.Signal()
	}
}

// CollectCompletedTasks moves token's namespace's completed queue into out,
// which must be empty on entry. If the namespace is now fully drained, it is
// erased — a drained namespace is indistinguishable from one that never
// existed (spec.md §4.7).
func (r *TaskGraphRunner) CollectCompletedTasks(token NamespaceToken, out *[]graph.Task) {
	if !token.IsValid() {
		panic("sched: CollectCompletedTasks called with an invalid token")
	}
	if len(*out) != 0 {
		panic("sched: CollectCompletedTasks requires an empty out slice")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[token.id]
	if !ok {
		return
	}

	*out, ns.completed = ns.completed, (*out)

	if !ns.hasFinishedRunningTasks() {
		return
	}

	delete(r.namespaces, token.id)
	r.emitEvent(newStatusEvent(StatusNamespaceDrained, ns.id, 0, ""))
	r.updateMetricsLocked()
}

// WaitForTasksToFinishRunning blocks until token's namespace has no ready,
// running, or graph-resident tasks left, or returns immediately if the
// namespace doesn't exist (spec.md §4.8).
func (r *TaskGraphRunner) WaitForTasksToFinishRunning(token NamespaceToken) {
	if !token.IsValid() {
		panic("sched: WaitForTasksToFinishRunning called with an invalid token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[token.id]
	if !ok {
		return
	}

	for !ns.hasFinishedRunningTasks() {
		r.finishedCond.Wait()
	}

	// finishedCond is shared across all namespaces; relay the wakeup in
	// case another origin thread is waiting on a different one.
	r.finishedCond.Signal()
}

// RunTaskForTesting runs a single ready task synchronously on slot 0,
// without any real worker goroutines. Returns false if nothing is ready.
func (r *TaskGraphRunner) RunTaskForTesting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.readyNamespaces.empty() {
		return false
	}
	r.runTaskWithLockAcquired(0)
	return true
}

// run is a worker goroutine's body. It claims a thread index on first entry,
// then repeatedly dispatches ready work or waits for some to appear.
func (r *TaskGraphRunner) run() {
	defer r.workersWG.Done()

	r.mu.Lock()
	defer r.mu.Unlock()

	threadIndex := r.nextThreadIndex
	r.nextThreadIndex++

	for {
		if r.readyNamespaces.empty() {
			if r.shutdown {
				// Cascade the wakeup so the next worker also notices shutdown.
				r.readyCond.Signal()
				return
			}
			r.readyCond.Wait()
			continue
		}
		r.runTaskWithLockAcquired(threadIndex)
	}
}

// runTaskWithLockAcquired pops the highest-priority ready task off the
// highest-priority ready namespace and runs it. Requires r.mu held on entry
// and leaves it held on return; it releases the lock only around the single
// call to task.RunOnWorkerThread, which is the one point user code runs
// (spec.md §4.6).
func (r *TaskGraphRunner) runTaskWithLockAcquired(workerIndex int) {
	ns, _ := r.readyNamespaces.pop()
	task, _ := ns.ready.pop()

	if !ns.ready.empty() {
		r.readyNamespaces.push(ns)
	}

	r.runningTasks[workerIndex] = task
	ns.running++

	// There may be more work available; wake another worker.
	r.readyCond.Signal()
	r.emitEvent(newStatusEvent(StatusTaskDispatched, ns.id, 0, ""))

	task.WillRun()

	r.mu.Unlock()
	start := time.Now()
	task.RunOnWorkerThread(workerIndex)
	elapsed := time.Since(start)
	r.mu.Lock()

	task.DidRun()
	r.metrics.observeTaskDuration(elapsed)

	ns.running--
	r.runningTasks[workerIndex] = nil

	// Fan-out: decrement every dependent's dependency count; anything that
	// reaches zero becomes ready. A push into a namespace that already sits in
	// readyNamespaces can change its head priority in place, so the
	// namespace heap is rebuilt afterwards in that case.
	perturbed := false
	for it := graph.NewDependentIterator(&ns.graph, task); it.Valid(); it.Next() {
		dependent := it.Node()
		if dependent.Dependencies == 0 {
			continue
		}
		dependent.Dependencies--
		if dependent.Dependencies == 0 {
			wasEmpty := ns.ready.empty()
			ns.ready.push(dependent.Task, dependent.Priority)
			r.emitEvent(newStatusEvent(StatusTaskEnqueued, ns.id, dependent.Priority, ""))
			if wasEmpty {
				r.readyNamespaces.push(ns)
			} else {
				perturbed = true
			}
		}
	}
	if perturbed {
		r.readyNamespaces.clear()
		for _, other := range r.namespaces {
			if !other.ready.empty() {
				r.readyNamespaces.push(other)
			}
		}
	}

	ns.completed = append(ns.completed, task)
	r.metrics.incCompleted()
	r.emitEvent(newStatusEvent(StatusTaskFinished, ns.id, 0, ""))

	if ns.hasFinishedRunningTasks() {
		r.finishedCond.Signal()
	}

	r.updateMetricsLocked()
}

// updateMetricsLocked refreshes the gauge-shaped Prometheus series. Must be
// called with r.mu held; a nil Metrics makes every call a no-op.
func (r *TaskGraphRunner) updateMetricsLocked() {
	if r.metrics == nil {
		return
	}

	readyTasks := 0
	for _, ns := range r.namespaces {
		readyTasks += ns.ready.size()
	}
	running := 0
	for _, t := range r.runningTasks {
		if t != nil {
			running++
		}
	}

	r.metrics.setReadyTasks(readyTasks)
	r.metrics.setReadyNamespaces(r.readyNamespaces.size())
	r.metrics.setRunningWorkers(running)
}

// Close implements the shutdown protocol (spec.md §4.9): it asserts the
// caller has already drained every namespace, flips the shutdown flag,
// wakes the worker cascade, and joins every worker goroutine. A non-empty
// namespace set at Close time is a programming error and panics, matching
// the original's DCHECK-based contract.
func (r *TaskGraphRunner) Close() {
	r.mu.Lock()
	if !r.readyNamespaces.empty() || len(r.namespaces) != 0 {
		r.mu.Unlock()
		panic("sched: Close called with namespaces still live; caller must drain first")
	}
	if r.shutdown {
		r.mu.Unlock()
		panic("sched: Close called twice")
	}

	r.shutdown = true
	r.emitEvent(newStatusEvent(StatusShutdown, 0, 0, ""))
	r.readyCond.Signal()
	r.mu.Unlock()

	r.workersWG.Wait()

	if r.events != nil {
		close(r.events)
	}
}

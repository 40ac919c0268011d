package sched

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics adapts a TaskGraphRunner's internal counters to Prometheus
// collectors. Adapted from Swind-go-task-runner's observability/prometheus
// exporter (namespace default, Registerer default, registration helper),
// re-targeted from a single-queue task runner's panic/reject counters to
// this scheduler's ready/running/completed/canceled gauges and counters.
type Metrics struct {
	readyTasks      prom.Gauge
	readyNamespaces prom.Gauge
	runningWorkers  prom.Gauge
	completedTotal  prom.Counter
	canceledTotal   prom.Counter
	taskDuration    prom.Histogram
}

// NewMetrics creates and registers Prometheus collectors for a
// TaskGraphRunner. If reg is nil, prometheus.DefaultRegisterer is used. A
// nil *Metrics is valid and every method on it is a no-op, so callers that
// don't want metrics can simply omit the option.
func NewMetrics(namespace string, reg prom.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "graphrunner"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	m := &Metrics{
		readyTasks: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "ready_tasks",
			Help:      "Tasks currently ready to dispatch across all namespaces.",
		}),
		readyNamespaces: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "ready_namespaces",
			Help:      "Namespaces with at least one ready-to-run task.",
		}),
		runningWorkers: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "running_workers",
			Help:      "Worker slots currently executing a task.",
		}),
		completedTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "completed_tasks_total",
			Help:      "Total number of tasks that finished running.",
		}),
		canceledTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "canceled_tasks_total",
			Help:      "Total number of tasks canceled by supersession before running.",
		}),
		taskDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of RunOnWorkerThread calls.",
			Buckets:   prom.DefBuckets,
		}),
	}

	for _, c := range []prom.Collector{
		m.readyTasks, m.readyNamespaces, m.runningWorkers,
		m.completedTotal, m.canceledTotal, m.taskDuration,
	} {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prom.AlreadyRegisteredError); ok {
				_ = are
				continue
			}
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) setReadyTasks(n int) {
	if m == nil {
		return
	}
	m.readyTasks.Set(float64(n))
}

func (m *Metrics) setReadyNamespaces(n int) {
	if m == nil {
		return
	}
	m.readyNamespaces.Set(float64(n))
}

func (m *Metrics) setRunningWorkers(n int) {
	if m == nil {
		return
	}
	m.runningWorkers.Set(float64(n))
}

func (m *Metrics) observeTaskDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.taskDuration.Observe(d.Seconds())
}

func (m *Metrics) incCompleted() {
	if m == nil {
		return
	}
	m.completedTotal.Inc()
}

func (m *Metrics) incCanceled() {
	if m == nil {
		return
	}
	m.canceledTotal.Inc()
}

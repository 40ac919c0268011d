package job

import (
	"context"
	"fmt"

	yaml "github.com/goccy/go-yaml"

	"github.com/KnightChaser/graphrunner/internal/graph"
)

// FuncTask adapts a plain func(context.Context) error — the shape the
// teacher's waiting.go already returns — into a graph.Task. It is the
// minimal "raster task producer" collaborator the scheduler treats as
// external (spec.md §1): nothing in internal/sched imports this type.
type FuncTask struct {
	graph.BaseTask

	Name string
	Fn   func(context.Context) error
	Err  error
}

// NewFuncTask wraps fn, labeled name for log/test readability.
func NewFuncTask(name string, fn func(context.Context) error) *FuncTask {
	return &FuncTask{Name: name, Fn: fn}
}

// RunOnWorkerThread runs Fn with a background context and stashes any error
// for later inspection by the producer that submitted the task; the
// scheduler itself never looks at Err (spec.md §7 — any return is success).
func (t *FuncTask) RunOnWorkerThread(workerIndex int) {
	if t.Fn == nil {
		return
	}
	t.Err = t.Fn(context.Background())
}

// BuildChain returns a linear A->B->C->... dependency graph, one task per
// name, all at the given priority. This is spec.md §8 scenario 1 in general
// form.
func BuildChain(priority uint, names ...string) (*graph.Graph, []*FuncTask) {
	g := graph.New()
	tasks := make([]*FuncTask, len(names))

	for i, name := range names {
		tasks[i] = NewFuncTask(name, noopWork(name))
	}

	prev := -1
	for i, t := range tasks {
		deps := uint(0)
		if i > 0 {
			deps = 1
		}
		idx := g.AddNode(t, priority, deps)
		if prev >= 0 {
			g.AddEdge(prev, idx)
		}
		prev = idx
	}
	return g, tasks
}

// BuildDiamond returns spec.md §8 scenario 2 verbatim: A->B, A->C, B->D,
// C->D, with A=0, B=1, C=2, D=0.
func BuildDiamond() (*graph.Graph, map[string]*FuncTask) {
	g := graph.New()
	a := NewFuncTask("A", noopWork("A"))
	b := NewFuncTask("B", noopWork("B"))
	c := NewFuncTask("C", noopWork("C"))
	d := NewFuncTask("D", noopWork("D"))

	ai := g.AddNode(a, 0, 0)
	bi := g.AddNode(b, 1, 1)
	ci := g.AddNode(c, 2, 1)
	di := g.AddNode(d, 0, 2)

	g.AddEdge(ai, bi)
	g.AddEdge(ai, ci)
	g.AddEdge(bi, di)
	g.AddEdge(ci, di)

	return g, map[string]*FuncTask{"A": a, "B": b, "C": c, "D": d}
}

func noopWork(name string) func(context.Context) error {
	return func(ctx context.Context) error {
		return nil
	}
}

// yamlNode is the on-disk description of a single graph node for
// BuildFromYAML's demo graph format.
type yamlNode struct {
	Name        string   `yaml:"name"`
	Priority    uint     `yaml:"priority"`
	DependsOn   []string `yaml:"depends_on"`
	SleepMillis int64    `yaml:"sleep_ms"`
}

type yamlGraph struct {
	Nodes []yamlNode `yaml:"nodes"`
}

// BuildFromYAML parses a demo graph description — a list of named nodes
// with priorities and depends_on references — into a graph.Graph of
// FuncTask nodes that sleep for sleep_ms before returning. Used by
// `cmd/graphrunner run --graph`.
func BuildFromYAML(data []byte) (*graph.Graph, map[string]*FuncTask, error) {
	var doc yamlGraph
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("job: parse demo graph: %w", err)
	}

	g := graph.New()
	tasks := make(map[string]*FuncTask, len(doc.Nodes))
	indexOf := make(map[string]int, len(doc.Nodes))

	for _, n := range doc.Nodes {
		t := NewFuncTask(n.Name, SleepWork(n.SleepMillis))
		idx := g.AddNode(t, n.Priority, uint(len(n.DependsOn)))
		tasks[n.Name] = t
		indexOf[n.Name] = idx
	}

	for _, n := range doc.Nodes {
		depIdx := indexOf[n.Name]
		for _, dep := range n.DependsOn {
			srcIdx, ok := indexOf[dep]
			if !ok {
				return nil, nil, fmt.Errorf("job: node %q depends_on unknown node %q", n.Name, dep)
			}
			g.AddEdge(srcIdx, depIdx)
		}
	}

	return g, tasks, nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KnightChaser/graphrunner/internal/graph"
	"github.com/KnightChaser/graphrunner/internal/job"
	"github.com/KnightChaser/graphrunner/internal/sched"
)

var (
	graphFlavor string
	graphPath   string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a demo task graph to a real TaskGraphRunner and wait for it to drain",
		RunE:  runRun,
	}
	cmd.Flags().StringVar(&graphFlavor, "demo", "diamond", "built-in demo graph: chain|diamond (ignored if --graph is set)")
	cmd.Flags().StringVar(&graphPath, "graph", "", "path to a YAML graph description (see internal/job.BuildFromYAML)")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := sched.LoadConfig(configPath)
	runner := sched.New(cfg)

	if ch := runner.StatusChannel(); ch != nil {
		go sched.NewEventLogger().RunEventLogger(ch)
	}

	var (
		g     *graph.Graph
		names []string
	)

	if graphPath != "" {
		data, err := os.ReadFile(graphPath)
		if err != nil {
			return fmt.Errorf("read graph file: %w", err)
		}
		built, tasks, err := job.BuildFromYAML(data)
		if err != nil {
			return err
		}
		g = built
		for name := range tasks {
			names = append(names, name)
		}
	} else {
		switch graphFlavor {
		case "chain":
			built, tasks := job.BuildChain(0, "A", "B", "C")
			g = built
			for _, t := range tasks {
				names = append(names, t.Name)
			}
		case "diamond":
			built, tasks := job.BuildDiamond()
			g = built
			for name := range tasks {
				names = append(names, name)
			}
		default:
			return fmt.Errorf("unknown --demo %q: want chain or diamond", graphFlavor)
		}
	}

	token := runner.GetNamespaceToken()
	runner.SetTaskGraph(token, g)

	// A namespace's graph only shrinks on a further SetTaskGraph call, so
	// WaitForTasksToFinishRunning would block past this one-shot batch
	// finishing; poll CollectCompletedTasks instead until every submitted
	// task has reported in.
	var completed []graph.Task
	for len(completed) < len(names) {
		var batch []graph.Task
		runner.CollectCompletedTasks(token, &batch)
		completed = append(completed, batch...)
		if len(completed) < len(names) {
			time.Sleep(2 * time.Millisecond)
		}
	}

	fmt.Printf("submitted %d tasks, collected %d completions\n", len(names), len(completed))
	for _, t := range completed {
		ft, ok := t.(*job.FuncTask)
		if !ok {
			continue
		}
		status := "ran"
		if !ft.HasFinishedRunning() {
			status = "canceled"
		}
		fmt.Printf("  %-8s %s\n", ft.Name, status)
	}

	// Submit an empty graph so the namespace is fully drained before Close,
	// which panics on any namespace still tracked.
	runner.SetTaskGraph(token, graph.New())
	var leftover []graph.Task
	runner.CollectCompletedTasks(token, &leftover)

	runner.Close()
	return nil
}

// graphrunner is a small CLI around internal/sched.TaskGraphRunner: it
// drives demo task graphs through a real scheduler for manual observation,
// the way the teacher's ticksched bootstraps a CFS scheduler from a config
// file (cmd/ticksched/main.go).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "graphrunner",
		Short: "Run and observe a task-graph scheduler",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a RunnerConfig YAML file")

	root.AddCommand(newRunCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

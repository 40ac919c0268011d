package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/KnightChaser/graphrunner/internal/graph"
	"github.com/KnightChaser/graphrunner/internal/job"
	"github.com/KnightChaser/graphrunner/internal/sched"
)

var (
	listenAddr    string
	workloadEvery time.Duration
	eventLogPath  string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose /metrics and continuously drive a demo workload through the scheduler",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&listenAddr, "addr", ":9090", "address to serve /metrics on")
	cmd.Flags().DurationVar(&workloadEvery, "interval", 2*time.Second, "how often to submit a fresh demo graph")
	cmd.Flags().StringVar(&eventLogPath, "event-log", "", "optional path to mirror scheduler StatusEvents as CSV")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := sched.LoadConfig(configPath)

	reg := prometheus.NewRegistry()
	metrics, err := sched.NewMetrics("graphrunner", reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	runner := sched.New(cfg, sched.WithMetrics(metrics))

	if ch := runner.StatusChannel(); ch != nil {
		logger := sched.NewEventLogger()
		if eventLogPath != "" {
			if err := logger.EnableCSVLogging(eventLogPath); err != nil {
				return fmt.Errorf("enable event csv logging: %w", err)
			}
		}
		go logger.RunEventLogger(ch)
	}

	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(listenAddr, nil); err != nil {
			fmt.Println("metrics server stopped:", err)
		}
	}()
	fmt.Printf("serving /metrics on %s, submitting a demo diamond graph every %s\n", listenAddr, workloadEvery)

	token := runner.GetNamespaceToken()
	ticker := time.NewTicker(workloadEvery)
	defer ticker.Stop()

	for range ticker.C {
		g, tasks := job.BuildDiamond()
		runner.SetTaskGraph(token, g)

		// A namespace's graph only shrinks on a further SetTaskGraph call, so
		// WaitForTasksToFinishRunning would block past this batch finishing;
		// poll CollectCompletedTasks until this round's tasks all report in.
		var completed []graph.Task
		for len(completed) < len(tasks) {
			var batch []graph.Task
			runner.CollectCompletedTasks(token, &batch)
			completed = append(completed, batch...)
			if len(completed) < len(tasks) {
				time.Sleep(2 * time.Millisecond)
			}
		}
	}
	return nil
}

package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// RunnerConfig mirrors the on-disk YAML configuration for a TaskGraphRunner.
// Generalizes the teacher's CFS tick/slice/alpha knobs to this scheduler's
// worker-pool and instrumentation knobs.
type RunnerConfig struct {
	NumWorkers             int    `yaml:"num_workers"`              // 4 by default
	ThreadNamePrefix       string `yaml:"thread_name_prefix"`       // "GraphRunner" by default
	ReadyQueueCapacity     int    `yaml:"ready_queue_capacity"`     // loaded and clamped; New does not read it
	CompletedQueueCapacity int    `yaml:"completed_queue_capacity"` // loaded and clamped; New does not read it
	EmitEvents             bool   `yaml:"emit_events"`              // whether to publish to the StatusEvent channel
}

// defaultConfig returns the configuration used when no file is found.
func defaultConfig() RunnerConfig {
	return RunnerConfig{
		NumWorkers:             4,
		ThreadNamePrefix:       "GraphRunner",
		ReadyQueueCapacity:     16,
		CompletedQueueCapacity: 16,
		EmitEvents:             true,
	}
}

// LoadConfig reads YAML and overrides defaults; empty path = defaults only.
func LoadConfig(path string) RunnerConfig {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.NumWorkers < 0 {
		cfg.NumWorkers = 0
	}
	if cfg.ThreadNamePrefix == "" {
		cfg.ThreadNamePrefix = "GraphRunner"
	}
	if cfg.ReadyQueueCapacity <= 0 {
		cfg.ReadyQueueCapacity = 16
	}
	if cfg.CompletedQueueCapacity <= 0 {
		cfg.CompletedQueueCapacity = 16
	}

	return cfg
}

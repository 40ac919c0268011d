package sched

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingPathReturnsDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_NonexistentFileReturnsDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_OverridesAndClamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	contents := "num_workers: -3\nthread_name_prefix: \"\"\nemit_events: false\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg := LoadConfig(path)

	assert.Equal(t, 0, cfg.NumWorkers) // clamped from -3
	assert.Equal(t, "GraphRunner", cfg.ThreadNamePrefix) // clamped from ""
	assert.False(t, cfg.EmitEvents)
	assert.Equal(t, 16, cfg.ReadyQueueCapacity)
	assert.Equal(t, 16, cfg.CompletedQueueCapacity)
}

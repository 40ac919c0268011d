package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepWork_ZeroIsImmediate(t *testing.T) {
	work := SleepWork(0)
	start := time.Now()
	assert.NoError(t, work(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestSleepWork_CancellationPropagates(t *testing.T) {
	work := SleepWork(500)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := work(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

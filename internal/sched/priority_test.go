package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KnightChaser/graphrunner/internal/graph"
)

type noopTask struct{ graph.BaseTask }

func (*noopTask) RunOnWorkerThread(int) {}

func TestTaskHeap_PopsLowestPriorityValueFirst(t *testing.T) {
	h := newTaskHeap()
	low := &noopTask{}
	mid := &noopTask{}
	high := &noopTask{}

	h.push(high, 9)
	h.push(low, 0)
	h.push(mid, 4)

	got, ok := h.pop()
	require.True(t, ok)
	assert.Same(t, low, got)

	got, ok = h.pop()
	require.True(t, ok)
	assert.Same(t, mid, got)

	got, ok = h.pop()
	require.True(t, ok)
	assert.Same(t, high, got)

	_, ok = h.pop()
	assert.False(t, ok)
}

func TestTaskHeap_EmptyAndSize(t *testing.T) {
	h := newTaskHeap()
	assert.True(t, h.empty())
	assert.Equal(t, 0, h.size())

	h.push(&noopTask{}, 0)
	assert.False(t, h.empty())
	assert.Equal(t, 1, h.size())

	h.clear()
	assert.True(t, h.empty())
}

func TestNamespaceHeap_OrdersByHeadTaskPriority(t *testing.T) {
	nsLow := newTaskNamespace(1)
	nsLow.ready.push(&noopTask{}, 1)

	nsHigh := newTaskNamespace(2)
	nsHigh.ready.push(&noopTask{}, 5)

	h := newNamespaceHeap()
	h.push(nsHigh)
	h.push(nsLow)

	first, ok := h.pop()
	require.True(t, ok)
	assert.Same(t, nsLow, first)

	second, ok := h.pop()
	require.True(t, ok)
	assert.Same(t, nsHigh, second)
}

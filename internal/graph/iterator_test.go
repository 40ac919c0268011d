package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependentIterator_VisitsAllDependents(t *testing.T) {
	g := New()
	a := &fakeTask{}
	b := &fakeTask{}
	c := &fakeTask{}

	ai := g.AddNode(a, 0, 0)
	bi := g.AddNode(b, 0, 1)
	ci := g.AddNode(c, 0, 1)
	g.AddEdge(ai, bi)
	g.AddEdge(ai, ci)

	var seen []Task
	for it := NewDependentIterator(g, a); it.Valid(); it.Next() {
		seen = append(seen, it.Node().Task)
	}

	require.Len(t, seen, 2)
	assert.ElementsMatch(t, []Task{b, c}, seen)
}

func TestDependentIterator_NoDependents(t *testing.T) {
	g := New()
	a := &fakeTask{}
	g.AddNode(a, 0, 0)

	it := NewDependentIterator(g, a)
	assert.False(t, it.Valid())
}

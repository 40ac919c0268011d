package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChain_LinearDependencies(t *testing.T) {
	g, tasks := BuildChain(0, "A", "B", "C")

	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, uint(0), g.Nodes[0].Dependencies)
	assert.Equal(t, uint(1), g.Nodes[1].Dependencies)
	assert.Equal(t, uint(1), g.Nodes[2].Dependencies)
	assert.Equal(t, "A", tasks[0].Name)
	assert.Equal(t, "C", tasks[2].Name)
}

func TestBuildDiamond_Shape(t *testing.T) {
	g, tasks := BuildDiamond()

	require.Len(t, g.Nodes, 4)
	require.Len(t, g.Edges, 4)

	ai := g.IndexOfTask(tasks["A"])
	di := g.IndexOfTask(tasks["D"])
	assert.Equal(t, uint(0), g.Nodes[ai].Priority)
	assert.Equal(t, uint(2), g.Nodes[di].Dependencies)
}

func TestBuildFromYAML_ParsesDependencies(t *testing.T) {
	data := []byte(`
nodes:
  - name: fetch
    priority: 0
  - name: decode
    priority: 1
    depends_on: [fetch]
    sleep_ms: 1
`)

	g, tasks, err := BuildFromYAML(data)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	require.Contains(t, tasks, "fetch")
	require.Contains(t, tasks, "decode")

	decodeIdx := g.IndexOfTask(tasks["decode"])
	assert.Equal(t, uint(1), g.Nodes[decodeIdx].Dependencies)
}

func TestBuildFromYAML_UnknownDependencyErrors(t *testing.T) {
	data := []byte(`
nodes:
  - name: decode
    depends_on: [missing]
`)
	_, _, err := BuildFromYAML(data)
	assert.Error(t, err)
}

package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeEdges(t *testing.T) {
	var n Node
	n.AddEdge(7, 0.5, true, 3)
	n.AddEdge(8, -1.5, false, 4)

	assert.True(t, n.EdgeExists(3))
	assert.True(t, n.EdgeExists(4))
	assert.False(t, n.EdgeExists(5))
	assert.True(t, n.hasActiveEdge(3))
	assert.False(t, n.hasActiveEdge(4))

	w, ok := n.EdgeWeight(4)
	assert.True(t, ok)
	assert.Equal(t, -1.5, w)
	_, ok = n.EdgeWeight(5)
	assert.False(t, ok)
}

func TestNodeToggleReportsChange(t *testing.T) {
	var n Node
	n.AddEdge(0, 1, true, 2)

	assert.False(t, n.EnableEdge(2), "already active")
	assert.True(t, n.DisableEdge(2))
	assert.False(t, n.DisableEdge(2), "already disabled")
	assert.True(t, n.EnableEdge(2))
	assert.False(t, n.DisableEdge(9), "missing edge")
}

func TestNodeRemoveLastEdge(t *testing.T) {
	var n Node
	n.RemoveLastEdge()
	assert.Empty(t, n.Edges)

	n.AddEdge(0, 1, true, 2)
	n.AddEdge(1, 1, true, 3)
	n.RemoveLastEdge()
	assert.Len(t, n.Edges, 1)
	assert.Equal(t, 2, n.Edges[0].To)
}

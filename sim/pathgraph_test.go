package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLineGraph(t *testing.T) *PathGraph {
	t.Helper()
	g := NewPathGraph()
	// Chain P0 through P9 spaced 10m apart, plus a 15m shortcut P0-P9.
	points := []PointID{"P0", "P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9"}
	for i := 0; i+1 < len(points); i++ {
		require.NoError(t, g.AddEdge(points[i], points[i+1], 10))
	}
	require.NoError(t, g.AddEdge("P0", "P9", 15))
	return g
}

func TestPathGraph_DirectEdgeDistance(t *testing.T) {
	g := buildLineGraph(t)

	d, err := g.Distance("P0", "P1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, d)
}

func TestPathGraph_ShortcutBeatsChain(t *testing.T) {
	g := buildLineGraph(t)

	// Chain distance P0 -> P9 is 90m; the direct edge is 15m.
	d, err := g.Distance("P0", "P9")
	require.NoError(t, err)
	assert.Equal(t, 15.0, d)

	// P0 -> P7 via the shortcut (15 + 10 + 10) beats the chain (70).
	d, err = g.Distance("P0", "P7")
	require.NoError(t, err)
	assert.Equal(t, 35.0, d)
}

func TestPathGraph_PathEndpointsIncluded(t *testing.T) {
	g := buildLineGraph(t)

	path, dist, err := g.Path("P0", "P7")
	require.NoError(t, err)
	assert.Equal(t, []PointID{"P0", "P9", "P8", "P7"}, path)
	assert.Equal(t, 35.0, dist)
}

func TestPathGraph_SamePointZeroDistance(t *testing.T) {
	g := buildLineGraph(t)

	d, err := g.Distance("P3", "P3")
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	path, dist, err := g.Path("P3", "P3")
	require.NoError(t, err)
	assert.Equal(t, []PointID{"P3"}, path)
	assert.Equal(t, 0.0, dist)
}

func TestPathGraph_UnknownPoint(t *testing.T) {
	g := buildLineGraph(t)

	_, err := g.Distance("P0", "P99")
	assert.True(t, errors.Is(err, ErrUnknownPoint))

	_, err = g.Distance("P99", "P0")
	assert.True(t, errors.Is(err, ErrUnknownPoint))
}

func TestPathGraph_DisconnectedPoints(t *testing.T) {
	g := NewPathGraph()
	require.NoError(t, g.AddEdge("A", "B", 5))
	g.AddPoint("C")

	_, err := g.Distance("A", "C")
	assert.True(t, errors.Is(err, ErrNoPath))
}

func TestPathGraph_AddEdgeValidation(t *testing.T) {
	g := NewPathGraph()

	assert.Error(t, g.AddEdge("A", "A", 5), "self edge")
	assert.Error(t, g.AddEdge("A", "B", 0), "zero distance")
	assert.Error(t, g.AddEdge("A", "B", -3), "negative distance")
}

func TestPathGraph_PointsSorted(t *testing.T) {
	g := NewPathGraph()
	require.NoError(t, g.AddEdge("P3", "P1", 1))
	require.NoError(t, g.AddEdge("P1", "P0", 1))
	require.NoError(t, g.AddEdge("P0", "P2", 1))

	assert.Equal(t, []PointID{"P0", "P1", "P2", "P3"}, g.Points())
}

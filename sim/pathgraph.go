package sim

import (
	"fmt"
	"math"
	"sort"
)

// PointID identifies a layout point, e.g. "P0".
type PointID string

// PathGraph is a weighted undirected graph of layout points. Edge
// weights are distances in meters. AGV travel time and battery cost
// derive from shortest-path distances over this graph.
type PathGraph struct {
	adj map[PointID]map[PointID]float64
}

// NewPathGraph creates an empty path graph.
func NewPathGraph() *PathGraph {
	return &PathGraph{adj: make(map[PointID]map[PointID]float64)}
}

// AddPoint registers a point. Adding an existing point is a no-op.
func (g *PathGraph) AddPoint(p PointID) {
	if _, ok := g.adj[p]; !ok {
		g.adj[p] = make(map[PointID]float64)
	}
}

// AddEdge connects two points bidirectionally with the given distance
// in meters. Both endpoints are registered if missing.
func (g *PathGraph) AddEdge(a, b PointID, meters float64) error {
	if a == b {
		return fmt.Errorf("edge endpoints must differ, got %q twice", a)
	}
	if meters <= 0 || math.IsInf(meters, 0) || math.IsNaN(meters) {
		return fmt.Errorf("edge %s-%s: distance must be positive and finite, got %v", a, b, meters)
	}
	g.AddPoint(a)
	g.AddPoint(b)
	g.adj[a][b] = meters
	g.adj[b][a] = meters
	return nil
}

// HasPoint reports whether p is registered.
func (g *PathGraph) HasPoint(p PointID) bool {
	_, ok := g.adj[p]
	return ok
}

// Points returns all point IDs in lexicographic order.
func (g *PathGraph) Points() []PointID {
	points := make([]PointID, 0, len(g.adj))
	for p := range g.adj {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	return points
}

// Distance returns the shortest-path distance in meters between two
// points. Returns 0 when from == to.
func (g *PathGraph) Distance(from, to PointID) (float64, error) {
	dist, _, err := g.shortestPath(from, to)
	return dist, err
}

// Path returns the shortest path from from to to, inclusive of both
// endpoints, together with its total distance in meters.
func (g *PathGraph) Path(from, to PointID) ([]PointID, float64, error) {
	dist, prev, err := g.shortestPath(from, to)
	if err != nil {
		return nil, 0, err
	}
	path := []PointID{to}
	for cur := to; cur != from; {
		cur = prev[cur]
		path = append(path, cur)
	}
	// Reverse into from → to order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist, nil
}

// shortestPath runs Dijkstra with deterministic tie-breaking. The
// graphs here are tiny (a dozen points per line), so the O(V^2)
// selection loop is simpler than a heap and still instant.
func (g *PathGraph) shortestPath(from, to PointID) (float64, map[PointID]PointID, error) {
	if !g.HasPoint(from) {
		return 0, nil, fmt.Errorf("point %q: %w", from, ErrUnknownPoint)
	}
	if !g.HasPoint(to) {
		return 0, nil, fmt.Errorf("point %q: %w", to, ErrUnknownPoint)
	}
	if from == to {
		return 0, map[PointID]PointID{}, nil
	}

	dist := make(map[PointID]float64, len(g.adj))
	prev := make(map[PointID]PointID, len(g.adj))
	visited := make(map[PointID]bool, len(g.adj))
	points := g.Points()
	for _, p := range points {
		dist[p] = math.Inf(1)
	}
	dist[from] = 0

	for {
		// Pick the unvisited point with the smallest tentative distance.
		// Iterating the sorted point list keeps ties deterministic.
		cur := PointID("")
		best := math.Inf(1)
		for _, p := range points {
			if !visited[p] && dist[p] < best {
				best = dist[p]
				cur = p
			}
		}
		if cur == "" {
			break
		}
		if cur == to {
			return dist[to], prev, nil
		}
		visited[cur] = true

		neighbors := make([]PointID, 0, len(g.adj[cur]))
		for n := range g.adj[cur] {
			neighbors = append(neighbors, n)
		}
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			alt := dist[cur] + g.adj[cur][n]
			if alt < dist[n] {
				dist[n] = alt
				prev[n] = cur
			}
		}
	}

	return 0, nil, fmt.Errorf("%q -> %q: %w", from, to, ErrNoPath)
}

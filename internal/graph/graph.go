// Package graph provides the navigation graph and its shortest-path searches.
//
// Vertices are (spatial node, heading bucket) pairs numbered
// node*numDirections + direction. Adjacency is stored in compressed sparse row
// form: the outgoing edges of vertex v are destinations[offsets[v]:offsets[v+1]]
// with the matching weights. A Graph is immutable once built and safe to share.
package graph

import (
	"cmp"
	"fmt"
	"slices"
)

// Edge is a directed, weighted connection between two vertices. Weights are
// travel times in seconds.
type Edge struct {
	Src    int32
	Dst    int32
	Weight float32
}

// Graph is a CSR adjacency structure.
type Graph struct {
	offsets      []int32 // len V+1
	destinations []int32
	weights      []float32
}

// NewGraph sorts edges by (src, dst) and packs them into CSR arrays. It returns
// an error when an edge references a vertex outside [0, numVertices) or has a
// negative weight.
func NewGraph(numVertices int, edges []Edge) (*Graph, error) {
	if numVertices < 0 {
		return nil, fmt.Errorf("negative vertex count %d", numVertices)
	}
	sorted := slices.Clone(edges)
	for i, e := range sorted {
		if e.Src < 0 || int(e.Src) >= numVertices || e.Dst < 0 || int(e.Dst) >= numVertices {
			return nil, fmt.Errorf("edge %d (%d -> %d) references a vertex outside [0, %d)", i, e.Src, e.Dst, numVertices)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("edge %d (%d -> %d) has negative weight %g", i, e.Src, e.Dst, e.Weight)
		}
	}
	slices.SortStableFunc(sorted, func(a, b Edge) int {
		if c := cmp.Compare(a.Src, b.Src); c != 0 {
			return c
		}
		return cmp.Compare(a.Dst, b.Dst)
	})

	g := &Graph{
		offsets:      make([]int32, numVertices+1),
		destinations: make([]int32, len(sorted)),
		weights:      make([]float32, len(sorted)),
	}
	for i, e := range sorted {
		g.offsets[e.Src+1]++
		g.destinations[i] = e.Dst
		g.weights[i] = e.Weight
	}
	for v := 0; v < numVertices; v++ {
		g.offsets[v+1] += g.offsets[v]
	}
	return g, nil
}

// NumVertices returns V.
func (g *Graph) NumVertices() int { return len(g.offsets) - 1 }

// NumEdges returns E.
func (g *Graph) NumEdges() int { return len(g.destinations) }

// Neighbors returns the destinations and weights of v's outgoing edges. The
// slices alias the graph and must not be modified.
func (g *Graph) Neighbors(v int32) ([]int32, []float32) {
	lo, hi := g.offsets[v], g.offsets[v+1]
	return g.destinations[lo:hi], g.weights[lo:hi]
}

// VertexID combines a spatial node and a heading bucket.
func VertexID(node, direction, numDirections int) int32 {
	return int32(node*numDirections + direction)
}

// SplitVertex is the inverse of VertexID.
func SplitVertex(v int32, numDirections int) (node, direction int) {
	return int(v) / numDirections, int(v) % numDirections
}

package graph

import (
	"container/heap"
	"math"
	"slices"
)

const (
	// NoParent marks a vertex the search never reached.
	NoParent int32 = -1

	// MaxHops bounds the Bellman-Ford frontier rounds.
	MaxHops = 128

	// DefaultMaxExpansions bounds the vertices one A* search may pop.
	DefaultMaxExpansions = 200_000
)

// Heuristic estimates the remaining cost from a vertex to the goal. It must not
// overestimate for A* to return optimal routes.
type Heuristic func(v int32) float32

// Result is the outcome of a search. Parents[v] is the predecessor of v on the
// best known route, NoParent when unreached (and for the start vertex).
type Result struct {
	Parents  []int32
	Weights  []float32 // best known cost, +Inf when unreached
	Found    bool
	Expanded int
}

// Reached reports whether v was reached from start.
func (r Result) Reached(start, v int32) bool {
	return v == start || r.Parents[v] != NoParent
}

// pathNode is an entry of the A* open set.
type pathNode struct {
	vertex int32
	cost   float32 // g
	score  float32 // g + h
	seq    int     // insertion order, breaks score ties
}

type openSet []pathNode

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].score != o[j].score {
		return o[i].score < o[j].score
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x any)   { *o = append(*o, x.(pathNode)) }
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	*o = old[:n-1]
	return item
}

func newResult(n int) Result {
	r := Result{Parents: make([]int32, n), Weights: make([]float32, n)}
	for i := range r.Parents {
		r.Parents[i] = NoParent
		r.Weights[i] = float32(math.Inf(1))
	}
	return r
}

// AStar searches from start to end, skipping routes heavier than maxWeight.
// With a nil heuristic it degenerates to Dijkstra. Score ties pop in insertion
// order, so among equal routes the first one found wins.
func (g *Graph) AStar(start, end int32, maxWeight float32, h Heuristic) Result {
	return g.astar(start, end, maxWeight, h, DefaultMaxExpansions)
}

func (g *Graph) astar(start, end int32, maxWeight float32, h Heuristic, maxExpansions int) Result {
	n := g.NumVertices()
	r := newResult(n)
	if start < 0 || int(start) >= n || end < 0 || int(end) >= n {
		return r
	}
	if h == nil {
		h = func(int32) float32 { return 0 }
	}

	closed := make([]bool, n)
	open := &openSet{}
	seq := 0
	r.Weights[start] = 0
	heap.Push(open, pathNode{vertex: start, cost: 0, score: h(start), seq: seq})

	for open.Len() > 0 && r.Expanded < maxExpansions {
		cur := heap.Pop(open).(pathNode)
		if closed[cur.vertex] || cur.cost > r.Weights[cur.vertex] {
			continue
		}
		closed[cur.vertex] = true
		r.Expanded++
		if cur.vertex == end {
			r.Found = true
			return r
		}

		dsts, ws := g.Neighbors(cur.vertex)
		for i, v := range dsts {
			cost := cur.cost + ws[i]
			if cost > maxWeight || closed[v] || cost >= r.Weights[v] {
				continue
			}
			r.Weights[v] = cost
			r.Parents[v] = cur.vertex
			seq++
			heap.Push(open, pathNode{vertex: v, cost: cost, score: cost + h(v), seq: seq})
		}
	}
	return r
}

// BellmanFord relaxes edges outward from start one frontier at a time, for at
// most MaxHops rounds, dropping routes heavier than maxWeight. Found is true
// when any vertex besides start was reached.
func (g *Graph) BellmanFord(start int32, maxWeight float32) Result {
	n := g.NumVertices()
	r := newResult(n)
	if start < 0 || int(start) >= n {
		return r
	}
	r.Weights[start] = 0

	queued := make([]bool, n)
	frontier := []int32{start}
	for hop := 0; hop < MaxHops && len(frontier) > 0; hop++ {
		var next []int32
		for _, u := range frontier {
			queued[u] = false
		}
		for _, u := range frontier {
			r.Expanded++
			dsts, ws := g.Neighbors(u)
			for i, v := range dsts {
				cost := r.Weights[u] + ws[i]
				if cost > maxWeight || cost >= r.Weights[v] {
					continue
				}
				r.Weights[v] = cost
				r.Parents[v] = u
				r.Found = true
				if !queued[v] {
					queued[v] = true
					next = append(next, v)
				}
			}
		}
		frontier = next
	}
	return r
}

// Route walks Parents back from dst and returns start..dst. It is empty when dst
// was not reached.
func Route(r Result, start, dst int32) []int32 {
	if dst < 0 || int(dst) >= len(r.Parents) {
		return nil
	}
	if dst == start {
		return []int32{start}
	}
	if r.Parents[dst] == NoParent {
		return nil
	}
	var route []int32
	for v := dst; v != NoParent && len(route) <= len(r.Parents); v = r.Parents[v] {
		route = append(route, v)
		if v == start {
			break
		}
	}
	if route[len(route)-1] != start {
		return nil
	}
	slices.Reverse(route)
	return route
}

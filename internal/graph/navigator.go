package graph

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/strike-engine/internal/curve"
	"github.com/cxd309/strike-engine/internal/kinematics"
)

// Options tunes a Navigator. Zero fields take the DefaultOptions value.
type Options struct {
	TopSpeed       float64 // uu/s assumed by the heuristic
	HeuristicSlack float64 // uu/s added to TopSpeed to keep the heuristic admissible
	MaxWeight      float32 // seconds; heavier routes are dropped
	LocalRange     float64 // uu; targets nearer than this use the local table
	LocalSpeed     float64 // uu/s the local table is priced at
	Step           float64 // spacing of waypoint curve samples
	Model          kinematics.MotionModel
}

// DefaultOptions are the navigator settings used by the CLI.
func DefaultOptions() Options {
	return Options{
		TopSpeed:       2300,
		HeuristicSlack: 200,
		MaxWeight:      30,
		LocalRange:     1500,
		LocalSpeed:     1400,
		Step:           curve.DefaultStep,
		Model:          kinematics.GroundModel{},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopSpeed <= 0 {
		o.TopSpeed = d.TopSpeed
	}
	if o.HeuristicSlack < 0 {
		o.HeuristicSlack = 0
	}
	if o.MaxWeight <= 0 {
		o.MaxWeight = d.MaxWeight
	}
	if o.LocalRange < 0 {
		o.LocalRange = 0
	}
	if o.LocalSpeed <= 0 {
		o.LocalSpeed = d.LocalSpeed
	}
	if o.Step <= 0 {
		o.Step = d.Step
	}
	if o.Model == nil {
		o.Model = d.Model
	}
	return o
}

// Navigator answers long range routing queries over a loaded Dataset.
type Navigator struct {
	graph         *Graph
	nodes         *Nodes
	numDirections int
	lut           *LocalLUT
	opts          Options
	log           *slog.Logger
}

// NewNavigator builds the graph, node index and local table from ds. ds is not
// retained.
func NewNavigator(ds *Dataset, opts Options, log *slog.Logger) (*Navigator, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	opts = opts.withDefaults()

	g, err := NewGraph(ds.Meta.NumVertices(), ds.Edges)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	nodes, err := NewNodes(ds.Positions, ds.Normals)
	if err != nil {
		return nil, fmt.Errorf("indexing nodes: %w", err)
	}
	n := &Navigator{
		graph:         g,
		nodes:         nodes,
		numDirections: ds.Meta.NumDirections,
		opts:          opts,
		log:           log,
	}
	if opts.LocalRange > 0 {
		n.lut = NewLocalLUT(opts.Model, opts.LocalSpeed, opts.LocalRange, 16, 16)
	}
	return n, nil
}

// Graph exposes the underlying graph.
func (n *Navigator) Graph() *Graph { return n.graph }

// Nodes exposes the node table.
func (n *Navigator) Nodes() *Nodes { return n.nodes }

// NumDirections is the heading bucket count.
func (n *Navigator) NumDirections() int { return n.numDirections }

// DirectionBucket maps a heading onto one of numDirections buckets, bucket 0
// facing +x and counting counter-clockwise.
func DirectionBucket(tangent mgl64.Vec3, numDirections int) int {
	a := math.Atan2(tangent.Y(), tangent.X())
	if a < 0 {
		a += 2 * math.Pi
	}
	b := int(math.Round(a * float64(numDirections) / (2 * math.Pi)))
	return b % numDirections
}

// Vertex returns the graph vertex nearest to p facing tangent.
func (n *Navigator) Vertex(p, tangent mgl64.Vec3) (int32, bool) {
	node, ok := n.nodes.Nearest(p)
	if !ok {
		return NoParent, false
	}
	return VertexID(int(node), DirectionBucket(tangent, n.numDirections), n.numDirections), true
}

// FindPath routes from start facing startTangent to destination, arriving
// along tangent. The route approaches a point offset uu behind the destination
// before the final straight. The graph decides reachability; when a route
// exists and the move is short enough for the local table, the curve is a
// single arc-line-arc instead of the graph waypoints. The curve is unbaked; it
// is nil with false when the graph has no route.
func (n *Navigator) FindPath(start, startTangent, destination, tangent mgl64.Vec3, offset float64) (*curve.Curve, bool) {
	approach := destination
	if t := tangent.Len(); t > 1e-9 && offset > 0 {
		approach = destination.Sub(tangent.Mul(offset / t))
	}

	from, ok := n.Vertex(start, startTangent)
	if !ok {
		return nil, false
	}
	to, ok := n.Vertex(approach, tangent)
	if !ok {
		return nil, false
	}

	r := n.graph.AStar(from, to, n.opts.MaxWeight, n.heuristic(approach))
	route := Route(r, from, to)
	n.log.Debug("graph search", "from", from, "to", to, "found", r.Found, "expanded", r.Expanded, "hops", len(route))
	if len(route) == 0 {
		return nil, false
	}

	if c, ok := n.localPath(start, startTangent, approach, tangent, destination); ok {
		return c, true
	}

	waypoints := []mgl64.Vec3{start}
	last := -1
	for _, v := range route {
		node, _ := SplitVertex(v, n.numDirections)
		if node == last {
			continue
		}
		last = node
		waypoints = append(waypoints, n.nodes.Position(node))
	}
	waypoints = append(waypoints, approach, destination)
	return curve.NewCurve(curve.Polyline(waypoints, n.opts.Step)), true
}

// localPath is the arc-line-arc shortcut for moves the local table prices.
func (n *Navigator) localPath(start, startTangent, approach, tangent, destination mgl64.Vec3) (*curve.Curve, bool) {
	if n.lut == nil {
		return nil, false
	}
	cost, ok := n.lut.Lookup(start, startTangent, approach, tangent)
	if !ok {
		return nil, false
	}
	d, ok := curve.ArcLineArc(start, startTangent, n.lut.Radius(), approach, tangent, n.lut.Radius())
	if !ok {
		return nil, false
	}
	n.log.Debug("local route", "cost", cost, "length", d.Length)
	pts := curve.Join(d.Points(n.opts.Step), curve.Line(approach, destination, n.opts.Step))
	return curve.NewCurve(pts), true
}

// heuristic returns straight line time to target, memoised per spatial node.
func (n *Navigator) heuristic(target mgl64.Vec3) Heuristic {
	speed := n.opts.TopSpeed + n.opts.HeuristicSlack
	memo := make([]float32, n.nodes.Len())
	for i := range memo {
		memo[i] = -1
	}
	return func(v int32) float32 {
		node, _ := SplitVertex(v, n.numDirections)
		if memo[node] < 0 {
			memo[node] = float32(n.nodes.Position(node).Sub(target).Len() / speed)
		}
		return memo[node]
	}
}

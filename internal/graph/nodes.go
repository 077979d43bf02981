package graph

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	nodeTolerance    = 0.5
)

// Nodes is the spatial node table: one position and surface normal per node,
// indexed by node number.
type Nodes struct {
	positions []mgl64.Vec3
	normals   []mgl64.Vec3
	tree      *rtreego.Rtree
}

type nodeRef struct {
	index int32
	rect  rtreego.Rect
}

func (n nodeRef) Bounds() rtreego.Rect { return n.rect }

// NewNodes indexes positions in an R-tree. normals may be nil, in which case
// every node faces +z.
func NewNodes(positions, normals []mgl64.Vec3) (*Nodes, error) {
	if normals != nil && len(normals) != len(positions) {
		return nil, fmt.Errorf("%d normals for %d positions", len(normals), len(positions))
	}
	if normals == nil {
		normals = make([]mgl64.Vec3, len(positions))
		for i := range normals {
			normals[i] = mgl64.Vec3{0, 0, 1}
		}
	}

	objs := make([]rtreego.Spatial, len(positions))
	for i, p := range positions {
		objs[i] = nodeRef{index: int32(i), rect: rtreego.Point{p.X(), p.Y(), p.Z()}.ToRect(nodeTolerance)}
	}
	return &Nodes{
		positions: positions,
		normals:   normals,
		tree:      rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren, objs...),
	}, nil
}

// Len is the number of nodes.
func (n *Nodes) Len() int { return len(n.positions) }

// Position of node i.
func (n *Nodes) Position(i int) mgl64.Vec3 { return n.positions[i] }

// Normal of node i.
func (n *Nodes) Normal(i int) mgl64.Vec3 { return n.normals[i] }

// Nearest returns the node closest to p. ok is false for an empty table.
func (n *Nodes) Nearest(p mgl64.Vec3) (int32, bool) {
	if len(n.positions) == 0 {
		return -1, false
	}
	s := n.tree.NearestNeighbor(rtreego.Point{p.X(), p.Y(), p.Z()})
	ref, ok := s.(nodeRef)
	if !ok {
		return -1, false
	}
	return ref.index, true
}

// Within returns the nodes whose positions lie inside the axis aligned box of
// half size r around p.
func (n *Nodes) Within(p mgl64.Vec3, r float64) []int32 {
	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{p.X() - r, p.Y() - r, p.Z() - r},
		rtreego.Point{p.X() + r, p.Y() + r, p.Z() + r},
	)
	if err != nil {
		return nil
	}
	hits := n.tree.SearchIntersect(rect)
	out := make([]int32, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(nodeRef).index)
	}
	return out
}

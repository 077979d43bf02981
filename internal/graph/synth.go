package graph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SyntheticOptions shape a generated grid dataset.
type SyntheticOptions struct {
	Cols, Rows  int
	Spacing     float64 // uu between neighbouring nodes
	Directions  int     // heading buckets per node
	Height      float64 // z of every node
	Speed       float64 // uu/s used to price moves
	TurnPenalty float64 // seconds per bucket of heading change
	Isolated    int     // extra nodes with no edges, placed past the grid
}

// Synthetic builds a grid navigation dataset centred on the origin. Each
// vertex moves to any of its eight neighbours whose heading is within one
// bucket, and can rotate in place by one bucket. Isolated nodes follow the grid
// nodes and carry no edges.
func Synthetic(o SyntheticOptions) *Dataset {
	ds := &Dataset{Meta: Meta{NumNodes: o.Cols*o.Rows + o.Isolated, NumDirections: o.Directions}}
	x0 := -float64(o.Cols-1) * o.Spacing / 2
	y0 := -float64(o.Rows-1) * o.Spacing / 2
	node := func(c, r int) int { return r*o.Cols + c }

	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			ds.Positions = append(ds.Positions, mgl64.Vec3{x0 + float64(c)*o.Spacing, y0 + float64(r)*o.Spacing, o.Height})
		}
	}
	for i := 0; i < o.Isolated; i++ {
		x := -x0 + float64(4+i)*o.Spacing
		ds.Positions = append(ds.Positions, mgl64.Vec3{x, 0, o.Height})
	}
	ds.Normals = make([]mgl64.Vec3, len(ds.Positions))
	for i := range ds.Normals {
		ds.Normals[i] = mgl64.Vec3{0, 0, 1}
	}

	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			from := node(c, r)
			for d := 0; d < o.Directions; d++ {
				src := VertexID(from, d, o.Directions)
				for _, turn := range []int{-1, 1} {
					nd := (d + turn + o.Directions) % o.Directions
					ds.Edges = append(ds.Edges, Edge{src, VertexID(from, nd, o.Directions), float32(o.TurnPenalty)})
				}
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						nc, nr := c+dc, r+dr
						if (dc == 0 && dr == 0) || nc < 0 || nc >= o.Cols || nr < 0 || nr >= o.Rows {
							continue
						}
						move := mgl64.Vec3{float64(dc), float64(dr), 0}
						nd := DirectionBucket(move, o.Directions)
						diff := bucketDiff(d, nd, o.Directions)
						if diff > 1 {
							continue
						}
						w := move.Len()*o.Spacing/o.Speed + float64(diff)*o.TurnPenalty
						ds.Edges = append(ds.Edges, Edge{src, VertexID(node(nc, nr), nd, o.Directions), float32(w)})
					}
				}
			}
		}
	}
	ds.Meta.NumEdges = len(ds.Edges)
	return ds
}

func bucketDiff(a, b, n int) int {
	d := int(math.Abs(float64(a - b)))
	return min(d, n-d)
}

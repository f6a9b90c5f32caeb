package levelset

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/soypat/sdfgen/internal/vecf32"
)

// kdPoint adapts a vecf32.Vec to gonum's kdtree.Comparable, grounded on
// soypat-sdf/helpers/sdfexp/spatial3.go's meshTriangle.Compare/Distance
// pattern but reduced to bare points: it is used only to cross-check that
// the level set never reports a farther distance than the nearest mesh
// vertex, which is an upper bound on the true distance to the mesh.
type kdPoint struct{ P vecf32.Vec }

func (p *kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*kdPoint)
	switch d {
	case 0:
		return float64(p.P.X - q.P.X)
	case 1:
		return float64(p.P.Y - q.P.Y)
	case 2:
		return float64(p.P.Z - q.P.Z)
	}
	panic("unreachable")
}

func (p *kdPoint) Dims() int { return 3 }

func (p *kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(*kdPoint)
	return float64(vecf32.Norm2(vecf32.Sub(p.P, q.P)))
}

type kdPoints []kdPoint

func (s kdPoints) Len() int                   { return len(s) }
func (s kdPoints) Index(i int) kdtree.Comparable { return &s[i] }
func (s kdPoints) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), pts: s}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
func (s kdPoints) Slice(start, end int) kdtree.Interface { return s[start:end] }

type kdPlane struct {
	dim int
	pts kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	return p.pts[i].Compare(&p.pts[j], kdtree.Dim(p.dim)) < 0
}
func (p kdPlane) Swap(i, j int) { p.pts[i], p.pts[j] = p.pts[j], p.pts[i] }
func (p kdPlane) Len() int      { return len(p.pts) }
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.pts = p.pts[start:end]
	return p
}

// nearestVertexDistance returns the Euclidean distance from p to the
// nearest vertex of mesh's vertex set, via a gonum kd-tree.
func nearestVertexDistance(vertices []vecf32.Vec, p vecf32.Vec) float32 {
	pts := make(kdPoints, len(vertices))
	for i, v := range vertices {
		pts[i] = kdPoint{P: v}
	}
	tree := kdtree.New(pts, false)
	_, distSq := tree.Nearest(&kdPoint{P: p})
	return float32(math.Sqrt(distSq))
}

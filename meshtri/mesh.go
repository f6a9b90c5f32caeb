// Package meshtri is the immutable triangle-mesh data model consumed by
// the levelset core, plus the concrete mesh-ingestion collaborators (OBJ,
// STL) a complete repository needs to be useful end to end.
package meshtri

import (
	"fmt"

	"github.com/soypat/sdfgen/internal/vecf32"
)

// Triangle holds the three vertex indices of a mesh face, in winding order.
type Triangle [3]uint32

// Mesh is an immutable, read-only-borrowed triangle mesh: an ordered vertex
// list and an ordered triangle list indexing into it.
type Mesh struct {
	Vertices  []vecf32.Vec
	Triangles []Triangle
	Min, Max  vecf32.Vec
}

// New builds a Mesh from vertices and triangles, validating indices and
// computing the bounding box (min <= v <= max componentwise for every
// vertex).
func New(vertices []vecf32.Vec, triangles []Triangle) (Mesh, error) {
	if len(vertices) == 0 || len(triangles) == 0 {
		return Mesh{}, fmt.Errorf("meshtri: empty mesh (vertices=%d triangles=%d)", len(vertices), len(triangles))
	}
	bb := vecf32.EmptyBox()
	for _, v := range vertices {
		bb = bb.Include(v)
	}
	nv := uint32(len(vertices))
	for ti, t := range triangles {
		for _, idx := range t {
			if idx >= nv {
				return Mesh{}, fmt.Errorf("meshtri: triangle %d references vertex index %d, have %d vertices", ti, idx, nv)
			}
		}
	}
	return Mesh{
		Vertices:  vertices,
		Triangles: triangles,
		Min:       bb.Min,
		Max:       bb.Max,
	}, nil
}

// Positions returns the three vertex positions of triangle t.
func (m Mesh) Positions(t Triangle) (a, b, c vecf32.Vec) {
	return m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
}

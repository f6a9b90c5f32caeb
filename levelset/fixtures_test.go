package levelset

import (
	"math"

	"github.com/soypat/sdfgen/internal/vecf32"
	"github.com/soypat/sdfgen/meshtri"
)

// unitCube returns a closed, 12-triangle axis-aligned cube mesh centered
// at the origin with the given half-width.
func unitCube(half float32) meshtri.Mesh {
	v := []vecf32.Vec{
		{X: -half, Y: -half, Z: -half}, // 0
		{X: half, Y: -half, Z: -half},  // 1
		{X: half, Y: half, Z: -half},   // 2
		{X: -half, Y: half, Z: -half},  // 3
		{X: -half, Y: -half, Z: half},  // 4
		{X: half, Y: -half, Z: half},   // 5
		{X: half, Y: half, Z: half},    // 6
		{X: -half, Y: half, Z: half},   // 7
	}
	quads := [6][4]uint32{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
	}
	tris := make([]meshtri.Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris, meshtri.Triangle{q[0], q[1], q[2]}, meshtri.Triangle{q[0], q[2], q[3]})
	}
	m, err := meshtri.New(v, tris)
	if err != nil {
		panic(err) // fixture construction is a programmer error if it fails.
	}
	return m
}

// tetrahedron returns a regular-ish 4-triangle solid centered near the
// origin, used as a minimal non-cuboid closed mesh.
func tetrahedron(scale float32) meshtri.Mesh {
	v := []vecf32.Vec{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
	for i := range v {
		v[i] = vecf32.Scale(scale, v[i])
	}
	tris := []meshtri.Triangle{
		{0, 1, 2},
		{0, 3, 1},
		{0, 2, 3},
		{1, 3, 2},
	}
	m, err := meshtri.New(v, tris)
	if err != nil {
		panic(err)
	}
	return m
}

// icosphere returns a closed, roughly-spherical mesh of the given radius
// built by subdividing an octahedron once; coarse, but closed and
// non-axis-aligned, which is what the narrow-band/sign tests need.
func icosphere(radius float32) meshtri.Mesh {
	v := []vecf32.Vec{
		{X: 1, Y: 0, Z: 0}, {X: -1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0}, {X: 0, Y: -1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: -1},
	}
	tris := []meshtri.Triangle{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	}
	mid := func(a, b vecf32.Vec) vecf32.Vec {
		m := vecf32.Scale(0.5, vecf32.Add(a, b))
		n := vecf32.Norm(m)
		if n < 1e-12 {
			return m
		}
		return vecf32.Scale(1/n, m)
	}
	type edge struct{ a, b uint32 }
	cache := map[edge]uint32{}
	getMid := func(a, b uint32) uint32 {
		e := edge{a, b}
		if a > b {
			e = edge{b, a}
		}
		if idx, ok := cache[e]; ok {
			return idx
		}
		v = append(v, mid(v[a], v[b]))
		idx := uint32(len(v) - 1)
		cache[e] = idx
		return idx
	}
	var refined []meshtri.Triangle
	for _, t := range tris {
		ab := getMid(t[0], t[1])
		bc := getMid(t[1], t[2])
		ca := getMid(t[2], t[0])
		refined = append(refined,
			meshtri.Triangle{t[0], ab, ca},
			meshtri.Triangle{ab, t[1], bc},
			meshtri.Triangle{ca, bc, t[2]},
			meshtri.Triangle{ab, bc, ca},
		)
	}
	for i := range v {
		v[i] = vecf32.Scale(radius, v[i])
	}
	m, err := meshtri.New(v, refined)
	if err != nil {
		panic(err)
	}
	return m
}

// bruteForceUnsignedDistance computes the unsigned distance from p to mesh
// by scanning every triangle for the closest point (via
// PointTriangleDistance), used as a cross-check oracle against the level
// set's narrow-band values.
func bruteForceUnsignedDistance(mesh meshtri.Mesh, p vecf32.Vec) float32 {
	best := float32(math.MaxFloat32)
	for _, t := range mesh.Triangles {
		a, b, c := mesh.Positions(t)
		d := PointTriangleDistance(p, a, b, c)
		if d < best {
			best = d
		}
	}
	return best
}

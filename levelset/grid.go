// Package levelset is the signed distance field generation core: given a
// triangle mesh and a regular 3D grid, it computes the signed Euclidean
// distance to the mesh surface for every grid cell.
package levelset

import (
	"errors"

	"github.com/soypat/sdfgen/internal/vecf32"
)

// GridSpec is the immutable description of the sampling grid. Cell (i,j,k)
// is sampled at world point Origin + Dx*(i,j,k).
type GridSpec struct {
	Origin     vecf32.Vec
	Dx         float32
	Nx, Ny, Nz int
}

// ErrGridTooSmall is returned when a grid has zero cells along some axis.
var ErrGridTooSmall = errors.New("levelset: grid has zero cells (nx*ny*nz == 0)")

// ErrBadDx is returned when the cell spacing is not strictly positive.
var ErrBadDx = errors.New("levelset: dx must be > 0")

func (g GridSpec) validate() error {
	if g.Nx <= 0 || g.Ny <= 0 || g.Nz <= 0 {
		return ErrGridTooSmall
	}
	if g.Dx <= 0 {
		return ErrBadDx
	}
	return nil
}

// cellCount returns nx*ny*nz.
func (g GridSpec) cellCount() int { return g.Nx * g.Ny * g.Nz }

// Index returns the flat array index for cell (i,j,k), layout i + nx*(j + ny*k).
func (g GridSpec) Index(i, j, k int) int {
	return i + g.Nx*(j+g.Ny*k)
}

// World returns the world-space sample point for cell (i,j,k).
func (g GridSpec) World(i, j, k int) vecf32.Vec {
	return vecf32.Add(g.Origin, vecf32.Scale(g.Dx, vecf32.Vec{X: float32(i), Y: float32(j), Z: float32(k)}))
}

// noSentinelTri marks a cell whose closest triangle has not yet been set.
const noSentinelTri int32 = -1

// grid bundles the mutable arrays owned by a single MakeLevelSet3 invocation:
// Phi, XC, and ClosestTri. ClosestTri is allocated only when withClosestTri
// is true (CPU executor).
type grid struct {
	spec GridSpec

	phi []float32 // Phi, dense (nx,ny,nz)
	xc  []int32   // XC, dense (nx,ny,nz)
	tri []int32   // ClosestTri, dense (nx,ny,nz); nil unless requested
}

// newGrid allocates Phi/XC (and, if withClosestTri, ClosestTri): every
// phi[c] initialized to (nx+ny+nz)*dx, every xc[c] to 0, every
// closest_tri[c] to the sentinel.
func newGrid(spec GridSpec, withClosestTri bool) (*grid, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	n := spec.cellCount()
	g := &grid{
		spec: spec,
		phi:  make([]float32, n),
		xc:   make([]int32, n),
	}
	sentinel := float32(spec.Nx+spec.Ny+spec.Nz) * spec.Dx
	for i := range g.phi {
		g.phi[i] = sentinel
	}
	if withClosestTri {
		g.tri = make([]int32, n)
		for i := range g.tri {
			g.tri[i] = noSentinelTri
		}
	}
	return g, nil
}

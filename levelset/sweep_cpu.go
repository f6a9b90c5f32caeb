package levelset

import (
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/soypat/sdfgen/meshtri"
)

// sweepCPU implements the CPU Gauss-Seidel fast-sweeping Eikonal solver:
// 2 passes, each running all 8 sign combinations of
// (±1,±1,±1) as a full grid sweep ordered so that, within a sweep, a
// cell's three face-neighbors in the "upwind" (already-visited) direction
// are always processed first. Cells sharing a wavefront (i*si+j*sj+k*sk
// constant) have no dependency on one another and are updated in
// parallel; wavefronts themselves are processed in strict sequence
// (Gauss-Seidel, not Jacobi).
func sweepCPU(mesh meshtri.Mesh, g *grid) {
	signs := [2]int{-1, 1}
	for pass := 0; pass < 2; pass++ {
		for _, si := range signs {
			for _, sj := range signs {
				for _, sk := range signs {
					sweepOnce(mesh, g, si, sj, sk)
				}
			}
		}
	}
}

// sweepOnce runs a single sweep direction (si,sj,sk ∈ {-1,+1}) over every
// cell, grouping cells into wavefronts of constant si*i+sj*j+sk*k so that
// each wavefront's cells can be updated concurrently.
func sweepOnce(mesh meshtri.Mesh, g *grid, si, sj, sk int) {
	spec := g.spec
	// Wavefront coordinate w = si*i + sj*j + sk*k ranges over
	// [wmin, wmax]; process in increasing w so a cell's upwind neighbors
	// (at w-1) are always already updated this sweep.
	wmin, wmax := wavefrontRange(spec.Nx, spec.Ny, spec.Nz, si, sj, sk)

	numThreads := runtime.GOMAXPROCS(0)
	if numThreads < 1 {
		numThreads = 1
	}

	for w := wmin; w <= wmax; w++ {
		cells := wavefrontCells(spec.Nx, spec.Ny, spec.Nz, si, sj, sk, w)
		if len(cells) == 0 {
			continue
		}
		nt := numThreads
		if nt > len(cells) {
			nt = len(cells)
		}
		var wg sync.WaitGroup
		for t := 0; t < nt; t++ {
			wg.Add(1)
			go func(t int) {
				defer wg.Done()
				for ci := t; ci < len(cells); ci += nt {
					c := cells[ci]
					updateCell(mesh, g, c[0], c[1], c[2])
				}
			}(t)
		}
		wg.Wait()
	}
}

func wavefrontRange(nx, ny, nz, si, sj, sk int) (wmin, wmax int) {
	corners := [8][3]int{
		{0, 0, 0}, {nx - 1, 0, 0}, {0, ny - 1, 0}, {0, 0, nz - 1},
		{nx - 1, ny - 1, 0}, {nx - 1, 0, nz - 1}, {0, ny - 1, nz - 1}, {nx - 1, ny - 1, nz - 1},
	}
	wmin = si*corners[0][0] + sj*corners[0][1] + sk*corners[0][2]
	wmax = wmin
	for _, c := range corners {
		w := si*c[0] + sj*c[1] + sk*c[2]
		if w < wmin {
			wmin = w
		}
		if w > wmax {
			wmax = w
		}
	}
	return wmin, wmax
}

// wavefrontCells enumerates all (i,j,k) with si*i+sj*j+sk*k == w.
func wavefrontCells(nx, ny, nz, si, sj, sk, w int) [][3]int {
	var cells [][3]int
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				if si*i+sj*j+sk*k == w {
					cells = append(cells, [3]int{i, j, k})
				}
			}
		}
	}
	return cells
}

// updateCell applies the Eikonal upwind update to cell (i,j,k), using the
// smaller-magnitude neighbor along each axis, solving the 1D/2D/3D
// discriminant formulas in order of increasing dimension, and never
// increasing |phi|. When ClosestTri records a witness triangle for the
// smallest neighbor, the exact distance to that triangle is used instead
// of the upwind estimate, which can fall below the true distance. The sign
// of phi is preserved throughout; only its magnitude is subject to the
// sweep.
func updateCell(mesh meshtri.Mesh, g *grid, i, j, k int) {
	spec := g.spec
	idx := spec.Index(i, j, k)
	dx := spec.Dx

	type neighbor struct {
		val float32
		tri int32
		ok  bool
	}

	var nbrs [3]neighbor
	if i-1 >= 0 {
		n := spec.Index(i-1, j, k)
		nbrs[0] = neighbor{val: math32.Abs(g.phi[n]), ok: true}
		if g.tri != nil {
			nbrs[0].tri = g.tri[n]
		}
	}
	if i+1 < spec.Nx {
		n := spec.Index(i+1, j, k)
		v := math32.Abs(g.phi[n])
		if !nbrs[0].ok || v < nbrs[0].val {
			nbrs[0] = neighbor{val: v, ok: true}
			if g.tri != nil {
				nbrs[0].tri = g.tri[n]
			}
		}
	}
	if j-1 >= 0 {
		n := spec.Index(i, j-1, k)
		nbrs[1] = neighbor{val: math32.Abs(g.phi[n]), ok: true}
		if g.tri != nil {
			nbrs[1].tri = g.tri[n]
		}
	}
	if j+1 < spec.Ny {
		n := spec.Index(i, j+1, k)
		v := math32.Abs(g.phi[n])
		if !nbrs[1].ok || v < nbrs[1].val {
			nbrs[1] = neighbor{val: v, ok: true}
			if g.tri != nil {
				nbrs[1].tri = g.tri[n]
			}
		}
	}
	if k-1 >= 0 {
		n := spec.Index(i, j, k-1)
		nbrs[2] = neighbor{val: math32.Abs(g.phi[n]), ok: true}
		if g.tri != nil {
			nbrs[2].tri = g.tri[n]
		}
	}
	if k+1 < spec.Nz {
		n := spec.Index(i, j, k+1)
		v := math32.Abs(g.phi[n])
		if !nbrs[2].ok || v < nbrs[2].val {
			nbrs[2] = neighbor{val: v, ok: true}
			if g.tri != nil {
				nbrs[2].tri = g.tri[n]
			}
		}
	}

	// Sort the up-to-3 available neighbors ascending by value.
	avail := nbrs[:0:0]
	for _, n := range nbrs {
		if n.ok {
			avail = append(avail, n)
		}
	}
	if len(avail) == 0 {
		return
	}
	for a := 1; a < len(avail); a++ {
		for b := a; b > 0 && avail[b].val < avail[b-1].val; b-- {
			avail[b], avail[b-1] = avail[b-1], avail[b]
		}
	}

	candidate := avail[0].val + dx
	witness := avail[0].tri
	if len(avail) >= 2 {
		a, b := avail[0].val, avail[1].val
		disc := 2*dx*dx - (a-b)*(a-b)
		if disc >= 0 {
			t := (a + b + math32.Sqrt(disc)) / 2
			if t <= b+1e-6 || len(avail) == 2 {
				if t < candidate {
					candidate = t
					witness = avail[0].tri
				}
			} else if len(avail) == 3 {
				// Falls through to the 3D formula below; 2D candidate
				// isn't consistent (t > c would contradict upwind order).
			}
		}
	}
	if len(avail) == 3 {
		a, b, c := avail[0].val, avail[1].val, avail[2].val
		sum := a + b + c
		sumSq := a*a + b*b + c*c
		disc := sum*sum - 3*(sumSq-dx*dx)
		if disc >= 0 {
			t := (sum + math32.Sqrt(disc)) / 3
			if t >= c && t < candidate {
				candidate = t
				witness = avail[0].tri
			}
		}
	}

	hasWitness := g.tri != nil && witness != noSentinelTri
	if hasWitness {
		candidate = refineAgainstWitness(mesh, g, i, j, k, witness)
	}
	cur := math32.Abs(g.phi[idx])
	if candidate >= cur {
		return
	}
	sign := float32(1)
	if g.phi[idx] < 0 {
		sign = -1
	}
	if hasWitness {
		g.tri[idx] = witness
	}
	g.phi[idx] = sign * candidate
}

// refineAgainstWitness returns the exact point-triangle distance from cell
// (i,j,k) to the witness neighbor's closest triangle; updateCell uses it in
// place of the Eikonal estimate.
func refineAgainstWitness(mesh meshtri.Mesh, g *grid, i, j, k int, witness int32) float32 {
	tri := mesh.Triangles[witness]
	a, b, c := mesh.Positions(tri)
	p := g.spec.World(i, j, k)
	return PointTriangleDistance(p, a, b, c)
}

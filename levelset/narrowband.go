package levelset

import (
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/soypat/sdfgen/internal/vecf32"
	"github.com/soypat/sdfgen/meshtri"
)

// runNarrowBandCPU partitions triangles across worker goroutines, each
// writing to a private shard grid (its own Phi/XC/ClosestTri arrays,
// avoiding any shared-memory race), after which a single reducer merges
// shards by per-cell minimum (Phi, with matching ClosestTri) and per-cell
// sum (XC). Because per-cell min and sum are commutative and associative,
// the merged result does not depend on how triangles were split across
// shards. This is what gives the CPU executor its thread-count invariance.
func runNarrowBandCPU(mesh meshtri.Mesh, g *grid, exactBand, numThreads int) {
	nt := len(mesh.Triangles)
	if nt == 0 {
		return
	}
	if numThreads <= 0 {
		numThreads = runtime.GOMAXPROCS(0)
	}
	if numThreads > nt {
		numThreads = nt
	}
	if numThreads < 1 {
		numThreads = 1
	}

	withTri := g.tri != nil
	shards := make([]*grid, numThreads)
	var wg sync.WaitGroup
	for w := 0; w < numThreads; w++ {
		sh, err := newGrid(g.spec, withTri)
		if err != nil {
			panic(err) // g.spec already validated when g was allocated.
		}
		shards[w] = sh
		wg.Add(1)
		go func(w int, sh *grid) {
			defer wg.Done()
			for ti := w; ti < nt; ti += numThreads {
				processTriangle(mesh, sh, ti, exactBand)
			}
		}(w, sh)
	}
	wg.Wait()

	reduceShards(g, shards)
}

// reduceShards merges per-worker shard grids into g by per-cell minimum
// (Phi/ClosestTri) and per-cell sum (XC).
func reduceShards(g *grid, shards []*grid) {
	withTri := g.tri != nil
	for c := range g.phi {
		best := shards[0].phi[c]
		var bestTri int32
		if withTri {
			bestTri = shards[0].tri[c]
		}
		var sumXC int32
		for _, sh := range shards {
			sumXC += sh.xc[c]
		}
		for w := 1; w < len(shards); w++ {
			// Equal distances keep the lowest triangle index, which is what
			// a single worker visiting triangles in order keeps.
			if shards[w].phi[c] < best || (withTri && shards[w].phi[c] == best && shards[w].tri[c] < bestTri) {
				best = shards[w].phi[c]
				if withTri {
					bestTri = shards[w].tri[c]
				}
			}
		}
		g.phi[c] = best
		g.xc[c] = sumXC
		if withTri {
			g.tri[c] = bestTri
		}
	}
}

// processTriangle performs one triangle's contribution: the distance AABB
// update and the crossing AABB update.
func processTriangle(mesh meshtri.Mesh, g *grid, triIdx, exactBand int) {
	tri := mesh.Triangles[triIdx]
	a, b, c := mesh.Positions(tri)
	spec := g.spec

	fa := worldToGrid(spec, a)
	fb := worldToGrid(spec, b)
	fc := worldToGrid(spec, c)

	updateDistanceAABB(g, a, b, c, fa, fb, fc, triIdx, exactBand)
	updateCrossingAABB(g, fa, fb, fc)
}

func worldToGrid(spec GridSpec, v vecf32.Vec) vecf32.Vec {
	return vecf32.Scale(1/spec.Dx, vecf32.Sub(v, spec.Origin))
}

func updateDistanceAABB(g *grid, a, b, c, fa, fb, fc vecf32.Vec, triIdx, exactBand int) {
	spec := g.spec
	i0 := clampInt(floori(min3(fa.X, fb.X, fc.X))-exactBand, 0, spec.Nx-1)
	i1 := clampInt(ceili(max3(fa.X, fb.X, fc.X))+exactBand, 0, spec.Nx-1)
	j0 := clampInt(floori(min3(fa.Y, fb.Y, fc.Y))-exactBand, 0, spec.Ny-1)
	j1 := clampInt(ceili(max3(fa.Y, fb.Y, fc.Y))+exactBand, 0, spec.Ny-1)
	k0 := clampInt(floori(min3(fa.Z, fb.Z, fc.Z))-exactBand, 0, spec.Nz-1)
	k1 := clampInt(ceili(max3(fa.Z, fb.Z, fc.Z))+exactBand, 0, spec.Nz-1)

	for k := k0; k <= k1; k++ {
		for j := j0; j <= j1; j++ {
			for i := i0; i <= i1; i++ {
				p := spec.World(i, j, k)
				d := PointTriangleDistance(p, a, b, c)
				idx := spec.Index(i, j, k)
				if d < g.phi[idx] {
					g.phi[idx] = d
					if g.tri != nil {
						g.tri[idx] = int32(triIdx)
					}
				}
			}
		}
	}
}

func updateCrossingAABB(g *grid, fa, fb, fc vecf32.Vec) {
	spec := g.spec
	j0 := clampInt(ceili(min3(fa.Y, fb.Y, fc.Y)), 0, spec.Ny-1)
	j1 := clampInt(floori(max3(fa.Y, fb.Y, fc.Y)), 0, spec.Ny-1)
	k0 := clampInt(ceili(min3(fa.Z, fb.Z, fc.Z)), 0, spec.Nz-1)
	k1 := clampInt(floori(max3(fa.Z, fb.Z, fc.Z)), 0, spec.Nz-1)

	for k := k0; k <= k1; k++ {
		for j := j0; j <= j1; j++ {
			alpha, beta, gamma, ok := PointInTriangle2D(
				float32(j), float32(k),
				fa.Y, fa.Z, fb.Y, fb.Z, fc.Y, fc.Z,
			)
			if !ok {
				continue
			}
			fi := alpha*fa.X + beta*fb.X + gamma*fc.X
			istar := ceili(fi)
			switch {
			case istar < 0:
				g.xc[spec.Index(0, j, k)]++
			case istar < spec.Nx:
				g.xc[spec.Index(istar, j, k)]++
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floori(v float32) int { return int(math32.Floor(v)) }
func ceili(v float32) int  { return int(math32.Ceil(v)) }

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

package levelset

import (
	"runtime"
	"sync"
)

// signCorrect walks each grid column along x (fixed j,k) from i=0 to nx-1,
// accumulating the running sum of XC crossing counts. Wherever that running
// sum is odd, the cell lies inside the mesh and Phi is negated. A cell
// exactly on the surface (Phi == 0) stays zero regardless of parity;
// negating zero is a no-op, so the on-surface convention falls out of the
// arithmetic rather than needing a special case.
//
// Columns are independent of one another, so they are split across
// goroutines; this parallelization is itself thread-count invariant since
// each column's result depends only on its own XC values, never on
// another column's or another run's scheduling.
func signCorrect(g *grid) {
	signCorrectFields(g.spec, g.phi, g.xc)
}

// signCorrectFields is signCorrect's logic lifted to operate on raw
// phi/xc slices instead of a *grid, so that a backend producing its own
// dense phi/xc (the accelerator, which has no *grid of its own) can share
// the same column scan and parity rule as the CPU path.
func signCorrectFields(spec GridSpec, phi []float32, xc []int32) {
	numThreads := runtime.GOMAXPROCS(0)
	total := spec.Ny * spec.Nz
	if numThreads > total {
		numThreads = total
	}
	if numThreads < 1 {
		numThreads = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < numThreads; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for col := w; col < total; col += numThreads {
				j := col % spec.Ny
				k := col / spec.Ny
				signCorrectColumnFields(spec, phi, xc, j, k)
			}
		}(w)
	}
	wg.Wait()
}

func signCorrectColumnFields(spec GridSpec, phi []float32, xc []int32, j, k int) {
	var running int32
	for i := 0; i < spec.Nx; i++ {
		idx := spec.Index(i, j, k)
		running += xc[idx]
		if running%2 != 0 {
			phi[idx] = -phi[idx]
		}
	}
}

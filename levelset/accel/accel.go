// Package accel is the accelerator (GPU compute) backend for levelset. It
// implements narrow-band scatter and the Jacobi Eikonal sweep as OpenGL 4.6
// compute shaders, compiling a glgl program and exchanging data through
// bound images. It registers itself with levelset via RegisterAccelerator
// on import, so application code that never imports this package gets a
// pure-CPU, pure-stdlib-plus-math32 build with no OpenGL dependency at all.
package accel

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/sdfgen/internal/vecf32"
	"github.com/soypat/sdfgen/levelset"
	"github.com/soypat/sdfgen/meshtri"
	"github.com/soypat/sdfgen/sdflog"
)

func init() {
	runtime.LockOSThread() // GL contexts are bound to the OS thread that created them.
	levelset.RegisterAccelerator(run)
}

var (
	initOnce    sync.Once
	initErr     error
	terminateFn func()
)

// Available reports whether a GPU compute context can be brought up on
// this machine. It is safe to call repeatedly; context creation is
// attempted only once.
func Available() bool {
	ensureContext()
	return initErr == nil
}

func ensureContext() {
	initOnce.Do(func() {
		_, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
			Title:   "sdfgen-accel",
			Version: [2]int{4, 6},
			Width:   1,
			Height:  1,
		})
		if err != nil {
			initErr = fmt.Errorf("accel: GL context init: %w", err)
			return
		}
		terminateFn = terminate
		sdflog.Logger().Info("accelerator context initialized")
	})
}

// gridParams packs the eight scalars every compute shader in this package
// needs into the two texels of a 2x1 RGBA32F texture, since glgl's confirmed API
// surface is image-based rather than uniform-buffer-based (see shaders.go).
type gridParams struct {
	nx, ny, nz float32
	dx         float32
	origin     vecf32.Vec
	exactBand  float32
}

func (p gridParams) rows() [2][4]float32 {
	return [2][4]float32{
		{p.nx, p.ny, p.nz, p.dx},
		{p.origin.X, p.origin.Y, p.origin.Z, p.exactBand},
	}
}

// run implements the function levelset.RegisterAccelerator expects:
// narrow-band scatter (distance and crossing-count) followed by
// 2*max(nx,ny,nz) Jacobi iterations, returning the dense phi field and XC
// crossing-count array indexed i + nx*(j + ny*k), unsigned; the caller
// applies sign correction. It does not compute ClosestTri, which is
// CPU-only, so the accelerator path cannot perform the CPU sweep's
// neighbor-witness refinement; this is the documented source of the
// bounded disagreement between backends.
func run(mesh meshtri.Mesh, spec levelset.GridSpec, exactBand int) ([]float32, []int32, error) {
	ensureContext()
	if initErr != nil {
		return nil, nil, initErr
	}

	params := gridParams{
		nx: float32(spec.Nx), ny: float32(spec.Ny), nz: float32(spec.Nz),
		dx:        spec.Dx,
		origin:    spec.Origin,
		exactBand: float32(exactBand),
	}

	phi, xc, err := scatterNarrowBand(mesh, spec, params)
	if err != nil {
		return nil, nil, fmt.Errorf("accel: narrow band: %w", err)
	}

	iterations := 2 * maxInt(maxInt(spec.Nx, spec.Ny), spec.Nz)
	phi, err = sweepJacobi(spec, params, phi, iterations)
	if err != nil {
		return nil, nil, fmt.Errorf("accel: eikonal sweep: %w", err)
	}
	return phi, xc, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

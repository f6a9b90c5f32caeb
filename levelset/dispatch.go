package levelset

import (
	"errors"
	"fmt"

	"github.com/soypat/sdfgen/meshtri"
)

// Backend selects which executor computes the narrow-band and Eikonal
// stages: the CPU shard-reduce narrow band with Gauss-Seidel fast sweep,
// or the accelerator's atomic narrow band with Jacobi iteration. Both
// share the same sign-correction stage.
type Backend int

const (
	// Auto tries the accelerator first and falls back to CPU when none is
	// registered or it fails to initialize. No process-global "last backend
	// used" state is kept; the choice actually made is returned in Result.
	Auto Backend = iota
	CPU
	Accelerator
)

func (b Backend) String() string {
	switch b {
	case CPU:
		return "cpu"
	case Accelerator:
		return "accelerator"
	default:
		return "auto"
	}
}

// Options configures a MakeLevelSet3 call.
type Options struct {
	// ExactBand is the number of extra cells, beyond a triangle's own
	// bounding box, searched for exact narrow-band distances. Zero selects
	// the default of 1.
	ExactBand int
	// Backend selects the executor; the zero value is Auto.
	Backend Backend
	// NumThreads sets the goroutine count of the CPU narrow-band pass;
	// zero means GOMAXPROCS. The CPU sweep and sign passes use GOMAXPROCS
	// goroutines regardless. Ignored by the accelerator backend.
	NumThreads int
}

// Result is the outcome of a MakeLevelSet3 call: the dense signed distance
// field plus which backend actually produced it.
type Result struct {
	Phi     []float32
	Backend Backend
}

// ErrBadInputs is returned for a nil/empty mesh or an invalid grid.
var ErrBadInputs = errors.New("levelset: invalid mesh or grid")

// ErrAcceleratorUnavailable is returned when Options.Backend is explicitly
// Accelerator but no accelerator has been registered or it failed to
// initialize.
var ErrAcceleratorUnavailable = errors.New("levelset: accelerator backend unavailable")

// acceleratorRun is wired by levelset/accel's init via RegisterAccelerator;
// left nil keeps this package free of any dependency on OpenGL. It returns
// the narrow-band phi and crossing-count arrays before sign correction,
// which runAccelerator applies so that both backends share one
// implementation of the parity rule.
var acceleratorRun func(mesh meshtri.Mesh, spec GridSpec, exactBand int) (phi []float32, xc []int32, err error)

// RegisterAccelerator wires an accelerator executor into the dispatcher.
// Called from levelset/accel's package init, never by application code,
// to avoid an import cycle between levelset and levelset/accel. run must
// return the narrow-band phi and XC crossing-count arrays unsigned;
// runAccelerator applies signCorrectFields to them.
func RegisterAccelerator(run func(mesh meshtri.Mesh, spec GridSpec, exactBand int) (phi []float32, xc []int32, err error)) {
	acceleratorRun = run
}

// AcceleratorAvailable reports whether an accelerator executor has been
// registered (by importing levelset/accel for its init side effect).
func AcceleratorAvailable() bool {
	return acceleratorRun != nil
}

// MakeLevelSet3 computes the signed distance field of mesh sampled on
// gridSpec: narrow-band exact distance and ray-crossing parity counting,
// an Eikonal sweep to fill the far field on whichever backend is selected,
// then sign correction.
func MakeLevelSet3(mesh meshtri.Mesh, gridSpec GridSpec, opts Options) (Result, error) {
	if len(mesh.Triangles) == 0 || len(mesh.Vertices) == 0 {
		return Result{}, fmt.Errorf("%w: mesh has no triangles", ErrBadInputs)
	}
	if err := gridSpec.validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBadInputs, err)
	}
	exactBand := opts.ExactBand
	if exactBand <= 0 {
		exactBand = 1
	}

	backend := opts.Backend
	if backend == Auto {
		if AcceleratorAvailable() {
			backend = Accelerator
		} else {
			backend = CPU
		}
	}

	switch backend {
	case Accelerator:
		phi, err := runAccelerator(mesh, gridSpec, exactBand)
		if err == nil {
			return Result{Phi: phi, Backend: Accelerator}, nil
		}
		if opts.Backend == Accelerator {
			return Result{}, fmt.Errorf("%w: %v", ErrAcceleratorUnavailable, err)
		}
		// Auto falls back to CPU.
		return runCPU(mesh, gridSpec, exactBand, opts.NumThreads)
	default:
		return runCPU(mesh, gridSpec, exactBand, opts.NumThreads)
	}
}

func runAccelerator(mesh meshtri.Mesh, gridSpec GridSpec, exactBand int) ([]float32, error) {
	if acceleratorRun == nil {
		return nil, ErrAcceleratorUnavailable
	}
	phi, xc, err := acceleratorRun(mesh, gridSpec, exactBand)
	if err != nil {
		return nil, err
	}
	signCorrectFields(gridSpec, phi, xc)
	return phi, nil
}

func runCPU(mesh meshtri.Mesh, gridSpec GridSpec, exactBand, numThreads int) (Result, error) {
	g, err := newGrid(gridSpec, true)
	if err != nil {
		return Result{}, err
	}
	runNarrowBandCPU(mesh, g, exactBand, numThreads)
	sweepCPU(mesh, g)
	signCorrect(g)
	return Result{Phi: g.phi, Backend: CPU}, nil
}

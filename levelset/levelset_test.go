package levelset

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
	"github.com/soypat/sdfgen/internal/vecf32"
	"github.com/soypat/sdfgen/meshtri"
)

func cubeGrid(half, dx float32, pad int) GridSpec {
	n := int(2*half/dx) + 2*pad
	origin := vecf32.Vec{X: -half - float32(pad)*dx, Y: -half - float32(pad)*dx, Z: -half - float32(pad)*dx}
	return GridSpec{Origin: origin, Dx: dx, Nx: n, Ny: n, Nz: n}
}

func mustLevelSet(t *testing.T, mesh meshtri.Mesh, spec GridSpec, opts Options) Result {
	t.Helper()
	res, err := MakeLevelSet3(mesh, spec, opts)
	if err != nil {
		t.Fatalf("MakeLevelSet3: %v", err)
	}
	return res
}

func TestMakeLevelSet3_SignCorrectness(t *testing.T) {
	const half, dx = float32(1.0), float32(0.2)
	mesh := unitCube(half)
	spec := cubeGrid(half, dx, 3)
	res := mustLevelSet(t, mesh, spec, Options{Backend: CPU})

	// Grid center (0,0,0) lies well inside the cube: Phi must be negative.
	ci, cj, ck := spec.Nx/2, spec.Ny/2, spec.Nz/2
	centerPhi := res.Phi[spec.Index(ci, cj, ck)]
	if centerPhi >= 0 {
		t.Errorf("center phi = %v, want < 0 (inside cube)", centerPhi)
	}

	// A corner of the grid lies well outside the cube: Phi must be positive.
	cornerPhi := res.Phi[spec.Index(0, 0, 0)]
	if cornerPhi <= 0 {
		t.Errorf("corner phi = %v, want > 0 (outside cube)", cornerPhi)
	}
}

func TestMakeLevelSet3_MagnitudeAgreesWithBruteForce(t *testing.T) {
	const radius, dx = float32(1.0), float32(0.25)
	mesh := icosphere(radius)
	spec := cubeGrid(radius, dx, 2)
	res := mustLevelSet(t, mesh, spec, Options{Backend: CPU})

	// Within the narrow band, Phi must equal the brute-force unsigned
	// distance to within float32 rounding of the exact computation;
	// outside the band the Eikonal sweep only guarantees a 1-Lipschitz
	// estimate, so the check is restricted to cells near the surface.
	const tol = 1e-3
	checked := 0
	for k := 0; k < spec.Nz; k++ {
		for j := 0; j < spec.Ny; j++ {
			for i := 0; i < spec.Nx; i++ {
				idx := spec.Index(i, j, k)
				phi := res.Phi[idx]
				if math32.Abs(phi) > 2*dx {
					continue
				}
				p := spec.World(i, j, k)
				want := bruteForceUnsignedDistance(mesh, p)
				got := math32.Abs(phi)
				if math32.Abs(got-want) > tol {
					t.Errorf("cell (%d,%d,%d): |phi|=%v, brute force=%v", i, j, k, got, want)
				}
				checked++
			}
		}
	}
	if checked == 0 {
		t.Fatal("no narrow-band cells were checked; grid/mesh fixture mismatch")
	}
}

func TestMakeLevelSet3_NeverFartherThanNearestVertex(t *testing.T) {
	const half, dx = float32(1.0), float32(0.3)
	mesh := tetrahedron(half)
	spec := cubeGrid(half, dx, 2)
	res := mustLevelSet(t, mesh, spec, Options{Backend: CPU})

	for k := 0; k < spec.Nz; k++ {
		for j := 0; j < spec.Ny; j++ {
			for i := 0; i < spec.Nx; i++ {
				p := spec.World(i, j, k)
				got := math32.Abs(res.Phi[spec.Index(i, j, k)])
				bound := nearestVertexDistance(mesh.Vertices, p)
				if got > bound+1e-3 {
					t.Fatalf("cell (%d,%d,%d): |phi|=%v exceeds nearest-vertex bound %v", i, j, k, got, bound)
				}
			}
		}
	}
}

func TestMakeLevelSet3_LipschitzBound(t *testing.T) {
	const radius, dx = float32(1.0), float32(0.25)
	mesh := icosphere(radius)
	spec := cubeGrid(radius, dx, 2)
	res := mustLevelSet(t, mesh, spec, Options{Backend: CPU})

	// The Eikonal equation |grad phi| = 1 implies adjacent-cell Phi values
	// differ by at most dx (up to numerical slack).
	const slack = 1e-2
	check := func(i0, j0, k0, i1, j1, k1 int) {
		a := res.Phi[spec.Index(i0, j0, k0)]
		b := res.Phi[spec.Index(i1, j1, k1)]
		if d := math32.Abs(a - b); d > dx+slack {
			t.Errorf("neighbors (%d,%d,%d)-(%d,%d,%d) differ by %v > dx=%v", i0, j0, k0, i1, j1, k1, d, dx)
		}
	}
	for k := 0; k < spec.Nz; k++ {
		for j := 0; j < spec.Ny; j++ {
			for i := 0; i < spec.Nx-1; i++ {
				check(i, j, k, i+1, j, k)
			}
		}
	}
}

func TestMakeLevelSet3_ThreadCountInvariance(t *testing.T) {
	const radius, dx = float32(1.0), float32(0.3)
	mesh := icosphere(radius)
	spec := cubeGrid(radius, dx, 2)

	baseline := mustLevelSet(t, mesh, spec, Options{Backend: CPU, NumThreads: 1})
	for _, nt := range []int{2, 4, 8} {
		res := mustLevelSet(t, mesh, spec, Options{Backend: CPU, NumThreads: nt})
		if diff := cmp.Diff(baseline.Phi, res.Phi); diff != "" {
			t.Fatalf("NumThreads=%d: phi not bit-identical to NumThreads=1 (-want +got):\n%s", nt, diff)
		}
	}
}

func TestMakeLevelSet3_RejectsBadInputs(t *testing.T) {
	mesh := unitCube(1)
	badGrid := GridSpec{Origin: vecf32.Vec{}, Dx: 0.1, Nx: 0, Ny: 4, Nz: 4}
	if _, err := MakeLevelSet3(mesh, badGrid, Options{}); err == nil {
		t.Fatal("expected error for zero-sized grid axis")
	}

	emptyMesh := meshtri.Mesh{}
	goodGrid := cubeGrid(1, 0.25, 2)
	if _, err := MakeLevelSet3(emptyMesh, goodGrid, Options{}); err == nil {
		t.Fatal("expected error for empty mesh")
	}
}

func TestMakeLevelSet3_ExplicitAcceleratorUnavailableByDefault(t *testing.T) {
	// No accelerator registered since this test binary never imports
	// levelset/accel: an explicit Accelerator request must fail cleanly
	// rather than silently falling back.
	mesh := unitCube(1)
	spec := cubeGrid(1, 0.25, 2)
	_, err := MakeLevelSet3(mesh, spec, Options{Backend: Accelerator})
	if err == nil {
		t.Fatal("expected ErrAcceleratorUnavailable when no accelerator is registered")
	}
}

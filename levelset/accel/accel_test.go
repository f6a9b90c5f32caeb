package accel

import (
	"log"
	"os"
	"testing"

	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/sdfgen/internal/vecf32"
	"github.com/soypat/sdfgen/levelset"
	"github.com/soypat/sdfgen/meshtri"
)

func TestMain(m *testing.M) {
	_, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "accel-test",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer terminate()
	code := m.Run()
	terminate()
	os.Exit(code)
}

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
	mesh, err := meshtri.New(v, tris)
	if err != nil {
		panic(err)
	}
	return mesh
}

// TestRun_SignsInteriorNegative guards against the accelerator path
// returning an unsigned (always non-negative) field: the grid's center
// cell sits deep inside the cube and must come back with negative Phi
// once dispatch.go's sign correction has run.
func TestRun_SignsInteriorNegative(t *testing.T) {
	if !Available() {
		t.Skip("no GPU compute context available")
	}
	mesh := unitCube(1)
	spec := levelset.GridSpec{
		Origin: vecf32.Vec{X: -2, Y: -2, Z: -2},
		Dx:     0.5,
		Nx:     8, Ny: 8, Nz: 8,
	}
	res, err := levelset.MakeLevelSet3(mesh, spec, levelset.Options{ExactBand: 1, Backend: levelset.Accelerator})
	if err != nil {
		t.Fatalf("MakeLevelSet3 (accelerator): %v", err)
	}
	phi := res.Phi
	if len(phi) != spec.Nx*spec.Ny*spec.Nz {
		t.Fatalf("phi length = %d, want %d", len(phi), spec.Nx*spec.Ny*spec.Nz)
	}

	center := spec.Index(4, 4, 4) // world (0,0,0), inside the cube
	if phi[center] >= 0 {
		t.Errorf("center cell phi = %v, want negative (inside cube)", phi[center])
	}

	corner := spec.Index(0, 0, 0) // far outside the cube
	if phi[corner] <= 0 {
		t.Errorf("corner cell phi = %v, want positive (outside cube)", phi[corner])
	}
}

// TestRun_AgreesWithCPUSign cross-checks the accelerator's sign-corrected
// field against the CPU backend on every cell of the grid, since the two executors are documented to agree on sign even though
// their far-field magnitudes may differ.
func TestRun_AgreesWithCPUSign(t *testing.T) {
	if !Available() {
		t.Skip("no GPU compute context available")
	}
	mesh := unitCube(1)
	spec := levelset.GridSpec{
		Origin: vecf32.Vec{X: -2, Y: -2, Z: -2},
		Dx:     0.5,
		Nx:     8, Ny: 8, Nz: 8,
	}
	cpuRes, err := levelset.MakeLevelSet3(mesh, spec, levelset.Options{Backend: levelset.CPU})
	if err != nil {
		t.Fatalf("MakeLevelSet3 (cpu): %v", err)
	}
	gpuRes, err := levelset.MakeLevelSet3(mesh, spec, levelset.Options{Backend: levelset.Accelerator})
	if err != nil {
		t.Fatalf("MakeLevelSet3 (accelerator): %v", err)
	}
	for idx := range cpuRes.Phi {
		cpuNeg := cpuRes.Phi[idx] < 0
		gpuNeg := gpuRes.Phi[idx] < 0
		if cpuNeg != gpuNeg {
			t.Fatalf("cell %d sign disagreement: cpu=%v gpu=%v", idx, cpuRes.Phi[idx], gpuRes.Phi[idx])
		}
	}
}

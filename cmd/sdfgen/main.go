// Command sdfgen computes a signed distance field from a triangle mesh on
// a regular grid and writes it to a .sdf file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soypat/sdfgen/debugviz"
	"github.com/soypat/sdfgen/internal/vecf32"
	"github.com/soypat/sdfgen/levelset"
	"github.com/soypat/sdfgen/meshtri"
	"github.com/soypat/sdfgen/sdfio"
	"github.com/soypat/sdfgen/sdflog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sdfgen:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("sdfgen", flag.ContinueOnError)
	var (
		inPath     = fs.String("in", "", "input mesh file (.obj or .stl)")
		outPath    = fs.String("out", "", "output .sdf file")
		dx         = fs.Float64("dx", 0, "grid cell size (required, > 0)")
		padCells   = fs.Int("pad", 2, "extra cells of padding around the mesh bounding box")
		exactBand  = fs.Int("band", 1, "narrow-band padding in cells beyond each triangle's AABB")
		backend    = fs.String("backend", "auto", "auto|cpu|accelerator")
		numThreads = fs.Int("threads", 0, "CPU narrow-band goroutine count (0 = GOMAXPROCS)")
		verbose    = fs.Bool("v", false, "enable info-level logging")
		debugSlice = fs.String("debug-slice", "", "write a Z-slice heatmap PNG of the computed phi field to this path (dev use)")
		debugK     = fs.Int("debug-slice-k", -1, "Z index for -debug-slice; negative selects the grid mid-plane")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *verbose {
		sdflog.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}
	if *inPath == "" || *outPath == "" || *dx <= 0 {
		fs.Usage()
		return fmt.Errorf("missing required flags: -in, -out, -dx > 0 are all required")
	}

	mesh, err := loadMesh(*inPath)
	if err != nil {
		return fmt.Errorf("loading mesh: %w", err)
	}

	var be levelset.Backend
	switch strings.ToLower(*backend) {
	case "", "auto":
		be = levelset.Auto
	case "cpu":
		be = levelset.CPU
	case "accelerator", "gpu":
		be = levelset.Accelerator
	default:
		return fmt.Errorf("unknown -backend %q (want auto, cpu, or accelerator)", *backend)
	}

	spec := gridFromMesh(mesh, float32(*dx), *padCells)

	start := time.Now()
	res, err := levelset.MakeLevelSet3(mesh, spec, levelset.Options{
		ExactBand:  *exactBand,
		Backend:    be,
		NumThreads: *numThreads,
	})
	if err != nil {
		return fmt.Errorf("computing level set: %w", err)
	}
	sdflog.Logger().Info("level set computed",
		"backend", res.Backend.String(),
		"cells", len(res.Phi),
		"elapsed", time.Since(start))

	if *debugSlice != "" {
		k := *debugK
		if k < 0 || k >= spec.Nz {
			k = spec.Nz / 2
		}
		if err := debugviz.WriteZSlicePNG(res.Phi, spec.Nx, spec.Ny, k, spec.Index, 6, 6, *debugSlice); err != nil {
			return fmt.Errorf("writing debug slice: %w", err)
		}
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	hdr := sdfio.Header{
		Nx: int32(spec.Nx), Ny: int32(spec.Ny), Nz: int32(spec.Nz),
		MinX: spec.Origin.X, MinY: spec.Origin.Y, MinZ: spec.Origin.Z,
		MaxX: spec.Origin.X + float32(spec.Nx)*spec.Dx,
		MaxY: spec.Origin.Y + float32(spec.Ny)*spec.Dx,
		MaxZ: spec.Origin.Z + float32(spec.Nz)*spec.Dx,
	}
	return sdfio.Write(out, hdr, res.Phi)
}

func loadMesh(path string) (meshtri.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return meshtri.Mesh{}, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return meshtri.LoadOBJ(f)
	case ".stl":
		return meshtri.LoadSTL(f)
	default:
		return meshtri.Mesh{}, fmt.Errorf("unsupported mesh extension %q (want .obj or .stl)", filepath.Ext(path))
	}
}

// gridFromMesh builds a grid spec whose bounding box covers mesh plus
// padCells of padding on every side. The narrow-band/crossing algorithm
// requires the grid to fully contain the mesh; a crossing below i=0 folds
// onto i=0 and one at i>=nx is dropped.
func gridFromMesh(mesh meshtri.Mesh, dx float32, padCells int) levelset.GridSpec {
	pad := float32(padCells) * dx
	origin := vecf32.Sub(mesh.Min, vecf32.Vec{X: pad, Y: pad, Z: pad})
	size := vecf32.Sub(mesh.Max, mesh.Min)
	n := func(extent float32) int {
		return int(extent/dx) + 2*padCells + 1
	}
	return levelset.GridSpec{
		Origin: origin,
		Dx:     dx,
		Nx:     n(size.X),
		Ny:     n(size.Y),
		Nz:     n(size.Z),
	}
}

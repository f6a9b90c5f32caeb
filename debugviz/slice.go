// Package debugviz renders a single Z-slice of a computed Phi field as a
// PNG heatmap, for eyeballing narrow-band/sweep correctness during
// development. It is not part of the levelset core, and reuses
// gonum.org/v1/plot rather than hand-rolling image encoding.
package debugviz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// phiGrid adapts a single Z-slice of a dense Phi field to plotter.GridXYZ.
type phiGrid struct {
	nx, ny int
	k      int
	phi    []float32
	index  func(i, j, k int) int
}

func (g phiGrid) Dims() (c, r int) { return g.nx, g.ny }
func (g phiGrid) X(c int) float64  { return float64(c) }
func (g phiGrid) Y(r int) float64  { return float64(r) }
func (g phiGrid) Z(c, r int) float64 {
	return float64(g.phi[g.index(c, r, g.k)])
}

// WriteZSlicePNG renders the Z=k slice of phi (dense (nx,ny,nz), indexed by
// index) as a heatmap PNG at outPath, widthIn by heightIn inches.
func WriteZSlicePNG(phi []float32, nx, ny, k int, index func(i, j, k int) int, widthIn, heightIn float64, outPath string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("phi, z-slice k=%d", k)

	grid := phiGrid{nx: nx, ny: ny, k: k, phi: phi, index: index}
	heat := plotter.NewHeatMap(grid, palette.Heat(32, 1))
	p.Add(heat)

	return p.Save(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, outPath)
}

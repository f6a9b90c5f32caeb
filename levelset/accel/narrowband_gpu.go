package accel

import (
	"bytes"
	"errors"

	"github.com/go-gl/gl/all-core/gl"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/sdfgen/levelset"
	"github.com/soypat/sdfgen/meshtri"
)

var narrowBandProgram glgl.Program
var narrowBandProgramErr error
var narrowBandCompiled bool

func compileNarrowBandProgram() (glgl.Program, error) {
	if narrowBandCompiled {
		return narrowBandProgram, narrowBandProgramErr
	}
	narrowBandCompiled = true
	combined, err := glgl.ParseCombined(bytes.NewBufferString(narrowBandSource))
	if err != nil {
		narrowBandProgramErr = err
		return glgl.Program{}, err
	}
	prog, err := glgl.CompileProgram(combined)
	if err != nil {
		narrowBandProgramErr = errors.New(string(combined.Compute) + "\n" + err.Error())
		return glgl.Program{}, narrowBandProgramErr
	}
	narrowBandProgram = prog
	return prog, nil
}

// scatterNarrowBand runs the narrow-band compute shader: one invocation
// per triangle, each scattering its exact distance into the cells of its
// padded bounding box via imageAtomicMin on the float32 bit pattern, and
// its crossing count into the (j,k) column it projects onto via
// imageAtomicAdd. The sentinel initialization matches newGrid's CPU
// counterpart: every phi cell starts at (nx+ny+nz)*dx, so the triangle
// pass can only shrink it. xc starts at zero everywhere.
func scatterNarrowBand(mesh meshtri.Mesh, spec levelset.GridSpec, params gridParams) ([]float32, []int32, error) {
	prog, err := compileNarrowBandProgram()
	if err != nil {
		return nil, nil, err
	}
	prog.Bind()

	triData := make([]float32, 0, len(mesh.Triangles)*3*4)
	for _, t := range mesh.Triangles {
		a, b, c := mesh.Positions(t)
		for _, v := range [3]struct{ X, Y, Z float32 }{
			{a.X, a.Y, a.Z}, {b.X, b.Y, b.Z}, {c.X, c.Y, c.Z},
		} {
			triData = append(triData, v.X, v.Y, v.Z, 0)
		}
	}
	triCfg := glgl.TextureImgConfig{
		Type: glgl.Texture2D, Width: len(mesh.Triangles) * 3, Height: 1,
		Access: glgl.ReadOnly, Format: gl.RGBA, MinFilter: gl.NEAREST, MagFilter: gl.NEAREST,
		Xtype: gl.FLOAT, InternalFormat: gl.RGBA32F, ImageUnit: 0,
	}
	if _, err := glgl.NewTextureFromImage(triCfg, triData); err != nil {
		return nil, nil, err
	}

	n := spec.Nx * spec.Ny * spec.Nz
	sentinel := float32(spec.Nx+spec.Ny+spec.Nz) * spec.Dx
	phiBits := make([]float32, n)
	for i := range phiBits {
		phiBits[i] = sentinel
	}
	phiCfg := glgl.TextureImgConfig{
		Type: glgl.Texture2D, Width: spec.Nx * spec.Ny, Height: spec.Nz,
		Access: glgl.ReadWrite, Format: gl.RED, MinFilter: gl.NEAREST, MagFilter: gl.NEAREST,
		Xtype: gl.FLOAT, InternalFormat: gl.R32F, ImageUnit: 1,
	}
	phiTex, err := glgl.NewTextureFromImage(phiCfg, phiBits)
	if err != nil {
		return nil, nil, err
	}

	rows := params.rows()
	paramData := append(append([]float32{}, rows[0][:]...), rows[1][:]...)
	paramCfg := glgl.TextureImgConfig{
		Type: glgl.Texture2D, Width: 2, Height: 1,
		Access: glgl.ReadOnly, Format: gl.RGBA, MinFilter: gl.NEAREST, MagFilter: gl.NEAREST,
		Xtype: gl.FLOAT, InternalFormat: gl.RGBA32F, ImageUnit: 2,
	}
	if _, err := glgl.NewTextureFromImage(paramCfg, paramData); err != nil {
		return nil, nil, err
	}

	// xc is the crossing-count array, one int32 per cell in the same
	// Width x Height layout as phi (index i + nx*j within a row, k
	// selecting the row); updateCrossingAABB's GPU counterpart folds a
	// crossing below i=0 onto i=0 and drops one at i>=nx, so every write
	// stays inside the grid.
	xcData := make([]int32, n)
	xcCfg := glgl.TextureImgConfig{
		Type: glgl.Texture2D, Width: spec.Nx * spec.Ny, Height: spec.Nz,
		Access: glgl.ReadWrite, Format: gl.RED_INTEGER, MinFilter: gl.NEAREST, MagFilter: gl.NEAREST,
		Xtype: gl.INT, InternalFormat: gl.R32I, ImageUnit: 3,
	}
	xcTex, err := glgl.NewTextureFromImage(xcCfg, xcData)
	if err != nil {
		return nil, nil, err
	}

	if err := prog.RunCompute(len(mesh.Triangles), 1, 1); err != nil {
		return nil, nil, err
	}
	if err := glgl.GetImage(phiBits, phiTex, phiCfg); err != nil {
		return nil, nil, err
	}
	if err := glgl.GetImage(xcData, xcTex, xcCfg); err != nil {
		return nil, nil, err
	}
	return phiBits, xcData, nil
}

// Package sdfio implements the `.sdf` binary file format: a 36-byte
// little-endian header followed by the raw float32 phi values nested
// i-outer, j-middle, k-innermost (k varies fastest in the byte stream).
// This is the on-disk order; it differs from the core's in-memory layout
// (i + Nx*(j + Ny*k), i fastest), so Write/Read transpose between the two.
// Uses explicit put/get with encoding/binary, no reflection-based codec.
package sdfio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Header describes the 36-byte little-endian header preceding the phi
// values in a .sdf file.
type Header struct {
	Nx, Ny, Nz     int32
	MinX, MinY, MinZ float32
	MaxX, MaxY, MaxZ float32
}

const headerSize = 36

// Write serializes phi (length Nx*Ny*Nz, indexed i + Nx*(j + Ny*k)) to w,
// preceded by the 36-byte header. The byte stream itself is nested
// i-outer/j-middle/k-innermost, so phi is transposed while writing.
func Write(w io.Writer, hdr Header, phi []float32) error {
	nx, ny, nz := int(hdr.Nx), int(hdr.Ny), int(hdr.Nz)
	n := nx * ny * nz
	if n <= 0 {
		return fmt.Errorf("sdfio: non-positive grid dimensions %dx%dx%d", hdr.Nx, hdr.Ny, hdr.Nz)
	}
	if len(phi) != n {
		return fmt.Errorf("sdfio: phi has %d values, want %d for %dx%dx%d grid", len(phi), n, hdr.Nx, hdr.Ny, hdr.Nz)
	}
	var b [headerSize]byte
	binary.LittleEndian.PutUint32(b[0:], uint32(hdr.Nx))
	binary.LittleEndian.PutUint32(b[4:], uint32(hdr.Ny))
	binary.LittleEndian.PutUint32(b[8:], uint32(hdr.Nz))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(hdr.MinX))
	binary.LittleEndian.PutUint32(b[16:], math.Float32bits(hdr.MinY))
	binary.LittleEndian.PutUint32(b[20:], math.Float32bits(hdr.MinZ))
	binary.LittleEndian.PutUint32(b[24:], math.Float32bits(hdr.MaxX))
	binary.LittleEndian.PutUint32(b[28:], math.Float32bits(hdr.MaxY))
	binary.LittleEndian.PutUint32(b[32:], math.Float32bits(hdr.MaxZ))
	if _, err := w.Write(b[:]); err != nil {
		return err
	}
	buf := make([]byte, 4*len(phi))
	pos := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				idx := i + nx*(j+ny*k)
				binary.LittleEndian.PutUint32(buf[4*pos:], math.Float32bits(phi[idx]))
				pos++
			}
		}
	}
	_, err := w.Write(buf)
	return err
}

// Read parses a .sdf file from r, returning its header and phi values
// (indexed i + Nx*(j + Ny*k), the inverse transpose of Write). The caller
// must resize its grid to (Nx,Ny,Nz) and, if it needs dx, compute
// dx = (MaxX-MinX)/Nx.
func Read(r io.Reader) (Header, []float32, error) {
	var b [headerSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, nil, fmt.Errorf("sdfio: header read: %w", err)
	}
	hdr := Header{
		Nx: int32(binary.LittleEndian.Uint32(b[0:])),
		Ny: int32(binary.LittleEndian.Uint32(b[4:])),
		Nz: int32(binary.LittleEndian.Uint32(b[8:])),
		MinX: math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
		MinY: math.Float32frombits(binary.LittleEndian.Uint32(b[16:])),
		MinZ: math.Float32frombits(binary.LittleEndian.Uint32(b[20:])),
		MaxX: math.Float32frombits(binary.LittleEndian.Uint32(b[24:])),
		MaxY: math.Float32frombits(binary.LittleEndian.Uint32(b[28:])),
		MaxZ: math.Float32frombits(binary.LittleEndian.Uint32(b[32:])),
	}
	if hdr.Nx <= 0 || hdr.Ny <= 0 || hdr.Nz <= 0 {
		return Header{}, nil, fmt.Errorf("sdfio: invalid grid dimensions %dx%dx%d", hdr.Nx, hdr.Ny, hdr.Nz)
	}
	nx, ny, nz := int(hdr.Nx), int(hdr.Ny), int(hdr.Nz)
	n := nx * ny * nz
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, nil, fmt.Errorf("sdfio: phi data read: %w", err)
	}
	phi := make([]float32, n)
	pos := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				idx := i + nx*(j+ny*k)
				phi[idx] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*pos:]))
				pos++
			}
		}
	}
	return hdr, phi, nil
}

package meshtri

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/sdfgen/internal/vecf32"
)

// LoadOBJ parses a Wavefront OBJ stream into a Mesh, fan-triangulating
// n-gon faces. Texture and normal indices ("v1/vt1/vn1") are accepted and
// discarded. Lines starting with '#' are comments.
func LoadOBJ(r io.Reader) (Mesh, error) {
	var vertices []vecf32.Vec
	var triangles []Triangle

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "v":
			if len(tokens) < 4 {
				return Mesh{}, fmt.Errorf("meshtri: obj line %d: malformed vertex %q", lineNo, line)
			}
			x, err := strconv.ParseFloat(tokens[1], 32)
			if err != nil {
				return Mesh{}, fmt.Errorf("meshtri: obj line %d: %w", lineNo, err)
			}
			y, err := strconv.ParseFloat(tokens[2], 32)
			if err != nil {
				return Mesh{}, fmt.Errorf("meshtri: obj line %d: %w", lineNo, err)
			}
			z, err := strconv.ParseFloat(tokens[3], 32)
			if err != nil {
				return Mesh{}, fmt.Errorf("meshtri: obj line %d: %w", lineNo, err)
			}
			vertices = append(vertices, vecf32.Vec{X: float32(x), Y: float32(y), Z: float32(z)})

		case "f":
			if len(tokens) < 4 {
				return Mesh{}, fmt.Errorf("meshtri: obj line %d: face needs at least 3 vertices", lineNo)
			}
			idx := make([]uint32, len(tokens)-1)
			for i, tok := range tokens[1:] {
				field := strings.Split(tok, "/")[0]
				v, err := strconv.Atoi(field)
				if err != nil {
					return Mesh{}, fmt.Errorf("meshtri: obj line %d: %w", lineNo, err)
				}
				if v < 0 {
					// relative index: -1 is the most recently defined vertex.
					v = len(vertices) + v + 1
				}
				idx[i] = uint32(v - 1)
			}
			// fan-triangulate polygon faces (quads and beyond).
			for i := 1; i < len(idx)-1; i++ {
				triangles = append(triangles, Triangle{idx[0], idx[i], idx[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Mesh{}, err
	}
	return New(vertices, triangles)
}

// Package obj reads the geometry of Wavefront OBJ files.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/goslice/pkg/geometry"
)

// ErrInvalidOBJ is returned for malformed vertex or face records.
var ErrInvalidOBJ = errors.New("invalid OBJ")

// Model is the indexed geometry of an OBJ file. Faces hold 0-based vertex
// indices and may be polygons with more than three corners.
type Model struct {
	Vertices []geometry.Vector3
	Faces    [][]int
}

// ParseFile reads an OBJ file and returns its geometry
func ParseFile(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads `v` and `f` records. Texture coordinates, normals, groups and
// materials are ignored. Face tokens may be `v`, `v/vt`, `v//vn` or `v/vt/vn`;
// negative indices count back from the latest vertex.
func Parse(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := &Model{}
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			model.Vertices = append(model.Vertices, v)

		case "f":
			face, err := parseFace(fields[1:], len(model.Vertices))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			model.Faces = append(model.Faces, face)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}

	return model, nil
}

func parseVertex(fields []string) (geometry.Vector3, error) {
	if len(fields) < 3 {
		return geometry.Vector3{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := range c {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geometry.Vector3{}, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return geometry.Vector3{}, fmt.Errorf("non-finite coordinate %q", fields[i])
		}
		c[i] = v
	}
	return geometry.NewVector3(c[0], c[1], c[2]), nil
}

func parseFace(fields []string, vertexCount int) ([]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(fields))
	}
	face := make([]int, len(fields))
	for i, token := range fields {
		ref, _, _ := strings.Cut(token, "/")
		n, err := strconv.Atoi(ref)
		if err != nil {
			return nil, fmt.Errorf("bad vertex reference %q", token)
		}
		switch {
		case n > 0 && n <= vertexCount:
			face[i] = n - 1
		case n < 0 && -n <= vertexCount:
			face[i] = vertexCount + n
		default:
			return nil, fmt.Errorf("vertex reference %d out of range (have %d vertices)", n, vertexCount)
		}
	}
	return face, nil
}

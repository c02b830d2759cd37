// Package mesh holds the normalized vertex and face tables a model is sliced
// from. A Mesh is read-only once loaded and safe to share between goroutines.
package mesh

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/philipparndt/goslice/internal/logging"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// ErrMalformedGeometry is returned when the vertex or face tables cannot form a mesh.
var ErrMalformedGeometry = errors.New("malformed geometry")

// Face is an ordered list of vertex indices. Faces never carry coordinates.
type Face []int

// Mesh is a centered, immutable triangle (or polygon) mesh.
type Mesh struct {
	vertices []geometry.Vector3
	faces    []Face
	bounds   geometry.BoundingBox
	offset   geometry.Vector3
}

// Load validates the tables and returns a mesh translated so that its
// horizontal bounding box is centered on the origin and its lowest point sits
// at z = 0. Input slices are copied. A warning is logged for every axis that
// had to be moved.
func Load(logger *slog.Logger, vertices []geometry.Vector3, faces []Face) (*Mesh, error) {
	logger = logging.OrDiscard(logger)

	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 vertices, got %d", ErrMalformedGeometry, len(vertices))
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: mesh has no faces", ErrMalformedGeometry)
	}

	m := &Mesh{
		vertices: make([]geometry.Vector3, len(vertices)),
		faces:    make([]Face, len(faces)),
	}
	copy(m.vertices, vertices)

	for i, face := range faces {
		if len(face) < 3 {
			return nil, fmt.Errorf("%w: face %d has %d vertices", ErrMalformedGeometry, i, len(face))
		}
		for _, idx := range face {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("%w: face %d references vertex %d (have %d)",
					ErrMalformedGeometry, i, idx, len(vertices))
			}
		}
		m.faces[i] = append(Face(nil), face...)
	}

	m.center(logger)
	return m, nil
}

func (m *Mesh) center(logger *slog.Logger) {
	raw := geometry.BoundsOf(m.vertices)
	mid := raw.Center()
	offset := geometry.NewVector3(-mid.X, -mid.Y, -raw.Min.Z)

	if offset.Z != 0 {
		logger.Warn("base height is not zero, compensating", "z_min", raw.Min.Z)
	}
	if offset.X != 0 {
		logger.Warn("x axis is not centered, centering", "x_offset", mid.X)
	}
	if offset.Y != 0 {
		logger.Warn("y axis is not centered, centering", "y_offset", mid.Y)
	}

	for i := range m.vertices {
		m.vertices[i] = m.vertices[i].Add(offset)
	}
	m.offset = offset
	m.bounds = raw.Translate(offset)
}

// Scaled returns a copy of the mesh with every coordinate multiplied by
// factor. The result stays centered because centering is about the origin.
func (m *Mesh) Scaled(factor float64) *Mesh {
	if factor == 1 {
		return m
	}
	out := &Mesh{
		vertices: make([]geometry.Vector3, len(m.vertices)),
		faces:    m.faces,
		offset:   m.offset.Mul(factor),
	}
	for i, v := range m.vertices {
		out.vertices[i] = v.Mul(factor)
	}
	out.bounds = geometry.BoundsOf(out.vertices)
	return out
}

// Vertex returns the vertex at index i.
func (m *Mesh) Vertex(i int) geometry.Vector3 {
	return m.vertices[i]
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// Face returns face i. The returned slice must not be modified.
func (m *Mesh) Face(i int) Face {
	return m.faces[i]
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.faces)
}

// Faces calls fn for every face in load order until fn returns false.
func (m *Mesh) Faces(fn func(index int, face Face) bool) {
	for i, f := range m.faces {
		if !fn(i, f) {
			return
		}
	}
}

// FaceVertices returns the coordinates of the corners of face i.
func (m *Mesh) FaceVertices(i int) []geometry.Vector3 {
	face := m.faces[i]
	out := make([]geometry.Vector3, len(face))
	for j, idx := range face {
		out[j] = m.vertices[idx]
	}
	return out
}

// Bounds returns the per-axis extents of the normalized mesh.
func (m *Mesh) Bounds() geometry.BoundingBox {
	return m.bounds
}

// Offset returns the translation applied during load.
func (m *Mesh) Offset() geometry.Vector3 {
	return m.offset
}

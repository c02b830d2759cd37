package stl

import (
	"github.com/philipparndt/goslice/pkg/geometry"
)

// Model represents a complete STL model
type Model struct {
	Name      string
	Triangles []geometry.Triangle
}

// NewModel creates a new STL model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Triangles: make([]geometry.Triangle, 0),
	}
}

// AddTriangle adds a triangle to the model
func (m *Model) AddTriangle(triangle geometry.Triangle) {
	m.Triangles = append(m.Triangles, triangle)
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// BoundingBox calculates the bounding box of the entire model
func (m *Model) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, triangle := range m.Triangles {
		bbox.Extend(triangle.V1)
		bbox.Extend(triangle.V2)
		bbox.Extend(triangle.V3)
	}
	return bbox
}

// SurfaceArea calculates the total surface area of the model
func (m *Model) SurfaceArea() float64 {
	totalArea := 0.0
	for _, triangle := range m.Triangles {
		totalArea += triangle.Area()
	}
	return totalArea
}

// Indexed welds the triangle soup into shared vertices. Corners with
// bit-identical coordinates map to the same index, so neighbouring facets
// share edges. Faces keep the facet winding.
func (m *Model) Indexed() (vertices []geometry.Vector3, faces [][3]int) {
	index := make(map[geometry.Vector3]int, len(m.Triangles)/2)
	weld := func(v geometry.Vector3) int {
		if i, ok := index[v]; ok {
			return i
		}
		i := len(vertices)
		index[v] = i
		vertices = append(vertices, v)
		return i
	}

	faces = make([][3]int, 0, len(m.Triangles))
	for _, t := range m.Triangles {
		faces = append(faces, [3]int{weld(t.V1), weld(t.V2), weld(t.V3)})
	}
	return vertices, faces
}

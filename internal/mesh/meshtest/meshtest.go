// Package meshtest provides small fixture meshes for tests.
package meshtest

import (
	"testing"

	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// cubeFaces triangulates the box corners 0..7 laid out by Box, wound outward.
var cubeFaces = []mesh.Face{
	{0, 2, 1}, {0, 3, 2}, // bottom
	{4, 5, 6}, {4, 6, 7}, // top
	{0, 1, 5}, {0, 5, 4}, // front (y = min)
	{1, 2, 6}, {1, 6, 5}, // right (x = max)
	{2, 3, 7}, {2, 7, 6}, // back (y = max)
	{3, 0, 4}, {3, 4, 7}, // left (x = min)
}

// Box returns an axis-aligned box from min to max as 8 vertices and 12 faces.
func Box(min, max geometry.Vector3) ([]geometry.Vector3, []mesh.Face) {
	vertices := []geometry.Vector3{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
	}
	faces := make([]mesh.Face, len(cubeFaces))
	for i, f := range cubeFaces {
		faces[i] = append(mesh.Face(nil), f...)
	}
	return vertices, faces
}

// UnitCube returns the cube with corners at {0,1}^3.
func UnitCube() ([]geometry.Vector3, []mesh.Face) {
	return Box(geometry.NewVector3(0, 0, 0), geometry.NewVector3(1, 1, 1))
}

// TwoCubes returns two disjoint unit cubes side by side along X with a gap of 1.
func TwoCubes() ([]geometry.Vector3, []mesh.Face) {
	v1, f1 := UnitCube()
	v2, f2 := Box(geometry.NewVector3(2, 0, 0), geometry.NewVector3(3, 1, 1))

	vertices := append(v1, v2...)
	faces := f1
	for _, f := range f2 {
		shifted := make(mesh.Face, len(f))
		for i, idx := range f {
			shifted[i] = idx + len(v1)
		}
		faces = append(faces, shifted)
	}
	return vertices, faces
}

// InvertedPyramid returns a square pyramid standing on its apex at the origin
// with its unit-square base at z = 1.
func InvertedPyramid() ([]geometry.Vector3, []mesh.Face) {
	vertices := []geometry.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: -0.5, Y: -0.5, Z: 1},
		{X: 0.5, Y: -0.5, Z: 1},
		{X: 0.5, Y: 0.5, Z: 1},
		{X: -0.5, Y: 0.5, Z: 1},
	}
	faces := []mesh.Face{
		{0, 2, 1}, {0, 3, 2}, {0, 4, 3}, {0, 1, 4},
		{1, 2, 3}, {1, 3, 4},
	}
	return vertices, faces
}

// Tetrahedron returns a tetrahedron whose bottom edge c-d lies on z = 0 along
// X and whose top edge a-b lies at z = 2 along Y. Every pair of faces shares
// an edge, and the cut at z = 1 is a unit square. Vertex order is c, d, a, b;
// face order is abc, abd, acd, bcd.
func Tetrahedron() ([]geometry.Vector3, []mesh.Face) {
	vertices := []geometry.Vector3{
		{X: -1, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: -1, Z: 2},
		{X: 0, Y: 1, Z: 2},
	}
	faces := []mesh.Face{
		{2, 3, 0}, {2, 3, 1}, {2, 0, 1}, {3, 0, 1},
	}
	return vertices, faces
}

// MustLoad builds a mesh from a fixture and fails the test on error.
func MustLoad(t testing.TB, fixture func() ([]geometry.Vector3, []mesh.Face)) *mesh.Mesh {
	t.Helper()
	vertices, faces := fixture()
	m, err := mesh.Load(nil, vertices, faces)
	if err != nil {
		t.Fatalf("failed to load fixture mesh: %v", err)
	}
	return m
}

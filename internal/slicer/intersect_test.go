package slicer

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/internal/mesh/meshtest"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersectEdgeStaysOnSegment(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for range 1000 {
		low := geometry.NewVector3(rng.Float64()*20-10, rng.Float64()*20-10, rng.Float64()*5)
		up := geometry.NewVector3(rng.Float64()*20-10, rng.Float64()*20-10, low.Z+0.001+rng.Float64()*5)
		z := low.Z + rng.Float64()*(up.Z-low.Z)

		p, err := IntersectEdge(low, up, z)
		require.NoError(t, err)
		assert.Equal(t, z, p.Z)

		// p must be low + t*(up-low) for some t in [0, 1]
		tt := (z - low.Z) / (up.Z - low.Z)
		assert.GreaterOrEqual(t, tt, 0.0)
		assert.LessOrEqual(t, tt, 1.0)
		assert.InDelta(t, low.X+tt*(up.X-low.X), p.X, 1e-9)
		assert.InDelta(t, low.Y+tt*(up.Y-low.Y), p.Y, 1e-9)
		assert.LessOrEqual(t, p.X, math.Max(low.X, up.X)+1e-9)
		assert.GreaterOrEqual(t, p.X, math.Min(low.X, up.X)-1e-9)
	}
}

func TestIntersectEdgeHorizontal(t *testing.T) {
	_, err := IntersectEdge(geometry.NewVector3(0, 0, 1), geometry.NewVector3(1, 0, 1), 1)
	assert.ErrorIs(t, err, ErrDegenerateEdge)
}

func TestIntersectFaceTwoLowerOneUpper(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)

	// front face (0,1,5): 0 and 1 at z=0, 5 at z=1
	cut := IntersectFace(m, m.Face(4), 0.25)
	require.Equal(t, Straddling, cut.Class)
	require.Len(t, cut.Points, 2)

	assert.Equal(t, NewEdge(1, 5), cut.Points[0].Edge)
	assert.Equal(t, NewEdge(5, 0), cut.Points[1].Edge)
	assert.True(t, cut.Points[0].Position.ApproxEqual(geometry.NewVector3(0.5, -0.5, 0.25), 1e-12))
	assert.True(t, cut.Points[1].Position.ApproxEqual(geometry.NewVector3(-0.25, -0.5, 0.25), 1e-12))
}

func TestIntersectFaceSharedEdgeIsBitIdentical(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)

	// (0,1,5) and (0,5,4) share the diagonal 0-5, walked in opposite directions
	a := IntersectFace(m, m.Face(4), 0.3)
	b := IntersectFace(m, m.Face(5), 0.3)

	var pa, pb ContourPoint
	for _, p := range a.Points {
		if p.Edge == NewEdge(0, 5) {
			pa = p
		}
	}
	for _, p := range b.Points {
		if p.Edge == NewEdge(0, 5) {
			pb = p
		}
	}
	assert.Equal(t, pa, pb)
}

func TestIntersectFaceClassification(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)

	tests := []struct {
		name     string
		face     int
		z        float64
		expected Classification
	}{
		{"bottom below plane", 0, 0.5, Clear},
		{"top above plane", 2, 0.5, Clear},
		{"bottom in plane", 0, 0, Coplanar},
		{"top at max height", 2, 1, Coplanar},
		{"side face", 6, 0.5, Straddling},
		{"side face touching plane at one vertex", 5, 0, Straddling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IntersectFace(m, m.Face(tt.face), tt.z).Class)
		})
	}
}

func TestIntersectFaceCoplanarTriangle(t *testing.T) {
	m, err := mesh.Load(nil, []geometry.Vector3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		[]mesh.Face{{0, 1, 2}})
	require.NoError(t, err)

	cut := IntersectFace(m, m.Face(0), 0)
	assert.Equal(t, Coplanar, cut.Class)
	assert.Empty(t, cut.Points)
	assert.Equal(t, 3, cut.DegenerateEdges)
}

func TestIntersectFaceCountsEdgeLyingInPlane(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)

	// (0,1,5) has its bottom edge 0-1 in the plane z=0
	cut := IntersectFace(m, m.Face(4), 0)
	assert.Equal(t, Straddling, cut.Class)
	assert.Equal(t, 1, cut.DegenerateEdges)
	require.Len(t, cut.Points, 2)
	assert.Equal(t, NewEdge(1, 5), cut.Points[0].Edge)
	assert.Equal(t, NewEdge(0, 5), cut.Points[1].Edge)
	assert.Equal(t, m.Vertex(1), cut.Points[0].Position)
	assert.Equal(t, m.Vertex(0), cut.Points[1].Position)

	// a horizontal edge off the plane is not degenerate
	cut = IntersectFace(m, m.Face(4), 0.5)
	assert.Equal(t, 0, cut.DegenerateEdges)
}

func TestIntersectFaceNonConvexPolygon(t *testing.T) {
	// A "W" shaped vertical polygon dips below z=0.5 twice, giving four crossings.
	vertices := []geometry.Vector3{
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 0},
		{X: 2, Y: 0, Z: 1},
		{X: 3, Y: 0, Z: 0},
		{X: 4, Y: 0, Z: 1},
		{X: 4, Y: 0, Z: 2},
		{X: 0, Y: 0, Z: 2},
	}
	m, err := mesh.Load(nil, vertices, []mesh.Face{{0, 1, 2, 3, 4, 5, 6}})
	require.NoError(t, err)

	cut := IntersectFace(m, m.Face(0), 0.5)
	assert.Equal(t, Irregular, cut.Class)
	assert.Len(t, cut.Points, 4)
}

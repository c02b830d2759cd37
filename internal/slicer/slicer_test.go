package slicer

import (
	"context"
	"errors"
	"testing"

	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/internal/mesh/meshtest"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perimeter sums the cut segment lengths of every face in the chain.
func perimeter(c Chain) float64 {
	total := 0.0
	for _, f := range c {
		total += f.Points[0].Position.Distance(f.Points[1].Position)
	}
	return total
}

func newSlicer(t *testing.T, m *mesh.Mesh, layerHeight float64, workers int) *Slicer {
	t.Helper()
	s, err := New(m, Options{LayerHeight: layerHeight, Workers: workers})
	require.NoError(t, err)
	return s
}

func TestNewRejectsNonPositiveLayerHeight(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)
	for _, h := range []float64{0, -0.2} {
		_, err := New(m, Options{LayerHeight: h})
		assert.Error(t, err)
	}
}

func TestHeights(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)

	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75}, newSlicer(t, m, 0.25, 1).Heights())
	assert.Len(t, newSlicer(t, m, 0.2, 1).Heights(), 5)
	assert.Len(t, newSlicer(t, m, 0.3, 1).Heights(), 4)
	assert.Len(t, newSlicer(t, m.Scaled(2), 0.25, 1).Heights(), 8)
}

func TestSliceUnitCube(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)
	layers, err := newSlicer(t, m, 0.25, 4).Slice(context.Background())
	require.NoError(t, err)
	require.Len(t, layers, 4)

	for i, layer := range layers {
		assert.Equal(t, i, layer.Index)
		assert.Equal(t, float64(i)*0.25, layer.Z)
		assert.Equal(t, 8, layer.Straddling)
		require.Len(t, layer.Chains, 1)
		assert.Len(t, layer.Chains[0], 8)
		assert.InDelta(t, 4.0, perimeter(layer.Chains[0]), 1e-9)

		for _, f := range layer.Chains[0] {
			for _, p := range f.Points {
				assert.Equal(t, layer.Z, p.Position.Z)
			}
		}
	}
	assert.Equal(t, 2, layers[0].Coplanar)
}

func TestSliceAtTopIsEmpty(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)
	s := newSlicer(t, m, 0.25, 1)

	for _, z := range []float64{1, 1.5} {
		layer, err := s.SliceAt(4, z)
		require.NoError(t, err)
		assert.True(t, layer.Empty())
		assert.Zero(t, layer.Straddling)
	}
}

func TestSliceAtCoplanarTriangle(t *testing.T) {
	m, err := mesh.Load(nil, []geometry.Vector3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		[]mesh.Face{{0, 1, 2}})
	require.NoError(t, err)

	layer, err := newSlicer(t, m, 0.2, 1).SliceAt(0, 0)
	require.NoError(t, err)
	assert.True(t, layer.Empty())
	assert.Equal(t, 1, layer.Coplanar)
	assert.Equal(t, 3, layer.DegenerateEdges)
}

func TestSliceInvertedPyramid(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.InvertedPyramid)
	s := newSlicer(t, m, 0.5, 2)

	apex, err := s.SliceAt(0, 0)
	require.NoError(t, err)
	require.Len(t, apex.Chains, 1)
	assert.Len(t, apex.Chains[0], 4)
	assert.InDelta(t, 0, perimeter(apex.Chains[0]), 1e-12)

	mid, err := s.SliceAt(1, 0.5)
	require.NoError(t, err)
	require.Len(t, mid.Chains, 1)
	assert.InDelta(t, 2.0, perimeter(mid.Chains[0]), 1e-9)
}

func TestSliceReportsUnstitchableLayer(t *testing.T) {
	vertices, faces := meshtest.UnitCube()
	vertices = append(vertices,
		geometry.NewVector3(3, 0, 0.2),
		geometry.NewVector3(4, 0, 0.2),
		geometry.NewVector3(3.5, 1, 0.9),
	)
	faces = append(faces, mesh.Face{8, 9, 10})
	m, err := mesh.Load(nil, vertices, faces)
	require.NoError(t, err)

	_, err = newSlicer(t, m, 0.25, 3).Slice(context.Background())
	require.ErrorIs(t, err, ErrUnstitchableContour)

	var uc *UnstitchableContourError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, 1, uc.Layer)
	assert.Equal(t, 0.25, uc.Z)
	assert.Equal(t, []int{12}, uc.Faces)
}

func TestWalkDeliversInOrder(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.TwoCubes)
	s := newSlicer(t, m, 0.05, 8)

	var seen []int
	err := s.Walk(context.Background(), func(l *Layer) error {
		seen = append(seen, l.Index)
		assert.Len(t, l.Chains, 2)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, 20)
	for i, idx := range seen {
		assert.Equal(t, i, idx)
	}
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.UnitCube)
	stop := errors.New("stop")

	var seen []int
	err := newSlicer(t, m, 0.1, 4).Walk(context.Background(), func(l *Layer) error {
		seen = append(seen, l.Index)
		if l.Index == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

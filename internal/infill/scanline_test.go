package infill

import (
	"testing"

	"github.com/philipparndt/goslice/internal/mesh/meshtest"
	"github.com/philipparndt/goslice/internal/slicer"
	"github.com/philipparndt/goslice/internal/toolpath"
	"github.com/philipparndt/goslice/internal/toolpath/toolpathtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareContext(t *testing.T, index int) toolpath.LayerContext {
	t.Helper()
	m := meshtest.MustLoad(t, meshtest.UnitCube)
	s, err := slicer.New(m, slicer.Options{LayerHeight: 0.25})
	require.NoError(t, err)
	layer, err := s.SliceAt(index, 0.5)
	require.NoError(t, err)
	outlines, err := toolpath.Outlines(layer)
	require.NoError(t, err)
	return toolpath.LayerContext{
		Layer:    layer,
		Outlines: outlines,
		Count:    4,
		Bounds:   m.Bounds(),
	}
}

func newAccumulator(t *testing.T, rec *toolpathtest.Recorder) *toolpath.Accumulator {
	t.Helper()
	flow, err := toolpath.NewFlowModel(1, 0.4, 0.25, 1.75)
	require.NoError(t, err)
	return toolpath.NewAccumulator(rec, flow, 3600, 1800, 0)
}

func TestScanlineFillsSquare(t *testing.T) {
	rec := &toolpathtest.Recorder{}
	acc := newAccumulator(t, rec)

	state, err := Scanline{Spacing: 0.25}.Fill(acc, toolpath.State{}, squareContext(t, 0))
	require.NoError(t, err)

	moves := rec.Moves()
	require.Len(t, moves, 8)
	assert.InDelta(t, 4.0, state.Distance, 1e-9)
	assert.InDelta(t, acc.Flow().ExtrusionRate*4, state.Extruded, 1e-12)
	assert.Len(t, rec.Markers(toolpath.InfillStart), 1)

	// even layers scan along X; rows alternate direction
	assert.InDelta(t, -0.375, moves[0].Target.Y, 1e-12)
	assert.InDelta(t, -0.5, moves[0].Target.X, 1e-12)
	assert.InDelta(t, 0.5, moves[1].Target.X, 1e-12)
	assert.InDelta(t, 0.5, moves[2].Target.X, 1e-12)
	assert.InDelta(t, -0.5, moves[3].Target.X, 1e-12)
}

func TestScanlineOddLayerScansAlongY(t *testing.T) {
	rec := &toolpathtest.Recorder{}
	_, err := Scanline{Spacing: 0.5}.Fill(newAccumulator(t, rec), toolpath.State{}, squareContext(t, 1))
	require.NoError(t, err)

	moves := rec.Moves()
	require.Len(t, moves, 4)
	assert.InDelta(t, -0.25, moves[0].Target.X, 1e-12)
	assert.InDelta(t, moves[0].Target.X, moves[1].Target.X, 1e-12)
}

func TestScanlineCrossAndInset(t *testing.T) {
	rec := &toolpathtest.Recorder{}
	state, err := Scanline{Spacing: 0.5, Inset: 0.1, Pattern: Cross}.
		Fill(newAccumulator(t, rec), toolpath.State{}, squareContext(t, 0))
	require.NoError(t, err)

	assert.Len(t, rec.Moves(), 8)
	assert.InDelta(t, 4*0.8, state.Distance, 1e-9)
}

func TestScanlineRejectsZeroSpacing(t *testing.T) {
	_, err := Scanline{}.Fill(newAccumulator(t, &toolpathtest.Recorder{}), toolpath.State{}, squareContext(t, 0))
	assert.Error(t, err)
}

func TestCrossingsTwoIslands(t *testing.T) {
	m := meshtest.MustLoad(t, meshtest.TwoCubes)
	s, err := slicer.New(m, slicer.Options{LayerHeight: 0.25})
	require.NoError(t, err)
	layer, err := s.SliceAt(0, 0.5)
	require.NoError(t, err)

	outlines, err := toolpath.Outlines(layer)
	require.NoError(t, err)
	xs := crossings(outlines, 0.1, 0, 1)
	assert.InDeltaSlice(t, []float64{-1.5, -0.5, 0.5, 1.5}, xs, 1e-12)
}

type recordingFill struct {
	name string
	seen *[]string
}

func (r recordingFill) Fill(_ *toolpath.Accumulator, state toolpath.State, _ toolpath.LayerContext) (toolpath.State, error) {
	*r.seen = append(*r.seen, r.name)
	return state, nil
}

func TestPlanSelectsSolidLayers(t *testing.T) {
	var seen []string
	plan := Plan{
		Solid:    recordingFill{"solid", &seen},
		Sparse:   recordingFill{"sparse", &seen},
		NumSolid: 2,
	}

	for i := range 6 {
		lc := toolpath.LayerContext{Layer: &slicer.Layer{Index: i}, Count: 6}
		_, err := plan.Fill(nil, toolpath.State{}, lc)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"solid", "solid", "sparse", "sparse", "solid", "solid"}, seen)
}

func TestNew(t *testing.T) {
	for _, kind := range Kinds {
		_, err := New(kind, 0.4, 5, 3)
		assert.NoError(t, err, kind)
	}

	_, err := New("honeycomb", 0.4, 5, 3)
	assert.Error(t, err)

	_, err = New("cross", 0.4, 0, 3)
	assert.Error(t, err)

	fill, err := New("none", 0.4, 5, 1)
	require.NoError(t, err)
	assert.Nil(t, fill.(Plan).Sparse)
}

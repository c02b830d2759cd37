package toolpath

import (
	"fmt"

	"github.com/philipparndt/goslice/internal/slicer"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// Accumulator turns contour geometry into motion records and advances State.
// It is the only writer of State; infill generators go through it as well.
type Accumulator struct {
	sink           Sink
	flow           FlowModel
	travelFeedrate float64
	writeFeedrate  float64
	zOffset        float64
}

// NewAccumulator returns an accumulator writing to sink. zOffset is added to
// the height of every emitted position.
func NewAccumulator(sink Sink, flow FlowModel, travelFeedrate, writeFeedrate, zOffset float64) *Accumulator {
	return &Accumulator{
		sink:           sink,
		flow:           flow,
		travelFeedrate: travelFeedrate,
		writeFeedrate:  writeFeedrate,
		zOffset:        zOffset,
	}
}

// Flow returns the flow model in use.
func (a *Accumulator) Flow() FlowModel {
	return a.flow
}

// Mark forwards a structural marker to the sink.
func (a *Accumulator) Mark(m Marker) error {
	return a.sink.Mark(m)
}

func (a *Accumulator) lift(p geometry.Vector3) geometry.Vector3 {
	p.Z += a.zOffset
	return p
}

// Travel moves the head to p without extruding.
func (a *Accumulator) Travel(state *State, p geometry.Vector3) error {
	target := a.lift(p)
	if err := a.sink.Move(Move{
		Target:    target,
		Feedrate:  a.travelFeedrate,
		Extrusion: state.Extruded,
		Travel:    true,
	}); err != nil {
		return err
	}
	state.Position = target
	return nil
}

// Extrude prints a straight segment from the current position to p.
func (a *Accumulator) Extrude(state *State, p geometry.Vector3) error {
	target := a.lift(p)
	distance := target.Distance(state.Position)
	delta := a.flow.Extrusion(distance)

	if err := a.sink.Move(Move{
		Target:    target,
		Feedrate:  a.writeFeedrate,
		Extrusion: state.Extruded + delta,
	}); err != nil {
		return err
	}
	state.Position = target
	state.Distance += distance
	state.Extruded += delta
	return nil
}

// EmitChain travels to the chain's start and prints the closed loop.
func (a *Accumulator) EmitChain(state *State, c slicer.Chain) error {
	path, err := Path(c)
	if err != nil {
		return err
	}
	if len(path) == 0 {
		return nil
	}
	if err := a.Travel(state, path[0].Position); err != nil {
		return err
	}
	for _, p := range path[1:] {
		if err := a.Extrude(state, p.Position); err != nil {
			return err
		}
	}
	return nil
}

// EmitLayer writes the layer markers and every chain of the layer in order.
func (a *Accumulator) EmitLayer(state *State, layer *slicer.Layer) error {
	if err := a.sink.Mark(Marker{Kind: LayerStart, Layer: layer.Index, Z: layer.Z}); err != nil {
		return err
	}
	if err := a.sink.Mark(Marker{Kind: Outline, Layer: layer.Index, Z: layer.Z}); err != nil {
		return err
	}
	for _, c := range layer.Chains {
		if err := a.EmitChain(state, c); err != nil {
			return err
		}
	}
	return nil
}

// Outlines returns the closed print paths of every chain of the layer.
func Outlines(layer *slicer.Layer) ([][]geometry.Vector3, error) {
	out := make([][]geometry.Vector3, 0, len(layer.Chains))
	for _, c := range layer.Chains {
		path, err := Path(c)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", layer.Index, err)
		}
		if len(path) == 0 {
			continue
		}
		pts := make([]geometry.Vector3, len(path))
		for i, p := range path {
			pts[i] = p.Position
		}
		out = append(out, pts)
	}
	return out, nil
}

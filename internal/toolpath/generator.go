// Package toolpath walks stitched contours and converts them into ordered
// motion records under a filament flow model.
package toolpath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/philipparndt/goslice/internal/logging"
	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/internal/slicer"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// LayerContext is what an infill generator sees of a layer.
type LayerContext struct {
	Layer *slicer.Layer
	// Outlines are the closed print paths of the layer's chains.
	Outlines [][]geometry.Vector3
	// Count is the total number of layers of the print.
	Count  int
	Bounds geometry.BoundingBox
}

// Infill fills a layer after its outline has been printed. Implementations
// emit their moves through acc and return the advanced state.
type Infill interface {
	Fill(acc *Accumulator, state State, lc LayerContext) (State, error)
}

// Settings are the physical parameters of a run.
type Settings struct {
	LayerHeight         float64
	Feedrate            float64
	FeedrateWriting     float64
	FilamentDiameter    float64
	ExtrusionWidth      float64
	ExtrusionMultiplier float64
	BaseOffset          float64
	Workers             int
}

// Generator drives a complete run: slicing in parallel, emission in order.
type Generator struct {
	settings Settings
	infill   Infill
	logger   *slog.Logger
}

// NewGenerator creates a generator. infill may be nil.
func NewGenerator(settings Settings, infill Infill, logger *slog.Logger) *Generator {
	return &Generator{
		settings: settings,
		infill:   infill,
		logger:   logging.OrDiscard(logger),
	}
}

// Run slices m and writes the full motion stream to sink. Flow parameters are
// validated before any layer is touched. On error the stream is incomplete and
// must be discarded by the caller.
func (g *Generator) Run(ctx context.Context, m *mesh.Mesh, sink Sink) (State, error) {
	var state State
	s := g.settings

	flow, err := NewFlowModel(s.ExtrusionMultiplier, s.ExtrusionWidth, s.LayerHeight, s.FilamentDiameter)
	if err != nil {
		return state, err
	}
	if !(s.Feedrate > 0) || !(s.FeedrateWriting > 0) {
		return state, fmt.Errorf("%w: feedrates must be positive (feedrate %g, writing %g)",
			ErrInvalidFlowParameters, s.Feedrate, s.FeedrateWriting)
	}

	sl, err := slicer.New(m, slicer.Options{
		LayerHeight: s.LayerHeight,
		Workers:     s.Workers,
		Logger:      g.logger,
	})
	if err != nil {
		return state, err
	}

	count := len(sl.Heights())
	g.logger.Info("slicing mesh", "layers", count, "faces", m.FaceCount())
	g.logger.Info("flow configured",
		"flow_rate_mm3_s", flow.VolumetricRate(s.FeedrateWriting),
		"extrusion_rate", flow.ExtrusionRate)

	acc := NewAccumulator(sink, flow, s.Feedrate, s.FeedrateWriting, s.BaseOffset)
	bounds := m.Bounds()

	err = sl.Walk(ctx, func(layer *slicer.Layer) error {
		if err := acc.EmitLayer(&state, layer); err != nil {
			return fmt.Errorf("layer %d: %w", layer.Index, err)
		}
		if g.infill == nil || layer.Empty() {
			return nil
		}
		outlines, err := Outlines(layer)
		if err != nil {
			return err
		}
		next, err := g.infill.Fill(acc, state, LayerContext{
			Layer:    layer,
			Outlines: outlines,
			Count:    count,
			Bounds:   bounds,
		})
		if err != nil {
			return fmt.Errorf("infill of layer %d: %w", layer.Index, err)
		}
		state = next
		return nil
	})
	if err != nil {
		return state, err
	}

	if err := sink.Mark(Marker{Kind: EndOfProgram}); err != nil {
		return state, err
	}

	g.logger.Info("toolpath complete", "distance", state.Distance, "filament", state.Extruded)
	return state, nil
}

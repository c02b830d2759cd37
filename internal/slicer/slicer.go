// Package slicer cuts a mesh with horizontal planes and stitches the cut
// segments of every layer into ordered contour chains.
package slicer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/goslice/internal/logging"
	"github.com/philipparndt/goslice/internal/mesh"
)

// Layer is the stitched cross-section at one height.
type Layer struct {
	Index  int
	Z      float64
	Chains []Chain

	Straddling      int
	Coplanar        int
	Irregular       int
	DegenerateEdges int
}

// Empty reports whether the plane missed the mesh.
func (l *Layer) Empty() bool {
	return len(l.Chains) == 0
}

// Options configure a Slicer.
type Options struct {
	LayerHeight float64
	// Workers bounds concurrent layer computations; 0 uses GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Slicer produces layers from an immutable mesh.
type Slicer struct {
	mesh        *mesh.Mesh
	layerHeight float64
	workers     int
	logger      *slog.Logger
}

// New creates a slicer for m.
func New(m *mesh.Mesh, opts Options) (*Slicer, error) {
	if !(opts.LayerHeight > 0) {
		return nil, fmt.Errorf("layer height must be positive, got %g", opts.LayerHeight)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Slicer{
		mesh:        m,
		layerHeight: opts.LayerHeight,
		workers:     workers,
		logger:      logging.OrDiscard(opts.Logger),
	}, nil
}

// Heights returns the cut heights i*layerHeight for every layer below the top
// of the mesh.
func (s *Slicer) Heights() []float64 {
	top := s.mesh.Bounds().Max.Z
	n := int(math.Ceil(top/s.layerHeight - 1e-9))
	if n < 0 {
		n = 0
	}
	heights := make([]float64, n)
	for i := range heights {
		heights[i] = float64(i) * s.layerHeight
	}
	return heights
}

// SliceAt cuts every face at height z and stitches the straddling ones.
func (s *Slicer) SliceAt(index int, z float64) (*Layer, error) {
	layer := &Layer{Index: index, Z: z}
	st := NewStitcher()

	s.mesh.Faces(func(i int, face mesh.Face) bool {
		cut := IntersectFace(s.mesh, face, z)
		layer.DegenerateEdges += cut.DegenerateEdges

		switch cut.Class {
		case Straddling:
			layer.Straddling++
			st.Add(IntersectedFace{
				Index:    i,
				Vertices: face,
				Points:   [2]ContourPoint{cut.Points[0], cut.Points[1]},
			})
		case Coplanar:
			layer.Coplanar++
		case Irregular:
			layer.Irregular++
			s.logger.Debug("skipping irregular face", "layer", index, "face", i, "crossings", len(cut.Points))
		}
		return true
	})

	chains, err := st.Finish()
	if err != nil {
		var uc *UnstitchableContourError
		if errors.As(err, &uc) {
			uc.Layer = index
			uc.Z = z
		}
		return nil, err
	}
	layer.Chains = chains

	for ci, c := range chains {
		if !c.Closed() {
			s.logger.Warn("contour chain is open", "layer", index, "z", z, "chain", ci, "faces", len(c))
		}
	}
	s.logger.Debug("layer sliced", "layer", index, "z", z,
		"straddling", layer.Straddling, "chains", len(chains), "coplanar", layer.Coplanar)
	return layer, nil
}

// sliced carries one layer, or the error that prevented it, to the consumer.
type sliced struct {
	layer *Layer
	err   error
}

// Walk computes layers concurrently and hands them to fn one at a time in
// strictly increasing z order. fn never runs concurrently with itself. Slicing
// errors surface in layer order, so the reported failure is always the lowest
// failing layer and every layer before it has been passed to fn.
func (s *Slicer) Walk(ctx context.Context, fn func(*Layer) error) error {
	heights := s.Heights()
	slots := make([]chan sliced, len(heights))
	for i := range slots {
		slots[i] = make(chan sliced, 1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		workers, wctx := errgroup.WithContext(gctx)
		workers.SetLimit(s.workers)
		for i, z := range heights {
			workers.Go(func() error {
				if err := wctx.Err(); err != nil {
					return err
				}
				layer, err := s.SliceAt(i, z)
				slots[i] <- sliced{layer: layer, err: err}
				return nil
			})
		}
		return workers.Wait()
	})

	g.Go(func() error {
		for _, slot := range slots {
			select {
			case r := <-slot:
				if r.err != nil {
					return r.err
				}
				if err := fn(r.layer); err != nil {
					return err
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}

// Slice returns every layer in z order.
func (s *Slicer) Slice(ctx context.Context) ([]*Layer, error) {
	var layers []*Layer
	err := s.Walk(ctx, func(l *Layer) error {
		layers = append(layers, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return layers, nil
}

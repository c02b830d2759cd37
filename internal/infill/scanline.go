// Package infill fills layer interiors with straight scanlines clipped to the
// layer outlines using the even-odd rule.
package infill

import (
	"fmt"
	"math"
	"slices"

	"github.com/philipparndt/goslice/internal/toolpath"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// Pattern selects which scan directions a layer gets.
type Pattern int

const (
	// Alternating scans along X on even layers and along Y on odd layers.
	Alternating Pattern = iota
	// Cross scans along both X and Y on every layer.
	Cross
)

// Scanline fills with parallel lines Spacing apart, trimmed by Inset at both
// ends so the lines do not overlap the outline bead.
type Scanline struct {
	Spacing float64
	Inset   float64
	Pattern Pattern
}

// Fill implements toolpath.Infill.
func (s Scanline) Fill(acc *toolpath.Accumulator, state toolpath.State, lc toolpath.LayerContext) (toolpath.State, error) {
	if !(s.Spacing > 0) {
		return state, fmt.Errorf("scanline spacing must be positive, got %g", s.Spacing)
	}
	if len(lc.Outlines) == 0 {
		return state, nil
	}
	if err := acc.Mark(toolpath.Marker{Kind: toolpath.InfillStart, Layer: lc.Layer.Index, Z: lc.Layer.Z}); err != nil {
		return state, err
	}

	var axes []int
	switch s.Pattern {
	case Cross:
		axes = []int{0, 1}
	default:
		axes = []int{lc.Layer.Index % 2}
	}

	for _, axis := range axes {
		for _, seg := range s.segments(lc.Outlines, lc.Layer.Z, axis) {
			if err := acc.Travel(&state, seg[0]); err != nil {
				return state, err
			}
			if err := acc.Extrude(&state, seg[1]); err != nil {
				return state, err
			}
		}
	}
	return state, nil
}

// segments returns the fill segments for lines running along axis (0 = X,
// 1 = Y), in zigzag order.
func (s Scanline) segments(outlines [][]geometry.Vector3, z float64, axis int) [][2]geometry.Vector3 {
	along, across := axis, 1-axis

	bounds := geometry.NewBoundingBox()
	for _, poly := range outlines {
		for _, p := range poly {
			bounds.Extend(p)
		}
	}
	lo, hi := bounds.Min.Axis(across), bounds.Max.Axis(across)

	point := func(a, c float64) geometry.Vector3 {
		if axis == 0 {
			return geometry.NewVector3(a, c, z)
		}
		return geometry.NewVector3(c, a, z)
	}

	var out [][2]geometry.Vector3
	line := 0
	for c := lo + s.Spacing/2; c < hi; c += s.Spacing {
		xs := crossings(outlines, c, along, across)
		var row [][2]geometry.Vector3
		for i := 0; i+1 < len(xs); i += 2 {
			a, b := xs[i]+s.Inset, xs[i+1]-s.Inset
			if b-a <= geometry.Epsilon {
				continue
			}
			row = append(row, [2]geometry.Vector3{point(a, c), point(b, c)})
		}
		if line%2 == 1 {
			slices.Reverse(row)
			for i := range row {
				row[i][0], row[i][1] = row[i][1], row[i][0]
			}
		}
		out = append(out, row...)
		line++
	}
	return out
}

// crossings returns the sorted coordinates along `along` where the line
// across == c meets the outline edges. Edges are half-open in the across
// direction so shared vertices are counted once.
func crossings(outlines [][]geometry.Vector3, c float64, along, across int) []float64 {
	var xs []float64
	for _, poly := range outlines {
		for i := 1; i < len(poly); i++ {
			p, q := poly[i-1], poly[i]
			pc, qc := p.Axis(across), q.Axis(across)
			if (pc <= c) == (qc <= c) {
				continue
			}
			t := (c - pc) / (qc - pc)
			xs = append(xs, p.Axis(along)+t*(q.Axis(along)-p.Axis(along)))
		}
	}
	slices.Sort(xs)
	return xs
}

// Plan picks the solid fill for the first and last NumSolid layers and the
// sparse fill for the rest. A nil filler leaves the layer hollow.
type Plan struct {
	Solid    toolpath.Infill
	Sparse   toolpath.Infill
	NumSolid int
}

// Fill implements toolpath.Infill.
func (p Plan) Fill(acc *toolpath.Accumulator, state toolpath.State, lc toolpath.LayerContext) (toolpath.State, error) {
	f := p.Sparse
	if lc.Layer.Index < p.NumSolid || lc.Layer.Index >= lc.Count-p.NumSolid {
		f = p.Solid
	}
	if f == nil {
		return state, nil
	}
	return f.Fill(acc, state, lc)
}

// Kinds lists the sparse fill names accepted by New.
var Kinds = []string{"cross", "solid", "none"}

// New builds the plan for a run. kind selects the sparse fill between the
// solid layers; gap is the spacing of the cross pattern.
func New(kind string, extrusionWidth, gap float64, numSolid int) (toolpath.Infill, error) {
	solid := Scanline{Spacing: extrusionWidth, Inset: extrusionWidth / 2, Pattern: Alternating}

	plan := Plan{Solid: solid, NumSolid: numSolid}
	switch kind {
	case "cross":
		if !(gap > 0) || math.IsInf(gap, 0) {
			return nil, fmt.Errorf("infill gap must be positive, got %g", gap)
		}
		plan.Sparse = Scanline{Spacing: gap, Inset: extrusionWidth / 2, Pattern: Cross}
	case "solid":
		plan.Sparse = solid
	case "none":
	default:
		return nil, fmt.Errorf("unknown infill %q (expected one of %v)", kind, Kinds)
	}
	return plan, nil
}

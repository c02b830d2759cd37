package toolpath

import "github.com/philipparndt/goslice/pkg/geometry"

// State is the physical state threaded through the whole print. It only ever
// moves forward and must be advanced one layer at a time in z order.
type State struct {
	Position geometry.Vector3
	Distance float64
	Extruded float64
}

// Move is one motion record.
type Move struct {
	Target   geometry.Vector3
	Feedrate float64
	// Extrusion is the cumulative filament length once the move completes.
	// Travel moves carry the unchanged total.
	Extrusion float64
	Travel    bool
}

// MarkerKind identifies a structural marker in the motion stream.
type MarkerKind int

const (
	// LayerStart opens a layer.
	LayerStart MarkerKind = iota
	// Outline precedes the contour moves of a layer.
	Outline
	// InfillStart precedes the infill moves of a layer.
	InfillStart
	// EndOfProgram closes the stream.
	EndOfProgram
)

// Marker is a non-motion record in the stream.
type Marker struct {
	Kind  MarkerKind
	Layer int
	Z     float64
}

// Sink receives motion records in order. The core never reads back from it.
type Sink interface {
	Move(m Move) error
	Mark(m Marker) error
}

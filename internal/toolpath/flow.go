package toolpath

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFlowParameters is returned for non-positive physical constants.
var ErrInvalidFlowParameters = errors.New("invalid flow parameters")

// FlowModel converts head travel into filament feed length. It assumes a bead
// of constant cross section extrusion_multiplier * width * layer_height.
type FlowModel struct {
	// FlowArea is the bead cross section in square model units.
	FlowArea float64
	// ExtrusionRate is the filament length fed per unit of head travel.
	ExtrusionRate float64
}

// NewFlowModel derives the flow model for one run.
func NewFlowModel(multiplier, width, layerHeight, filamentDiameter float64) (FlowModel, error) {
	params := []struct {
		name  string
		value float64
	}{
		{"filament diameter", filamentDiameter},
		{"extrusion width", width},
		{"extrusion multiplier", multiplier},
		{"layer height", layerHeight},
	}
	for _, p := range params {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return FlowModel{}, fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidFlowParameters, p.name, p.value)
		}
	}

	area := multiplier * width * layerHeight
	radius := filamentDiameter / 2
	return FlowModel{
		FlowArea:      area,
		ExtrusionRate: area / (math.Pi * radius * radius),
	}, nil
}

// Extrusion returns the filament length for a move of the given distance.
func (f FlowModel) Extrusion(distance float64) float64 {
	return f.ExtrusionRate * distance
}

// VolumetricRate returns the deposited volume per second at a feedrate given
// in units per minute.
func (f FlowModel) VolumetricRate(feedrate float64) float64 {
	return f.FlowArea * feedrate / 60
}

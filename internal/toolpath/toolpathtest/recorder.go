// Package toolpathtest provides an in-memory motion sink for tests.
package toolpathtest

import "github.com/philipparndt/goslice/internal/toolpath"

// Record is either a move or a marker, in stream order.
type Record struct {
	Move   *toolpath.Move
	Marker *toolpath.Marker
}

// Recorder keeps every record it receives.
type Recorder struct {
	Records []Record
}

// Move implements toolpath.Sink.
func (r *Recorder) Move(m toolpath.Move) error {
	r.Records = append(r.Records, Record{Move: &m})
	return nil
}

// Mark implements toolpath.Sink.
func (r *Recorder) Mark(m toolpath.Marker) error {
	r.Records = append(r.Records, Record{Marker: &m})
	return nil
}

// Moves returns the recorded moves in order.
func (r *Recorder) Moves() []toolpath.Move {
	var out []toolpath.Move
	for _, rec := range r.Records {
		if rec.Move != nil {
			out = append(out, *rec.Move)
		}
	}
	return out
}

// Markers returns the recorded markers of the given kind in order.
func (r *Recorder) Markers(kind toolpath.MarkerKind) []toolpath.Marker {
	var out []toolpath.Marker
	for _, rec := range r.Records {
		if rec.Marker != nil && rec.Marker.Kind == kind {
			out = append(out, *rec.Marker)
		}
	}
	return out
}

package slicer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/philipparndt/goslice/internal/mesh"
)

// ErrUnstitchableContour is the sentinel wrapped by UnstitchableContourError.
var ErrUnstitchableContour = errors.New("unstitchable contour")

// UnstitchableContourError reports straddling faces that share no edge with
// any other straddling face of the layer, usually a sign of a non-manifold mesh.
type UnstitchableContourError struct {
	Layer int
	Z     float64
	Faces []int
}

func (e *UnstitchableContourError) Error() string {
	return fmt.Sprintf("unstitchable contour at layer %d (z=%g): faces %v share no edge with the contour",
		e.Layer, e.Z, e.Faces)
}

func (e *UnstitchableContourError) Unwrap() error {
	return ErrUnstitchableContour
}

// IntersectedFace pairs a straddling face with its two contour points for one
// layer.
type IntersectedFace struct {
	Index    int
	Vertices mesh.Face
	Points   [2]ContourPoint
}

// Adjacent reports whether the cut segments of the two faces meet: both faces
// carry a contour point on the same mesh edge. Such faces always share that
// edge's two vertices. A shared edge lying entirely above or below the plane
// does not count.
func (f IntersectedFace) Adjacent(other IntersectedFace) bool {
	for _, p := range f.Points {
		if p.Edge == other.Points[0].Edge || p.Edge == other.Points[1].Edge {
			return true
		}
	}
	return false
}

// Chain is an ordered run of adjacent faces whose cut segments form one
// contour loop.
type Chain []IntersectedFace

// Closed reports whether the last face links back to the first.
func (c Chain) Closed() bool {
	return len(c) >= 3 && c[len(c)-1].Adjacent(c[0])
}

// FaceIndices returns the mesh face indices in chain order.
func (c Chain) FaceIndices() []int {
	out := make([]int, len(c))
	for i, f := range c {
		out[i] = f.Index
	}
	return out
}

// Stitcher assembles faces arriving in arbitrary order into chains. Faces are
// appended to the tail of the active chain when adjacent to it and parked in a
// pending set otherwise; every append rescans the pending set.
type Stitcher struct {
	chains  []Chain
	active  Chain
	pending []IntersectedFace
}

// NewStitcher returns an empty stitcher.
func NewStitcher() *Stitcher {
	return &Stitcher{}
}

// Add inserts one straddling face.
func (s *Stitcher) Add(f IntersectedFace) {
	if len(s.active) == 0 {
		s.active = append(s.active, f)
		return
	}
	if s.active[len(s.active)-1].Adjacent(f) {
		s.active = append(s.active, f)
		s.drain()
		return
	}
	s.pending = append(s.pending, f)
}

// Pending returns the number of faces not yet linked into a chain.
func (s *Stitcher) Pending() int {
	return len(s.pending)
}

// drain promotes pending faces adjacent to the tail, one per pass, until a
// pass promotes nothing. Each pass either shrinks the pending set or stops.
func (s *Stitcher) drain() bool {
	promoted := false
	for {
		tail := s.active[len(s.active)-1]
		i := slices.IndexFunc(s.pending, tail.Adjacent)
		if i < 0 {
			return promoted
		}
		s.active = append(s.active, s.pending[i])
		s.pending = slices.Delete(s.pending, i, i+1)
		promoted = true
	}
}

// extendHead grows the active chain from its first face by walking it in
// reverse. Faces adjacent to the head are parked while the tail grows, so an
// open contour would otherwise be split in two.
func (s *Stitcher) extendHead() {
	if len(s.active) < 2 || len(s.pending) == 0 {
		return
	}
	slices.Reverse(s.active)
	if !s.drain() {
		slices.Reverse(s.active)
	}
}

func (s *Stitcher) seal() {
	if len(s.active) > 0 {
		s.chains = append(s.chains, s.active)
		s.active = nil
	}
}

// Finish closes the active chain and seeds a new chain from the pending set
// until it is empty. Every iteration consumes at least one pending face, so
// the loop runs at most once per face. Faces that end up alone in a chain and
// share no edge with any other face yield an UnstitchableContourError.
func (s *Stitcher) Finish() ([]Chain, error) {
	for {
		s.extendHead()
		s.seal()
		if len(s.pending) == 0 {
			break
		}
		s.active = Chain{s.pending[0]}
		s.pending = slices.Delete(s.pending, 0, 1)
		s.drain()
	}

	var stranded []int
	for i, c := range s.chains {
		if len(c) == 1 && !s.linked(i, c[0]) {
			stranded = append(stranded, c[0].Index)
		}
	}

	chains := s.chains
	s.chains = nil
	if len(stranded) > 0 {
		return chains, &UnstitchableContourError{Faces: stranded}
	}
	return chains, nil
}

// linked reports whether f is adjacent to a member of any chain other than own.
func (s *Stitcher) linked(own int, f IntersectedFace) bool {
	for i, c := range s.chains {
		if i == own {
			continue
		}
		if slices.ContainsFunc(c, f.Adjacent) {
			return true
		}
	}
	return false
}

// Stitch chains the faces in the given order.
func Stitch(faces []IntersectedFace) ([]Chain, error) {
	s := NewStitcher()
	for _, f := range faces {
		s.Add(f)
	}
	return s.Finish()
}

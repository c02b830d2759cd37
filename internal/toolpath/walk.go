package toolpath

import (
	"errors"
	"fmt"

	"github.com/philipparndt/goslice/internal/slicer"
)

// ErrBrokenChain is returned when consecutive faces of a chain do not share a
// contour point.
var ErrBrokenChain = errors.New("broken contour chain")

// Path returns the print order of a chain's contour points: the start point,
// one new point per face, and the start point again to close the loop.
//
// The start is the point of the first face that the second face does not
// share, so the first printed segment heads along the chain. After that each
// face contributes the point that differs from the previously visited one.
// Points are compared by the mesh edge they lie on.
func Path(c slicer.Chain) ([]slicer.ContourPoint, error) {
	if len(c) == 0 {
		return nil, nil
	}

	start, next := c[0].Points[0], c[0].Points[1]
	if len(c) > 1 && hasEdge(c[1], start.Edge) {
		start, next = next, start
	}

	path := make([]slicer.ContourPoint, 0, len(c)+2)
	path = append(path, start, next)

	prev := next
	for i, f := range c[1:] {
		cur, ok := nextPoint(f, prev)
		if !ok {
			return nil, fmt.Errorf("%w: face %d does not continue face %d", ErrBrokenChain, f.Index, c[i].Index)
		}
		path = append(path, cur)
		prev = cur
	}
	return append(path, start), nil
}

// nextPoint picks the point of f that differs from prev. It reports false
// when f has no point on prev's edge.
func nextPoint(f slicer.IntersectedFace, prev slicer.ContourPoint) (slicer.ContourPoint, bool) {
	switch prev.Edge {
	case f.Points[0].Edge:
		return f.Points[1], true
	case f.Points[1].Edge:
		return f.Points[0], true
	default:
		return slicer.ContourPoint{}, false
	}
}

func hasEdge(f slicer.IntersectedFace, e slicer.Edge) bool {
	return f.Points[0].Edge == e || f.Points[1].Edge == e
}

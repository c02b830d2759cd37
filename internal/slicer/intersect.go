package slicer

import (
	"errors"

	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// ErrDegenerateEdge is returned for an edge with no height difference. Such an
// edge never yields a contour point.
var ErrDegenerateEdge = errors.New("degenerate edge")

// Edge identifies a mesh edge by its vertex indices, smaller index first.
type Edge struct {
	A, B int
}

// NewEdge returns the canonical edge between vertices a and b.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// ContourPoint is where a cut plane crosses a mesh edge.
type ContourPoint struct {
	Position geometry.Vector3
	Edge     Edge
}

// Classification describes how a face relates to a cut plane.
type Classification int

const (
	// Clear faces lie entirely on one side of the plane.
	Clear Classification = iota
	// Straddling faces are crossed by exactly two of their edges.
	Straddling
	// Coplanar faces lie in the plane; every edge is degenerate.
	Coplanar
	// Irregular faces are crossed by a number of edges other than 0 or 2.
	// Only non-convex polygons produce this.
	Irregular
)

func (c Classification) String() string {
	switch c {
	case Clear:
		return "clear"
	case Straddling:
		return "straddling"
	case Coplanar:
		return "coplanar"
	case Irregular:
		return "irregular"
	default:
		return "unknown"
	}
}

// FaceCut is the result of intersecting one face with one plane.
type FaceCut struct {
	Class           Classification
	Points          []ContourPoint
	DegenerateEdges int
}

// IntersectEdge interpolates the point at height z on the segment from low to
// up. The caller guarantees low.Z <= z < up.Z for a crossing edge; the returned
// point always has Z == z exactly.
func IntersectEdge(low, up geometry.Vector3, z float64) (geometry.Vector3, error) {
	if up.Z == low.Z {
		return geometry.Vector3{}, ErrDegenerateEdge
	}
	t := (z - low.Z) / (up.Z - low.Z)
	p := low.Lerp(up, t)
	p.Z = z
	return p, nil
}

// IntersectFace cuts the polygon face of m at height z. A vertex is lower
// when its z <= the plane height and upper otherwise; only real polygon edges
// joining a lower and an upper vertex produce points.
func IntersectFace(m *mesh.Mesh, face mesh.Face, z float64) FaceCut {
	var cut FaceCut
	n := len(face)

	for i := range n {
		ia, ib := face[i], face[(i+1)%n]
		a, b := m.Vertex(ia), m.Vertex(ib)
		lowerA, lowerB := a.Z <= z, b.Z <= z

		if lowerA == lowerB {
			if a.Z == z && b.Z == z {
				cut.DegenerateEdges++
			}
			continue
		}

		low, up := a, b
		if !lowerA {
			low, up = b, a
		}
		// low.Z <= z < up.Z, so the edge is never horizontal here.
		p, _ := IntersectEdge(low, up, z)
		cut.Points = append(cut.Points, ContourPoint{Position: p, Edge: NewEdge(ia, ib)})
	}

	switch {
	case len(cut.Points) == 2:
		cut.Class = Straddling
	case len(cut.Points) == 0 && cut.DegenerateEdges == n:
		cut.Class = Coplanar
	case len(cut.Points) == 0:
		cut.Class = Clear
	default:
		cut.Class = Irregular
	}
	return cut
}

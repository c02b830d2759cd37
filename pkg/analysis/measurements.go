package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/pkg/geometry"
)

// EdgeKey identifies an undirected mesh edge by its sorted vertex indices
type EdgeKey struct {
	A, B int
}

func newEdgeKey(a, b int) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// MeasurementResult contains various measurements of a mesh
type MeasurementResult struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Volume        float64
	SurfaceArea   float64
	VertexCount   int
	FaceCount     int
	TriangleCount int
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64

	// BoundaryEdges are used by exactly one face, NonManifoldEdges by three
	// or more. Both are sorted.
	BoundaryEdges    []EdgeKey
	NonManifoldEdges []EdgeKey
}

// Watertight reports whether every edge is shared by exactly two faces
func (r *MeasurementResult) Watertight() bool {
	return len(r.BoundaryEdges) == 0 && len(r.NonManifoldEdges) == 0
}

// AnalyzeMesh performs comprehensive analysis on a mesh. Polygon faces are
// fanned into triangles for area and volume.
func AnalyzeMesh(m *mesh.Mesh) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox: m.Bounds(),
		VertexCount: m.VertexCount(),
		FaceCount:   m.FaceCount(),
	}
	result.Dimensions = result.BoundingBox.Size()

	uses := make(map[EdgeKey]int)
	volume := 0.0

	m.Faces(func(_ int, face mesh.Face) bool {
		for i := range face {
			uses[newEdgeKey(face[i], face[(i+1)%len(face)])]++
		}

		v0 := m.Vertex(face[0])
		for i := 1; i+1 < len(face); i++ {
			t := geometry.NewTriangle(geometry.Vector3{}, v0, m.Vertex(face[i]), m.Vertex(face[i+1]))
			result.SurfaceArea += t.Area()
			volume += t.SignedVolume()
			result.TriangleCount++
		}
		return true
	})
	result.Volume = math.Abs(volume)

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for edge, count := range uses {
		length := m.Vertex(edge.A).Distance(m.Vertex(edge.B))
		totalLength += length
		minLength = math.Min(minLength, length)
		maxLength = math.Max(maxLength, length)

		switch {
		case count == 1:
			result.BoundaryEdges = append(result.BoundaryEdges, edge)
		case count > 2:
			result.NonManifoldEdges = append(result.NonManifoldEdges, edge)
		}
	}

	result.EdgeCount = len(uses)
	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}
	sortEdges(result.BoundaryEdges)
	sortEdges(result.NonManifoldEdges)

	return result
}

func sortEdges(edges []EdgeKey) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}

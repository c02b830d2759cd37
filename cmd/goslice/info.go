package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goslice/internal/source"
	"github.com/philipparndt/goslice/pkg/analysis"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a model",
	Long:  "Show dimensions, face and edge counts, surface area, volume, edge statistics and manifold diagnostics of a model after centering.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	model, err := source.Load(cmd.Context(), filename, logger)
	if err != nil {
		return err
	}
	m, err := model.Mesh(logger)
	if err != nil {
		return err
	}

	result := analysis.AnalyzeMesh(m)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Model Information")
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "File: %s\n\n", model.Path)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Vertices: %d\n", result.VertexCount)
	fmt.Fprintf(out, "  Faces: %d (%d triangles)\n", result.FaceCount, result.TriangleCount)
	fmt.Fprintf(out, "  Edges: %d\n", result.EdgeCount)
	fmt.Fprintf(out, "  Surface Area: %.6f square units\n", result.SurfaceArea)
	fmt.Fprintf(out, "  Volume: %.6f cubic units\n\n", result.Volume)

	fmt.Fprintln(out, "Bounding Box (centered):")
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
	fmt.Fprintf(out, "  Centering offset: %s\n\n", analysis.FormatVector(m.Offset()))

	fmt.Fprintln(out, "Dimensions:")
	fmt.Fprintf(out, "  Width (X): %.6f units\n", result.Dimensions.X)
	fmt.Fprintf(out, "  Depth (Y): %.6f units\n", result.Dimensions.Y)
	fmt.Fprintf(out, "  Height (Z): %.6f units\n", result.Dimensions.Z)
	fmt.Fprintf(out, "  Diagonal: %.6f units\n\n", result.BoundingBox.Diagonal())

	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Minimum: %.6f units\n", result.MinEdgeLength)
	fmt.Fprintf(out, "  Maximum: %.6f units\n", result.MaxEdgeLength)
	fmt.Fprintf(out, "  Average: %.6f units\n\n", result.AvgEdgeLength)

	fmt.Fprintln(out, "Manifold Check:")
	if result.Watertight() {
		fmt.Fprintln(out, "  Watertight: yes")
		return nil
	}
	fmt.Fprintln(out, "  Watertight: no")
	fmt.Fprintf(out, "  Boundary edges: %d\n", len(result.BoundaryEdges))
	fmt.Fprintf(out, "  Non-manifold edges: %d\n", len(result.NonManifoldEdges))
	for i, e := range result.NonManifoldEdges {
		if i == 10 {
			fmt.Fprintf(out, "    ... and %d more\n", len(result.NonManifoldEdges)-i)
			break
		}
		fmt.Fprintf(out, "    %d-%d\n", e.A, e.B)
	}
	return nil
}

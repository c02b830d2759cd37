package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/internal/mesh/meshtest"
	"github.com/philipparndt/goslice/internal/slicer"
	"github.com/philipparndt/goslice/pkg/geometry"
)

func writeOBJ(t *testing.T, dir string, vertices []geometry.Vector3, faces []mesh.Face) string {
	t.Helper()
	var b strings.Builder
	for _, v := range vertices {
		fmt.Fprintf(&b, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, f := range faces {
		b.WriteString("f")
		for _, i := range f {
			fmt.Fprintf(&b, " %d", i+1)
		}
		b.WriteString("\n")
	}
	path := filepath.Join(dir, "model.obj")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.Output = filepath.Join(dir, "out.gcode")
	cfg.Workers = 2
	return cfg.Resolve()
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestSliceFileWritesProgram(t *testing.T) {
	dir := t.TempDir()
	vertices, faces := meshtest.UnitCube()
	path := writeOBJ(t, dir, vertices, faces)
	cfg := testConfig(dir)

	var out bytes.Buffer
	model, err := sliceFile(t.Context(), path, cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, model.Deps)

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	program := string(data)

	assert.Contains(t, program, "G21")
	assert.Contains(t, program, "M104 S200")
	assert.Contains(t, program, "M140 S60")
	assert.Contains(t, program, "; Printing layer 0")
	assert.Contains(t, program, "; Printing layer 4")
	assert.NotContains(t, program, "; Printing layer 5")
	assert.Contains(t, program, "M400")

	assert.Contains(t, out.String(), "Nozzle distance")
	assert.ElementsMatch(t, []string{"model.obj", "out.gcode"}, dirEntries(t, dir))
}

func TestSliceFileLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	vertices, faces := meshtest.UnitCube()
	// A lone triangle crossing z=0.8 cannot be stitched to anything.
	vertices = append(vertices,
		geometry.NewVector3(3, 0, 0.7),
		geometry.NewVector3(4, 0, 0.7),
		geometry.NewVector3(3.5, 1, 0.9),
	)
	faces = append(faces, mesh.Face{8, 9, 10})
	path := writeOBJ(t, dir, vertices, faces)

	_, err := sliceFile(t.Context(), path, testConfig(dir), &bytes.Buffer{})
	require.ErrorIs(t, err, slicer.ErrUnstitchableContour)

	var unstitchable *slicer.UnstitchableContourError
	require.ErrorAs(t, err, &unstitchable)
	assert.Equal(t, 4, unstitchable.Layer)

	assert.Equal(t, []string{"model.obj"}, dirEntries(t, dir))
}

func TestSliceFileScalesModel(t *testing.T) {
	dir := t.TempDir()
	vertices, faces := meshtest.UnitCube()
	path := writeOBJ(t, dir, vertices, faces)
	cfg := testConfig(dir)
	cfg.Scale = 2

	_, err := sliceFile(t.Context(), path, cfg, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	// A 2x2x2 cube at 0.2mm layers has layers 0 to 9.
	assert.Contains(t, string(data), "; Printing layer 9")
	assert.NotContains(t, string(data), "; Printing layer 10")
}

package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/pkg/openscad"
)

const tetraOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
f 1 3 2
f 1 2 4
f 1 4 3
f 2 3 4
`

const tetraSTL = `solid t
facet normal 0 0 -1
outer loop
vertex 0 0 0
vertex 0 1 0
vertex 1 0 0
endloop
endfacet
facet normal 0 -1 0
outer loop
vertex 0 0 0
vertex 1 0 0
vertex 0 0 1
endloop
endfacet
facet normal -1 0 0
outer loop
vertex 0 0 0
vertex 0 0 1
vertex 0 1 0
endloop
endfacet
facet normal 1 1 1
outer loop
vertex 1 0 0
vertex 0 1 0
vertex 0 0 1
endloop
endfacet
endsolid t
`

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOBJ(t *testing.T) {
	path := write(t, "tetra.obj", tetraOBJ)

	model, err := Load(t.Context(), path, nil)
	require.NoError(t, err)

	assert.Len(t, model.Vertices, 4)
	assert.Equal(t, []mesh.Face{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}, model.Faces)
	assert.Equal(t, []string{path}, model.Deps)

	m, err := model.Mesh(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, m.FaceCount())
}

func TestLoadSTLWeldsVertices(t *testing.T) {
	model, err := Load(t.Context(), write(t, "TETRA.STL", tetraSTL), nil)
	require.NoError(t, err)

	assert.Len(t, model.Vertices, 4)
	assert.Len(t, model.Faces, 4)
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load(t.Context(), write(t, "model.ply", "ply"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.Context(), filepath.Join(t.TempDir(), "missing.obj"), nil)
	assert.Error(t, err)
}

func TestLoadSCADWithoutOpenSCAD(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Load(t.Context(), write(t, "cube.scad", "cube(10);\n"), nil)
	assert.ErrorIs(t, err, openscad.ErrNotInstalled)
}

func TestMeshRejectsMalformed(t *testing.T) {
	model, err := Load(t.Context(), write(t, "empty.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\n"), nil)
	require.NoError(t, err)

	_, err = model.Mesh(nil)
	assert.ErrorIs(t, err, mesh.ErrMalformedGeometry)
}

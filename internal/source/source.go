// Package source turns a model file on disk into the vertex and face tables
// of a mesh.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/goslice/internal/logging"
	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/pkg/geometry"
	"github.com/philipparndt/goslice/pkg/obj"
	"github.com/philipparndt/goslice/pkg/openscad"
	"github.com/philipparndt/goslice/pkg/stl"
)

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Extensions lists the accepted model file extensions.
var Extensions = []string{".stl", ".obj", ".scad"}

// Model is a loaded model file.
type Model struct {
	Path     string
	Vertices []geometry.Vector3
	Faces    []mesh.Face

	// Deps are the files the model was built from, the model file first.
	Deps []string
}

// Load reads path, choosing the reader by extension. OpenSCAD files are
// rendered to STL in a temporary directory first.
func Load(ctx context.Context, path string, logger *slog.Logger) (*Model, error) {
	logger = logging.OrDiscard(logger)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	model := &Model{Path: abs, Deps: []string{abs}}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		err = model.loadSTL(abs)
	case ".obj":
		err = model.loadOBJ(abs)
	case ".scad":
		err = model.loadSCAD(ctx, abs, logger)
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnsupportedFormat, ext, strings.Join(Extensions, ", "))
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("model loaded", "path", abs, "vertices", len(model.Vertices), "faces", len(model.Faces))
	return model, nil
}

func (m *Model) loadSTL(path string) error {
	parsed, err := stl.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	vertices, triangles := parsed.Indexed()
	m.Vertices = vertices
	m.Faces = make([]mesh.Face, len(triangles))
	for i, t := range triangles {
		m.Faces[i] = mesh.Face{t[0], t[1], t[2]}
	}
	return nil
}

func (m *Model) loadOBJ(path string) error {
	parsed, err := obj.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	m.Vertices = parsed.Vertices
	m.Faces = make([]mesh.Face, len(parsed.Faces))
	for i, f := range parsed.Faces {
		m.Faces[i] = mesh.Face(f)
	}
	return nil
}

func (m *Model) loadSCAD(ctx context.Context, path string, logger *slog.Logger) error {
	renderer := openscad.NewRenderer(filepath.Dir(path), logger)

	deps, err := renderer.ResolveDependencies(path)
	if err != nil {
		return err
	}
	m.Deps = deps

	dir, err := os.MkdirTemp("", "goslice-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	rendered := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".stl")
	if err := renderer.RenderToSTL(ctx, path, rendered); err != nil {
		return err
	}
	return m.loadSTL(rendered)
}

// Mesh validates and centers the loaded tables.
func (m *Model) Mesh(logger *slog.Logger) (*mesh.Mesh, error) {
	loaded, err := mesh.Load(logger, m.Vertices, m.Faces)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	return loaded, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goslice/internal/config"
	"github.com/philipparndt/goslice/internal/gcode"
	"github.com/philipparndt/goslice/internal/infill"
	"github.com/philipparndt/goslice/internal/mesh"
	"github.com/philipparndt/goslice/internal/source"
	"github.com/philipparndt/goslice/internal/toolpath"
	"github.com/philipparndt/goslice/pkg/watcher"
	"github.com/philipparndt/goslice/version"
)

var (
	configFile string
	watchMode  bool
)

var sliceCmd = &cobra.Command{
	Use:   "slice [file]",
	Short: "Slice a model into G-code",
	Long: `Slice an STL, OBJ or OpenSCAD model and write the G-code program.

Options are resolved from the built-in defaults, then the YAML profile given
with --config, then the flags set on the command line. The output file is only
replaced once the whole program has been generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSlice,
}

func init() {
	config.RegisterFlags(sliceCmd.Flags())
	sliceCmd.Flags().StringVar(&configFile, "config", "", "YAML profile applied before the command line flags")
	sliceCmd.Flags().BoolVar(&watchMode, "watch", false, "slice again whenever the model or one of its includes changes")
	rootCmd.AddCommand(sliceCmd)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return cfg, err
		}
	}

	cfg, err := cfg.Override(cmd.Flags())
	if err != nil {
		return cfg, err
	}
	cfg = cfg.Resolve()
	return cfg, cfg.Validate()
}

func runSlice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if watchMode {
		return watchAndSlice(cmd.Context(), args[0], cfg, cmd.OutOrStdout())
	}
	_, err = sliceFile(cmd.Context(), args[0], cfg, cmd.OutOrStdout())
	return err
}

// sliceFile runs the full pipeline for one model file. The loaded model is
// returned even when slicing fails so that watch mode can track its files.
func sliceFile(ctx context.Context, path string, cfg config.Config, out io.Writer) (*source.Model, error) {
	model, err := source.Load(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	m, err := model.Mesh(logger)
	if err != nil {
		return model, err
	}
	m = m.Scaled(cfg.Scale)

	fill, err := infill.New(cfg.Infill, cfg.ExtrusionWidth, cfg.InfillGap, cfg.NumSolidFill)
	if err != nil {
		return model, err
	}
	hotend, bed, err := cfg.Temperatures()
	if err != nil {
		return model, err
	}

	gen := toolpath.NewGenerator(toolpath.Settings{
		LayerHeight:         cfg.LayerHeight,
		Feedrate:            cfg.Feedrate,
		FeedrateWriting:     *cfg.FeedrateWriting,
		FilamentDiameter:    cfg.FilamentDiameter,
		ExtrusionWidth:      cfg.ExtrusionWidth,
		ExtrusionMultiplier: cfg.ExtrusionMultiplier,
		BaseOffset:          *cfg.BaseOffset,
		Workers:             cfg.Workers,
	}, fill, logger)

	start := time.Now()
	state, err := writeGCode(ctx, cfg.Output, m, gen, gcode.Options{
		Version:          version.GetVersion(),
		Units:            cfg.Units,
		Feedrate:         cfg.Feedrate,
		LayerHeight:      cfg.LayerHeight,
		FilamentDiameter: cfg.FilamentDiameter,
		Temperature:      hotend,
		BedTemperature:   bed,
	})
	if err != nil {
		return model, err
	}

	fmt.Fprintf(out, "Wrote %s in %s\n", cfg.Output, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "  Nozzle distance: %.2f %s\n", state.Distance, cfg.Units)
	fmt.Fprintf(out, "  Filament used:   %.2f %s\n", state.Extruded, cfg.Units)
	return model, nil
}

// writeGCode generates the program into a temporary file next to path and
// renames it into place on success. On failure nothing is left behind.
func writeGCode(ctx context.Context, path string, m *mesh.Mesh, gen *toolpath.Generator, opts gcode.Options) (state toolpath.State, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return state, fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w, err := gcode.NewWriter(tmp, opts)
	if err != nil {
		return state, err
	}
	if state, err = gen.Run(ctx, m, w); err != nil {
		return state, err
	}
	if err = w.Close(); err != nil {
		return state, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return state, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return state, fmt.Errorf("failed to move output into place: %w", err)
	}
	return state, nil
}

// watchAndSlice slices once, then again after every change of the model or
// its dependencies until ctx is cancelled. Failed runs are logged and the
// previous output is kept.
func watchAndSlice(ctx context.Context, path string, cfg config.Config, out io.Writer) error {
	deps := []string{path}
	model, err := sliceFile(ctx, path, cfg, out)
	if err != nil {
		logger.Error("slicing failed", "error", err)
	}
	if model != nil {
		deps = model.Deps
	}

	fw, err := watcher.NewFileWatcher(500*time.Millisecond, logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Watch(deps...); err != nil {
		return err
	}
	logger.Info("watching for changes", "files", deps)

	err = fw.Run(ctx, func(changed string) {
		logger.Info("file changed, slicing again", "path", changed)
		model, err := sliceFile(ctx, path, cfg, out)
		if err != nil {
			logger.Error("slicing failed", "error", err)
		}
		if model == nil {
			return
		}
		if err := fw.Replace(model.Deps...); err != nil {
			logger.Warn("failed to update watched files", "error", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/philipparndt/goslice/internal/slicer"
	"github.com/philipparndt/goslice/internal/source"
	"github.com/philipparndt/goslice/internal/toolpath"
)

var (
	layersHeight  float64
	layersScale   float64
	layersWorkers int
)

var layersCmd = &cobra.Command{
	Use:   "layers [file]",
	Short: "List the layers of a model without writing G-code",
	Long:  "Slice a model and print one line per layer: height, stitched chains, straddling and skipped faces, and outline perimeter.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayers,
}

func init() {
	layersCmd.Flags().Float64VarP(&layersHeight, "layer_height", "l", 0.2, "the height of the slices in mm")
	layersCmd.Flags().Float64VarP(&layersScale, "scale", "s", 1, "scale all object values by this number")
	layersCmd.Flags().IntVar(&layersWorkers, "workers", 0, "concurrent layer computations (0 uses all CPUs)")
	rootCmd.AddCommand(layersCmd)
}

func runLayers(cmd *cobra.Command, args []string) error {
	if !(layersScale > 0) {
		return fmt.Errorf("scale must be positive, got %g", layersScale)
	}

	model, err := source.Load(cmd.Context(), args[0], logger)
	if err != nil {
		return err
	}
	m, err := model.Mesh(logger)
	if err != nil {
		return err
	}

	sl, err := slicer.New(m.Scaled(layersScale), slicer.Options{
		LayerHeight: layersHeight,
		Workers:     layersWorkers,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "layer\tz\tchains\tfaces\tcoplanar\tirregular\tperimeter\t")

	err = sl.Walk(cmd.Context(), func(layer *slicer.Layer) error {
		outlines, err := toolpath.Outlines(layer)
		if err != nil {
			return err
		}
		perimeter := 0.0
		for _, outline := range outlines {
			for i := 1; i < len(outline); i++ {
				perimeter += outline[i-1].Distance(outline[i])
			}
		}
		_, err = fmt.Fprintf(tw, "%d\t%.4f\t%d\t%d\t%d\t%d\t%.4f\t\n",
			layer.Index, layer.Z, len(layer.Chains), layer.Straddling, layer.Coplanar, layer.Irregular, perimeter)
		return err
	})
	if flushErr := tw.Flush(); err == nil {
		err = flushErr
	}
	return err
}

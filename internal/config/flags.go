package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/philipparndt/goslice/internal/infill"
)

// RegisterFlags adds one flag per option to fs. Flag defaults mirror Default
// so that help output shows the effective values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("output", "o", d.Output, "the name of the output file")
	fs.Float64P("layer_height", "l", d.LayerHeight, "the height of the slices in mm")
	fs.Float64P("scale", "s", d.Scale, "scale all object values by this number")
	fs.Float64P("feedrate", "f", d.Feedrate, "travel speed of the print head in mm/min")
	fs.Float64("feedrate_writing", 0, "print head speed while extruding in mm/min (default feedrate/2)")
	fs.Float64P("filament_diameter", "d", d.FilamentDiameter, "the diameter of the filament")
	fs.Float64P("extrusion_width", "w", d.ExtrusionWidth, "width of the squashed filament cross section")
	fs.Float64("extrusion_multiplier", d.ExtrusionMultiplier, "multiplier applied to every extrusion length")
	fs.String("units", d.Units, "units of the program, mm or in")
	fs.String("misc_infill", d.Infill, "infill between the solid layers: "+strings.Join(infill.Kinds, ", "))
	fs.Float64("infill_gap", d.InfillGap, "distance between cross infill lines")
	fs.Int("num_solid_fill", d.NumSolidFill, "number of solid layers at the base and below the ceiling")
	fs.StringP("temperature", "t", d.Temperature, "hotend temperature in degrees C or a material (PLA, PETG, ABS)")
	fs.String("bed_temperature", d.BedTemperature, "bed temperature in degrees C or a material (PLA, PETG, ABS)")
	fs.Float64("base_offset", 0, "lift of the first layer above the bed (default layer_height/2)")
	fs.Int("workers", d.Workers, "concurrent layer computations (0 uses all CPUs)")
}

// Override applies the flags that were set explicitly on the command line.
func (c Config) Override(fs *pflag.FlagSet) (Config, error) {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = c.set(fs, f.Name)
	})
	if err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c, nil
}

func (c *Config) set(fs *pflag.FlagSet, name string) error {
	var err error
	switch name {
	case "output":
		c.Output, err = fs.GetString(name)
	case "layer_height":
		c.LayerHeight, err = fs.GetFloat64(name)
	case "scale":
		c.Scale, err = fs.GetFloat64(name)
	case "feedrate":
		c.Feedrate, err = fs.GetFloat64(name)
	case "feedrate_writing":
		var feedrate float64
		if feedrate, err = fs.GetFloat64(name); err == nil {
			c.FeedrateWriting = &feedrate
		}
	case "filament_diameter":
		c.FilamentDiameter, err = fs.GetFloat64(name)
	case "extrusion_width":
		c.ExtrusionWidth, err = fs.GetFloat64(name)
	case "extrusion_multiplier":
		c.ExtrusionMultiplier, err = fs.GetFloat64(name)
	case "units":
		c.Units, err = fs.GetString(name)
	case "misc_infill":
		c.Infill, err = fs.GetString(name)
	case "infill_gap":
		c.InfillGap, err = fs.GetFloat64(name)
	case "num_solid_fill":
		c.NumSolidFill, err = fs.GetInt(name)
	case "temperature":
		c.Temperature, err = fs.GetString(name)
	case "bed_temperature":
		c.BedTemperature, err = fs.GetString(name)
	case "base_offset":
		var offset float64
		if offset, err = fs.GetFloat64(name); err == nil {
			c.BaseOffset = &offset
		}
	case "workers":
		c.Workers, err = fs.GetInt(name)
	}
	return err
}

// Package config holds the slicing profile: defaults, an optional YAML file
// and validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/philipparndt/goslice/internal/infill"
)

// ErrInvalidConfig is returned when a resolved option is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete set of options of a slicing run.
type Config struct {
	LayerHeight         float64  `yaml:"layer_height"`
	Scale               float64  `yaml:"scale"`
	Feedrate            float64  `yaml:"feedrate"`
	FeedrateWriting     *float64 `yaml:"feedrate_writing,omitempty"`
	FilamentDiameter    float64  `yaml:"filament_diameter"`
	ExtrusionWidth      float64  `yaml:"extrusion_width"`
	ExtrusionMultiplier float64  `yaml:"extrusion_multiplier"`
	NumSolidFill        int      `yaml:"num_solid_fill"`
	Units               string   `yaml:"units"`
	Infill              string   `yaml:"infill"`
	InfillGap           float64  `yaml:"infill_gap"`
	BaseOffset          *float64 `yaml:"base_offset,omitempty"`
	Temperature         string   `yaml:"temperature"`
	BedTemperature      string   `yaml:"bed_temperature"`
	Workers             int      `yaml:"workers,omitempty"`
	Output              string   `yaml:"output"`
}

// Default returns the stock profile.
func Default() Config {
	return Config{
		LayerHeight:         0.2,
		Scale:               1,
		Feedrate:            3600,
		FilamentDiameter:    1.75,
		ExtrusionWidth:      0.4,
		ExtrusionMultiplier: 1,
		NumSolidFill:        3,
		Units:               "mm",
		Infill:              "cross",
		InfillGap:           5,
		Temperature:         "PLA",
		BedTemperature:      "PLA",
		Output:              "out.gcode",
	}
}

// Load reads a YAML profile on top of the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve fills derived defaults: an unset writing feedrate falls back to half
// the travel feedrate and an unset base offset to half a layer. Values given
// explicitly, zero included, are kept for Validate to judge.
func (c Config) Resolve() Config {
	if c.FeedrateWriting == nil {
		feedrate := c.Feedrate / 2
		c.FeedrateWriting = &feedrate
	}
	if c.BaseOffset == nil {
		offset := c.LayerHeight / 2
		c.BaseOffset = &offset
	}
	return c
}

// Validate checks every option. It expects a resolved config.
func (c Config) Validate() error {
	type bound struct {
		name  string
		value float64
	}
	positive := []bound{
		{"layer_height", c.LayerHeight},
		{"scale", c.Scale},
		{"feedrate", c.Feedrate},
		{"filament_diameter", c.FilamentDiameter},
		{"extrusion_width", c.ExtrusionWidth},
		{"extrusion_multiplier", c.ExtrusionMultiplier},
	}
	if c.FeedrateWriting != nil {
		positive = append(positive, bound{"feedrate_writing", *c.FeedrateWriting})
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidConfig, p.name, p.value)
		}
	}
	if c.NumSolidFill < 0 {
		return fmt.Errorf("%w: num_solid_fill must not be negative, got %d", ErrInvalidConfig, c.NumSolidFill)
	}
	if c.Units != "mm" && c.Units != "in" {
		return fmt.Errorf("%w: units must be mm or in, got %q", ErrInvalidConfig, c.Units)
	}
	if !slices.Contains(infill.Kinds, c.Infill) {
		return fmt.Errorf("%w: infill must be one of %v, got %q", ErrInvalidConfig, infill.Kinds, c.Infill)
	}
	if c.Infill == "cross" && !(c.InfillGap > 0) {
		return fmt.Errorf("%w: infill_gap must be positive, got %g", ErrInvalidConfig, c.InfillGap)
	}
	if c.BaseOffset != nil && *c.BaseOffset < 0 {
		return fmt.Errorf("%w: base_offset must not be negative, got %g", ErrInvalidConfig, *c.BaseOffset)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, _, err := c.Temperatures(); err != nil {
		return err
	}
	return nil
}

// materials maps presets to hotend and bed temperatures in degrees C.
var materials = map[string][2]float64{
	"PLA":  {200, 60},
	"PETG": {240, 80},
	"ABS":  {230, 100},
}

// Temperatures resolves the hotend and bed settings, each either a number or
// a material preset.
func (c Config) Temperatures() (hotend, bed float64, err error) {
	if hotend, err = temperature(c.Temperature, 0); err != nil {
		return 0, 0, fmt.Errorf("%w: temperature: %v", ErrInvalidConfig, err)
	}
	if bed, err = temperature(c.BedTemperature, 1); err != nil {
		return 0, 0, fmt.Errorf("%w: bed_temperature: %v", ErrInvalidConfig, err)
	}
	return hotend, bed, nil
}

func temperature(s string, slot int) (float64, error) {
	s = strings.TrimSpace(s)
	if preset, ok := materials[strings.ToUpper(s)]; ok {
		return preset[slot], nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		names := make([]string, 0, len(materials))
		for name := range materials {
			names = append(names, name)
		}
		slices.Sort(names)
		return 0, fmt.Errorf("%q is neither a temperature nor one of %v", s, names)
	}
	return v, nil
}

// Package gcode serializes a motion stream as G-code text.
package gcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/philipparndt/goslice/internal/toolpath"
)

const headerTemplate = `; generated by goslice {{.Version}}
; layer height {{num .LayerHeight}}, filament {{num .FilamentDiameter}}
{{if eq .Units "in"}}G20 ; use inches{{else}}G21 ; use mm{{end}}
G90 ; absolute positioning
M82 ; absolute extrusion
M140 S{{num .BedTemperature}} ; set bed temperature
M104 S{{num .Temperature}} ; set hotend temperature
M190 S{{num .BedTemperature}} ; wait for bed
M109 S{{num .Temperature}} ; wait for hotend
G28 ; home all axes
G92 E0 ; reset extruder
G1 Z5 F{{num .Feedrate}}
`

const footerTemplate = `G1 E{{num .Retract}} F{{num .Feedrate}} ; retract
M104 S0 ; hotend off
M140 S0 ; bed off
G28 X0 Y0 ; park
M84 ; motors off
`

var templates = template.Must(template.New("header").
	Funcs(template.FuncMap{"num": formatNumber}).
	Parse(headerTemplate))

func init() {
	template.Must(templates.New("footer").Parse(footerTemplate))
}

// Options fill the header and footer templates.
type Options struct {
	Version          string
	Units            string
	Feedrate         float64
	LayerHeight      float64
	FilamentDiameter float64
	Temperature      float64
	BedTemperature   float64
}

// Writer is a toolpath.Sink producing G-code. Call Close once the stream has
// ended to flush buffered output.
type Writer struct {
	w         *bufio.Writer
	opts      Options
	extrusion float64
}

var _ toolpath.Sink = (*Writer)(nil)

// NewWriter writes the header and returns the writer.
func NewWriter(w io.Writer, opts Options) (*Writer, error) {
	gw := &Writer{w: bufio.NewWriter(w), opts: opts}
	if err := templates.ExecuteTemplate(gw.w, "header", opts); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return gw, nil
}

// Move writes a G0 travel or G1 extrusion move.
func (w *Writer) Move(m toolpath.Move) error {
	var b strings.Builder
	if m.Travel {
		b.WriteString("G0")
	} else {
		b.WriteString("G1")
	}
	fmt.Fprintf(&b, " X%s Y%s Z%s F%s",
		formatNumber(m.Target.X), formatNumber(m.Target.Y), formatNumber(m.Target.Z), formatNumber(m.Feedrate))
	if !m.Travel {
		fmt.Fprintf(&b, " E%s", formatNumber(m.Extrusion))
	}
	w.extrusion = m.Extrusion
	b.WriteByte('\n')
	_, err := w.w.WriteString(b.String())
	return err
}

// Mark writes comments for layer and section markers, and M400 plus the footer
// at the end of the program.
func (w *Writer) Mark(m toolpath.Marker) error {
	var err error
	switch m.Kind {
	case toolpath.LayerStart:
		_, err = fmt.Fprintf(w.w, "\n; Printing layer %d (z=%s)\n; ====================\n", m.Layer, formatNumber(m.Z))
	case toolpath.Outline:
		_, err = w.w.WriteString("; Printing outline\n")
	case toolpath.InfillStart:
		_, err = w.w.WriteString("; Printing infill\n")
	case toolpath.EndOfProgram:
		if _, err = w.w.WriteString("M400\n"); err != nil {
			return err
		}
		err = templates.ExecuteTemplate(w.w, "footer", struct {
			Feedrate float64
			Retract  float64
		}{w.opts.Feedrate, w.extrusion - 2})
	}
	return err
}

// Close flushes buffered output.
func (w *Writer) Close() error {
	return w.w.Flush()
}

// formatNumber prints v with at most five decimals and no trailing zeros.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 5, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

package render

import (
	"fmt"

	"github.com/Arafatk/glot"

	"github.com/de-souza/ac-susceptibility/internal/fit"
	"github.com/de-souza/ac-susceptibility/internal/scan"
)

// Preview pops an interactive gnuplot window showing both measured
// channels of a scan together with their fitted curves. Requires gnuplot
// on the PATH.
func Preview(title string, s *scan.Scan, r *fit.Result) error {
	p, err := glot.NewPlot(2, true, false)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := p.SetTitle(title); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	p.SetXLabel("Position (mm)")
	p.SetYLabel("Voltage (V)")

	pos := normalizeDirection(s.Position)
	groups := []struct {
		name  string
		style string
		data  []float64
	}{
		{"X data", "points", s.X},
		{"X fit", "lines", r.Curve.X},
		{"Y data", "points", s.Y},
		{"Y fit", "lines", r.Curve.Y},
	}
	for _, g := range groups {
		if err := p.AddPointGroup(g.name, g.style, [][]float64{pos, g.data}); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}
	return nil
}

// Package render draws voltage scans and magnetization summaries.
package render

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/de-souza/ac-susceptibility/internal/fit"
	"github.com/de-souza/ac-susceptibility/internal/scan"
)

// Config is the explicit renderer configuration applied to every figure.
type Config struct {
	LineWidth   vg.Length
	GlyphRadius vg.Length
	DPI         int
}

// DefaultConfig returns the house figure style.
func DefaultConfig() Config {
	return Config{
		LineWidth:   vg.Points(1),
		GlyphRadius: vg.Points(1.5),
		DPI:         150,
	}
}

// TemperatureSeries is one temperature's fitted summary across frequency:
// the amplitudes and phases of the baseline and the two peaks, index 0
// being the baseline.
type TemperatureSeries struct {
	Label string
	Freq  []float64
	Amp   [3][]float64
	Phase [3][]float64
}

// Voltage saves a two-panel PNG of the measured and fitted X and Y
// channels, in millivolts, against position.
func (c Config) Voltage(s *scan.Scan, r *fit.Result, path string) error {
	log.Printf("Saving plot %q...", path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("voltage plot: %w", err)
	}

	pos := normalizeDirection(s.Position)
	left, err := c.channelPanel(pos, s.X, r.Curve.X, "X Channel (mV)")
	if err != nil {
		return fmt.Errorf("voltage plot: %w", err)
	}
	right, err := c.channelPanel(pos, s.Y, r.Curve.Y, "Y Channel (mV)")
	if err != nil {
		return fmt.Errorf("voltage plot: %w", err)
	}

	img := vgimg.NewWith(vgimg.UseWH(11*vg.Inch, 4*vg.Inch), vgimg.UseDPI(c.DPI))
	c.drawAligned([][]*plot.Plot{{left, right}}, draw.New(img))

	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("voltage plot: %w", err)
	}
	defer w.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("voltage plot: %w", err)
	}
	return nil
}

func (c Config) channelPanel(pos, volts, fitted []float64, label string) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Position (mm)"
	p.Y.Label.Text = label
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(toXYs(pos, fitted, 1000))
	if err != nil {
		return nil, err
	}
	line.Width = c.LineWidth
	line.Color = plotutil.Color(0)
	p.Add(line)

	points, err := plotter.NewScatter(toXYs(pos, volts, 1000))
	if err != nil {
		return nil, err
	}
	points.Radius = c.GlyphRadius
	points.Color = plotutil.Color(1)
	p.Add(points)

	return p, nil
}

// Magnetization saves the per-measurement 3x2 PDF figure: amplitude and
// phase of the baseline and both peaks against frequency, one line per
// temperature. Amplitudes are divided by frequency and normalized to the
// largest low-frequency baseline (resp. peak) across the batch, so curves
// for different temperatures share a scale.
func (c Config) Magnetization(name string, series []TemperatureSeries, path string) error {
	log.Printf("Saving plot %q...", filepath.Base(path))
	if len(series) == 0 {
		return fmt.Errorf("magnetization plot: no data for %s", name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("magnetization plot: %w", err)
	}

	amp := normalizedAmplitudes(series)

	titles := [3]string{"Baseline", "Peak #1", "Peak #2"}
	panels := make([][]*plot.Plot, 3)
	for i := 0; i < 3; i++ {
		ampPanel, err := c.frequencyPanel("Amplitude "+titles[i], "Amplitude / Frequency (AU)", series, amp[i])
		if err != nil {
			return fmt.Errorf("magnetization plot: %w", err)
		}
		phases := make([][]float64, len(series))
		for j := range series {
			phases[j] = series[j].Phase[i]
		}
		phasePanel, err := c.frequencyPanel("Phase "+titles[i], "Phase (°)", series, phases)
		if err != nil {
			return fmt.Errorf("magnetization plot: %w", err)
		}
		panels[i] = []*plot.Plot{ampPanel, phasePanel}
	}

	pdf := vgpdf.New(12*vg.Inch, 12*vg.Inch)
	c.drawAligned(panels, draw.New(pdf))

	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("magnetization plot: %w", err)
	}
	defer w.Close()
	if _, err := pdf.WriteTo(w); err != nil {
		return fmt.Errorf("magnetization plot: %w", err)
	}
	return nil
}

// normalizedAmplitudes rescales each temperature's amplitudes by frequency
// and by the batch-wide maxima of the first samples, baseline and peaks
// normalized separately.
func normalizedAmplitudes(series []TemperatureSeries) [3][][]float64 {
	var amp [3][][]float64
	for i := 0; i < 3; i++ {
		amp[i] = make([][]float64, len(series))
		for j, ts := range series {
			amp[i][j] = make([]float64, len(ts.Freq))
			for k, f := range ts.Freq {
				amp[i][j][k] = ts.Amp[i][k] / f
			}
		}
	}

	maxBaseline := 0.0
	maxPeaks := 0.0
	for j := range series {
		if len(amp[0][j]) == 0 {
			continue
		}
		if v := math.Abs(amp[0][j][0]); v > maxBaseline {
			maxBaseline = v
		}
		for i := 1; i < 3; i++ {
			if v := math.Abs(amp[i][j][0]); v > maxPeaks {
				maxPeaks = v
			}
		}
	}
	for j := range series {
		for k := range amp[0][j] {
			if maxBaseline != 0 {
				amp[0][j][k] /= maxBaseline
			}
			if maxPeaks != 0 {
				amp[1][j][k] /= maxPeaks
				amp[2][j][k] /= maxPeaks
			}
		}
	}
	return amp
}

func (c Config) frequencyPanel(title, ylabel string, series []TemperatureSeries, values [][]float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = ylabel
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for j, ts := range series {
		line, err := plotter.NewLine(toXYs(ts.Freq, values[j], 1))
		if err != nil {
			return nil, err
		}
		line.Width = c.LineWidth
		line.Color = plotutil.Color(j)
		p.Add(line)
		p.Legend.Add(ts.Label, line)
	}
	return p, nil
}

func (c Config) drawAligned(plots [][]*plot.Plot, dc draw.Canvas) {
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: len(plots[0]),
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i, row := range plots {
		for j, p := range row {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}
}

func toXYs(x, y []float64, scale float64) plotter.XYs {
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i] = plotter.XY{X: x[i], Y: y[i] * scale}
	}
	return xys
}

// normalizeDirection flips reversed sweeps so position increases to the
// right; scan direction only affects presentation, never the fit.
func normalizeDirection(pos []float64) []float64 {
	out := append([]float64(nil), pos...)
	if len(out) > 0 && out[len(out)-1] < 0 {
		for i := range out {
			out[i] = -out[i]
		}
	}
	return out
}

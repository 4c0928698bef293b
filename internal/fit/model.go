// Package fit extracts the physical signal parameters of an
// ac-susceptibility scan by least-squares fitting an asymmetric double
// sigmoidal lineshape to each lock-in channel. It provides a free fit over
// all eleven parameters, a constrained fit over four parameters with the
// peak shape fixed by calibration, a channel fitter composing both
// channels into a complex result, and the calibration aggregator that
// produces the fixed shape parameters from a batch of reference scans.
package fit

import (
	"encoding/json"
	"math"
)

// NumParams is the length of the lineshape parameter vector:
// [u0 uMax uMin xc1 xc2 xc3 xc4 w1 w2 w3 w4].
const NumParams = 11

// Params is the full lineshape parameter vector. u0 is the baseline, uMax
// and uMin the amplitudes of the positive- and negative-going peaks,
// xc1..xc4 the four sigmoid centers (two per peak) and w1..w4 the sigmoid
// widths. The ordering xc1 < xc2 and xc3 < xc4 is the physical intent but
// is not enforced; crossed centers are a valid optimizer outcome.
type Params [NumParams]float64

// Asym2Sig evaluates the asymmetric double sigmoidal function at pos.
// Each peak is the difference of two independent sigmoids, written as
// hyperbolic tangents. Widths must be nonzero.
func Asym2Sig(pos float64, p Params) float64 {
	return p[0] +
		p[1]*(math.Tanh((pos-p[3])/p[7])-math.Tanh((pos-p[4])/p[8]))/2 +
		p[2]*(math.Tanh((pos-p[5])/p[9])-math.Tanh((pos-p[6])/p[10]))/2
}

// Curve evaluates the lineshape over a position array.
func Curve(position []float64, p Params) []float64 {
	out := make([]float64, len(position))
	for i, x := range position {
		out[i] = Asym2Sig(x, p)
	}
	return out
}

// FixedShape holds the shape parameters held constant during a constrained
// fit: four sigmoid center offsets relative to the free horizontal shift,
// and four widths. A FixedShape is produced once by calibration and never
// mutated afterwards.
type FixedShape struct {
	Offsets [4]float64
	Widths  [4]float64
}

// Reconstruct builds the full parameter vector from the four free
// parameters of a constrained fit.
func (f FixedShape) Reconstruct(u0, uMax, uMin, xc float64) Params {
	return Params{
		u0, uMax, uMin,
		f.Offsets[0] + xc, f.Offsets[1] + xc, f.Offsets[2] + xc, f.Offsets[3] + xc,
		f.Widths[0], f.Widths[1], f.Widths[2], f.Widths[3],
	}
}

// MarshalJSON serializes the shape as a flat 8-element array, offsets
// first, matching the layout of the calibration file.
func (f FixedShape) MarshalJSON() ([]byte, error) {
	flat := [8]float64{
		f.Offsets[0], f.Offsets[1], f.Offsets[2], f.Offsets[3],
		f.Widths[0], f.Widths[1], f.Widths[2], f.Widths[3],
	}
	return json.Marshal(flat)
}

// UnmarshalJSON parses the flat 8-element array form.
func (f *FixedShape) UnmarshalJSON(data []byte) error {
	var flat [8]float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	copy(f.Offsets[:], flat[:4])
	copy(f.Widths[:], flat[4:])
	return nil
}

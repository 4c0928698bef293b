package fit

import (
	"math"
	"math/cmplx"

	"github.com/de-souza/ac-susceptibility/internal/scan"
)

// Result is the outcome of fitting both lock-in channels of one scan.
// Curve mirrors the loaded scan: position, fitted X and Y channels, and
// the modulus and phase (degrees) of the complex composition. Params
// composes the two channel fits element-wise, the in-phase fit as the real
// part and the quadrature fit as the imaginary part.
type Result struct {
	Curve  scan.Scan
	Params [NumParams]complex128
}

// Baseline returns the complex baseline level (X + iY).
func (r *Result) Baseline() complex128 { return r.Params[0] }

// Peak1 returns the complex amplitude of the positive-going peak.
func (r *Result) Peak1() complex128 { return r.Params[1] }

// Peak2 returns the complex amplitude of the negative-going peak.
func (r *Result) Peak2() complex128 { return r.Params[2] }

// Summary returns the amplitudes and phases (degrees) of the baseline and
// the two peaks: [amp0 amp1 amp2 phase0 phase1 phase2].
func (r *Result) Summary() [6]float64 {
	return [6]float64{
		cmplx.Abs(r.Baseline()), cmplx.Abs(r.Peak1()), cmplx.Abs(r.Peak2()),
		angleDeg(r.Baseline()), angleDeg(r.Peak1()), angleDeg(r.Peak2()),
	}
}

func angleDeg(z complex128) float64 { return cmplx.Phase(z) * 180 / math.Pi }

// XY fits the in-phase and quadrature channels of a scan independently,
// using the constrained fit when the calibration carries fixed shape
// parameters and the free fit otherwise. An error from either channel is
// returned as is; there is no partial result.
func XY(s *scan.Scan, cal Calibration) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var (
		xCurve, yCurve []float64
		xp, yp         Params
		err            error
	)
	if cal.FitParameters != nil {
		xCurve, xp, err = Constrained(s.Position, s.X, cal.FitParameters[0])
		if err == nil {
			yCurve, yp, err = Constrained(s.Position, s.Y, cal.FitParameters[1])
		}
	} else {
		xCurve, xp, err = Free(s.Position, s.X)
		if err == nil {
			yCurve, yp, err = Free(s.Position, s.Y)
		}
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Curve: scan.Scan{
		Position: append([]float64(nil), s.Position...),
		X:        xCurve,
		Y:        yCurve,
		R:        make([]float64, len(xCurve)),
		Theta:    make([]float64, len(xCurve)),
	}}
	for i := range xCurve {
		z := complex(xCurve[i], yCurve[i])
		res.Curve.R[i] = cmplx.Abs(z)
		res.Curve.Theta[i] = angleDeg(z)
	}
	for i := range xp {
		res.Params[i] = complex(xp[i], yp[i])
	}
	return res, nil
}

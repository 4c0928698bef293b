package fit

import (
	"errors"
	"fmt"

	"github.com/maorshutman/lm"
)

// ErrInvalidInput reports a channel too short to fit or with mismatched
// position and voltage arrays.
var ErrInvalidInput = errors.New("fit: invalid input")

func validate(position, voltage []float64) error {
	if len(position) != len(voltage) {
		return fmt.Errorf("%w: %d positions, %d voltages", ErrInvalidInput, len(position), len(voltage))
	}
	if len(position) < 2 {
		return fmt.Errorf("%w: %d samples, need at least 2", ErrInvalidInput, len(position))
	}
	return nil
}

// solve runs a Levenberg-Marquardt minimization of the residual function
// with a numerical Jacobian. Non-convergence is not an error: the solver's
// best iterate within its iteration budget is returned.
func solve(dim, size int, residuals func(dst, params []float64), init []float64) ([]float64, error) {
	jac := lm.NumJac{Func: residuals}
	prob := lm.LMProblem{
		Dim:        dim,
		Size:       size,
		Func:       residuals,
		Jac:        jac.Jac,
		InitParams: init,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}
	res, err := lm.LM(prob, &lm.Settings{Iterations: 1000, ObjectiveTol: 1e-16})
	if err != nil {
		return nil, fmt.Errorf("least squares: %w", err)
	}
	return res.X, nil
}

// Free fits all eleven lineshape parameters to one voltage channel with
// unconstrained least squares, returning the fitted curve evaluated at the
// input positions together with the parameter vector. A constant voltage
// channel yields a degenerate but finite fit.
func Free(position, voltage []float64) ([]float64, Params, error) {
	if err := validate(position, voltage); err != nil {
		return nil, Params{}, err
	}

	init := freeGuess(position, voltage)
	residuals := func(dst, params []float64) {
		var p Params
		copy(p[:], params)
		for i, x := range position {
			dst[i] = voltage[i] - Asym2Sig(x, p)
		}
	}

	sol, err := solve(NumParams, len(position), residuals, init[:])
	if err != nil {
		return nil, Params{}, err
	}
	var p Params
	copy(p[:], sol)
	return Curve(position, p), p, nil
}

// freeGuess seeds the optimizer: baseline halfway between the voltage
// extrema, peak amplitudes at the extrema, the two centers of each peak
// straddling its extremum position at a quarter of the peak separation,
// and all widths at 2. With a constant voltage the extrema coincide and
// the guess degenerates to four equal centers, which stays finite.
func freeGuess(position, voltage []float64) Params {
	iMax, iMin := 0, 0
	for i, v := range voltage {
		if v > voltage[iMax] {
			iMax = i
		}
		if v < voltage[iMin] {
			iMin = i
		}
	}
	posMax, posMin := position[iMax], position[iMin]
	baseline := (voltage[iMax] + voltage[iMin]) / 2
	d := (posMin - posMax) / 4
	return Params{
		baseline,
		voltage[iMax] - baseline,
		voltage[iMin] - baseline,
		posMax - d, posMax + d, posMin - d, posMin + d,
		2, 2, 2, 2,
	}
}

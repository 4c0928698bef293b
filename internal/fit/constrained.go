package fit

// Constrained fits the four free parameters (u0, uMax, uMin, xc) of the
// lineshape with the peak shape held at the calibrated centers and widths,
// and returns the fitted curve together with the reconstructed full
// parameter vector. Fixing the shape from a clean reference batch keeps
// fits of noisy scans well conditioned where a free eleven-parameter fit
// would wander into degenerate centers or widths.
func Constrained(position, voltage []float64, fixed FixedShape) ([]float64, Params, error) {
	if err := validate(position, voltage); err != nil {
		return nil, Params{}, err
	}

	max, min := voltage[0], voltage[0]
	for _, v := range voltage {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	baseline := (max + min) / 2
	init := []float64{baseline, max - baseline, min - baseline, 0}

	residuals := func(dst, params []float64) {
		p := fixed.Reconstruct(params[0], params[1], params[2], params[3])
		for i, x := range position {
			dst[i] = voltage[i] - Asym2Sig(x, p)
		}
	}

	sol, err := solve(len(init), len(position), residuals, init)
	if err != nil {
		return nil, Params{}, err
	}
	p := fixed.Reconstruct(sol[0], sol[1], sol[2], sol[3])
	return Curve(position, p), p, nil
}

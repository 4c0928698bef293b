package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shapeOf extracts the centers and widths of a parameter vector as fixed
// shape parameters, the reference shift taken as zero.
func shapeOf(p Params) FixedShape {
	return FixedShape{
		Offsets: [4]float64{p[3], p[4], p[5], p[6]},
		Widths:  [4]float64{p[7], p[8], p[9], p[10]},
	}
}

func TestConstrainedRecoversWithExactShape(t *testing.T) {
	pos := linspace(0, 10, 201)
	voltage := Curve(pos, truth)
	fixed := shapeOf(truth)

	curve, p, err := Constrained(pos, voltage, fixed)
	require.NoError(t, err)

	assert.InDelta(t, truth[0], p[0], 1e-5)
	assert.InDelta(t, truth[1], p[1], 1e-5)
	assert.InDelta(t, truth[2], p[2], 1e-5)
	for i := 0; i < 4; i++ {
		assert.InDeltaf(t, truth[3+i], p[3+i], 1e-5, "center %d", i+1)
		// Widths are carried over from the calibration verbatim.
		assert.Equal(t, fixed.Widths[i], p[7+i])
	}
	for i := range curve {
		assert.InDelta(t, voltage[i], curve[i], 1e-6)
	}
}

func TestConstrainedFindsHorizontalShift(t *testing.T) {
	shifted := truth
	for i := 3; i < 7; i++ {
		shifted[i] += 0.7
	}
	pos := linspace(0, 10, 201)
	voltage := Curve(pos, shifted)

	// The shape of the unshifted lineshape plus a free shift must land on
	// the shifted centers.
	_, p, err := Constrained(pos, voltage, shapeOf(truth))
	require.NoError(t, err)
	for i := 3; i < 7; i++ {
		assert.InDeltaf(t, shifted[i], p[i], 1e-3, "center %d", i-2)
	}
	assert.InDelta(t, truth[1], p[1], 1e-3)
	assert.InDelta(t, truth[2], p[2], 1e-3)
}

func TestConstrainedInvalidInput(t *testing.T) {
	_, _, err := Constrained([]float64{1}, []float64{2}, shapeOf(truth))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = Constrained([]float64{1, 2}, []float64{3}, shapeOf(truth))
	require.ErrorIs(t, err, ErrInvalidInput)
}

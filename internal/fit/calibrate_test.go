package fit

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-souza/ac-susceptibility/internal/scan"
)

// noisyScan builds a reference scan from the given parameters with a small
// deterministic perturbation, different per seed, on both channels.
func noisyScan(pos []float64, p Params, seed float64) *scan.Scan {
	x := Curve(pos, p)
	y := Curve(pos, p)
	for i := range pos {
		x[i] += 1e-4 * math.Sin(13*pos[i]+seed)
		y[i] += 1e-4 * math.Cos(17*pos[i]-seed)
	}
	return &scan.Scan{Position: pos, X: x, Y: y}
}

func TestAggregateMedianIgnoresOutlier(t *testing.T) {
	pos := linspace(0, 10, 201)

	outlier := truth
	outlier[7] = 3   // shifted width
	outlier[3] = 2.5 // shifted center

	refs := []*scan.Scan{
		noisyScan(pos, truth, 1),
		noisyScan(pos, truth, 2),
		noisyScan(pos, outlier, 3),
		noisyScan(pos, truth, 4),
		noisyScan(pos, truth, 5),
	}

	cal, err := Aggregate(refs)
	require.NoError(t, err)
	require.NotNil(t, cal.FitParameters)

	for c := 0; c < 2; c++ {
		shape := cal.FitParameters[c]
		for i := 0; i < 4; i++ {
			assert.InDeltaf(t, truth[3+i], shape.Offsets[i], 1e-2, "channel %d offset %d", c, i)
			assert.InDeltaf(t, truth[7+i], shape.Widths[i], 1e-2, "channel %d width %d", c, i)
		}
	}
}

func TestAggregateEmptyBatch(t *testing.T) {
	cal, err := Aggregate(nil)
	require.NoError(t, err)
	assert.Nil(t, cal.FitParameters)
}

func TestAggregatePropagatesBadReference(t *testing.T) {
	bad := &scan.Scan{Position: []float64{1}, X: []float64{2}, Y: []float64{3}}
	_, err := Aggregate([]*scan.Scan{bad})
	require.Error(t, err)
}

func TestCalibrationRoundTrip(t *testing.T) {
	pair := [2]FixedShape{
		{Offsets: [4]float64{-13.1, -18.8, -25.2, -30.8}, Widths: [4]float64{2.67, 2.75, 2.52, 3.2}},
		{Offsets: [4]float64{-13.2, -18.7, -25.1, -30.8}, Widths: [4]float64{2.78, 2.87, 2.5, 3.12}},
	}
	cal := Calibration{FitParameters: &pair}

	path := filepath.Join(t.TempDir(), "calibration.json")
	require.NoError(t, cal.Save(path))

	back, err := LoadCalibration(path)
	require.NoError(t, err)
	require.NotNil(t, back.FitParameters)
	assert.Equal(t, pair, *back.FitParameters)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"fit_parameters"`)
}

func TestLoadCalibrationFlatLayout(t *testing.T) {
	raw := `{"fit_parameters": [[-13, -18, -25, -30, 2.6, 2.7, 2.5, 3.2],
		[-13.1, -18.1, -25.1, -30.1, 2.7, 2.8, 2.6, 3.1]]}`
	path := filepath.Join(t.TempDir(), "calibration.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cal, err := LoadCalibration(path)
	require.NoError(t, err)
	require.NotNil(t, cal.FitParameters)
	assert.Equal(t, [4]float64{-13, -18, -25, -30}, cal.FitParameters[0].Offsets)
	assert.Equal(t, [4]float64{2.7, 2.8, 2.6, 3.1}, cal.FitParameters[1].Widths)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, median([]float64{5, 1, 3, 2, 4}))
	assert.Equal(t, 2.0, median([]float64{2}))
}

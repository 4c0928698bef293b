package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-souza/ac-susceptibility/internal/fit"
)

func TestSortedTemperatures(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"300K", "9K", "10K", "output"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))
	}

	temps, err := sortedTemperatures(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"9K", "10K", "300K"}, temps)
}

func TestSortedFrequencies(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"997Hz.txt", "10Hz.txt", "0.1Hz.txt", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	freqs, files, err := sortedFrequencies(dir)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 10, 997}, freqs)
	require.Len(t, files, 3)
	assert.Equal(t, "0.1Hz.txt", filepath.Base(files[0]))
	assert.Equal(t, "997Hz.txt", filepath.Base(files[2]))
}

func TestLoadCalibrationFallsBackToFreeFit(t *testing.T) {
	cal, err := loadCalibration(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cal.FitParameters)
}

func TestLoadCalibrationFromFile(t *testing.T) {
	dir := t.TempDir()
	pair := [2]fit.FixedShape{
		{Offsets: [4]float64{-13, -18, -25, -30}, Widths: [4]float64{2.6, 2.7, 2.5, 3.2}},
		{Offsets: [4]float64{-13, -18, -25, -30}, Widths: [4]float64{2.7, 2.8, 2.5, 3.1}},
	}
	saved := fit.Calibration{FitParameters: &pair}
	require.NoError(t, saved.Save(filepath.Join(dir, "calibration.json")))

	cal, err := loadCalibration(dir)
	require.NoError(t, err)
	require.NotNil(t, cal.FitParameters)
	assert.Equal(t, pair, *cal.FitParameters)
}

package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/de-souza/ac-susceptibility/internal/render"
)

func TestSummaryXLSX(t *testing.T) {
	series := []render.TemperatureSeries{
		{
			Label: "250K",
			Freq:  []float64{1, 10},
			Amp:   [3][]float64{{0.01, 0.1}, {0.005, 0.05}, {0.004, 0.04}},
			Phase: [3][]float64{{10, 11}, {20, 21}, {30, 31}},
		},
		{
			Label: "300K",
			Freq:  []float64{1},
			Amp:   [3][]float64{{0.02}, {0.006}, {0.003}},
			Phase: [3][]float64{{15}, {25}, {35}},
		},
	}
	path := filepath.Join(t.TempDir(), "sample-A.xlsx")

	require.NoError(t, SummaryXLSX(path, series))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"250K", "300K"}, f.GetSheetList())

	head, err := f.GetCellValue("250K", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Frequency (Hz)", head)

	amp, err := f.GetCellValue("250K", "B3")
	require.NoError(t, err)
	assert.Equal(t, "0.1", amp)

	phase, err := f.GetCellValue("300K", "G2")
	require.NoError(t, err)
	assert.Equal(t, "35", phase)
}

func TestSummaryXLSXEmpty(t *testing.T) {
	require.Error(t, SummaryXLSX(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}

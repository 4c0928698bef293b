// Package export writes fitted-parameter summary workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/de-souza/ac-susceptibility/internal/render"
)

var headers = []string{
	"Frequency (Hz)",
	"Amp Baseline (V)", "Amp Peak 1 (V)", "Amp Peak 2 (V)",
	"Phase Baseline (°)", "Phase Peak 1 (°)", "Phase Peak 2 (°)",
}

// SummaryXLSX writes one sheet per temperature holding the raw fitted
// amplitudes and phases per frequency.
func SummaryXLSX(path string, series []render.TemperatureSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("export: no data for %s", path)
	}

	f := excelize.NewFile()
	for si, ts := range series {
		sheet := ts.Label
		if si == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			f.NewSheet(sheet)
		}

		for col, h := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			f.SetCellValue(sheet, cell, h)
		}

		for i := range ts.Freq {
			row := []float64{
				ts.Freq[i],
				ts.Amp[0][i], ts.Amp[1][i], ts.Amp[2][i],
				ts.Phase[0][i], ts.Phase[1][i], ts.Phase[2][i],
			}
			for col, v := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, i+2)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				f.SetCellValue(sheet, cell, v)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

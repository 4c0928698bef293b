package fit

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/de-souza/ac-susceptibility/internal/scan"
)

// Calibration carries the per-channel fixed shape parameters, in-phase
// channel first. A nil FitParameters selects the free fit. The pair is
// computed once from a reference batch and treated as immutable
// configuration by every constrained fit that consumes it.
type Calibration struct {
	FitParameters *[2]FixedShape `json:"fit_parameters,omitempty"`
}

// numShape is the tail of the parameter vector retained by calibration:
// four centers and four widths.
const numShape = 8

// Aggregate derives the per-channel fixed shape parameters from a batch of
// reference scans: a free fit per scan and channel, then the element-wise
// median of the centers and widths across the batch. The median keeps a
// single bad reference fit (a misidentified peak, say) from skewing the
// shape. Centers are stored as offsets with the reference shift taken as
// zero, so the values from the free fits are used directly. An empty batch
// yields a Calibration without fit parameters.
func Aggregate(refs []*scan.Scan) (Calibration, error) {
	if len(refs) == 0 {
		return Calibration{}, nil
	}

	var samples [2][numShape][]float64
	for _, s := range refs {
		if err := s.Validate(); err != nil {
			return Calibration{}, err
		}
		for c, voltage := range [2][]float64{s.X, s.Y} {
			_, p, err := Free(s.Position, voltage)
			if err != nil {
				return Calibration{}, fmt.Errorf("reference fit: %w", err)
			}
			for j := 0; j < numShape; j++ {
				samples[c][j] = append(samples[c][j], p[3+j])
			}
		}
	}

	var pair [2]FixedShape
	for c := range samples {
		for j, batch := range samples[c] {
			m := median(batch)
			if j < 4 {
				pair[c].Offsets[j] = m
			} else {
				pair[c].Widths[j-4] = m
			}
		}
	}
	return Calibration{FitParameters: &pair}, nil
}

func median(values []float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	return stat.Quantile(0.5, stat.Empirical, s, nil)
}

// LoadCalibration reads a calibration file written by Save.
func LoadCalibration(path string) (Calibration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("load calibration: %w", err)
	}
	var c Calibration
	if err := json.Unmarshal(b, &c); err != nil {
		return Calibration{}, fmt.Errorf("parse calibration: %w", err)
	}
	return c, nil
}

// Save writes the calibration as JSON, each channel a flat 8-element array
// of center offsets followed by widths.
func (c Calibration) Save(path string) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("save calibration: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("save calibration: %w", err)
	}
	return nil
}

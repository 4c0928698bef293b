// Package scan loads position-sweep voltage measurements recorded by the
// lock-in amplifier.
package scan

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	// headerLines is the fixed instrument header prepended to every
	// measurement file.
	headerLines = 5

	// countsPerMM converts the raw stepper position column to millimeters.
	countsPerMM = 250
)

// ErrMalformed reports a measurement file or scan that cannot be fitted.
var ErrMalformed = errors.New("scan: malformed data")

// Scan is one position sweep. The five columns of a measurement file:
// sample position (mm, zeroed to the first sample), in-phase and
// quadrature voltages, and the instrument's own modulus and phase.
//
// The position is not guaranteed to be monotonic; a sweep recorded in the
// reverse direction ends on a negative position. Consumers that care about
// direction normalize the sign themselves.
type Scan struct {
	Position []float64
	X        []float64
	Y        []float64
	R        []float64
	Theta    []float64
}

// Len returns the number of samples.
func (s *Scan) Len() int { return len(s.Position) }

// Validate rejects scans that are too short to fit or whose voltage
// channels do not match the position column.
func (s *Scan) Validate() error {
	n := len(s.Position)
	if len(s.X) != n || len(s.Y) != n {
		return fmt.Errorf("%w: %d positions, %d/%d channel samples", ErrMalformed, n, len(s.X), len(s.Y))
	}
	if n < 2 {
		return fmt.Errorf("%w: %d samples, need at least 2", ErrMalformed, n)
	}
	return nil
}

// Load reads a measurement file: five header lines, then whitespace
// separated columns. The position column is zeroed to the first sample and
// rescaled to millimeters.
func Load(path string) (*Scan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load scan: %w", err)
	}
	defer f.Close()

	s := &Scan{}
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if line <= headerLines {
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return nil, fmt.Errorf("%w: %s line %d has %d columns, need 5", ErrMalformed, path, line, len(fields))
		}
		var cols [5]float64
		for i := range cols {
			cols[i], err = strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformed, path, line, err)
			}
		}
		s.Position = append(s.Position, cols[0])
		s.X = append(s.X, cols[1])
		s.Y = append(s.Y, cols[2])
		s.R = append(s.R, cols[3])
		s.Theta = append(s.Theta, cols[4])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load scan: %w", err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no samples", ErrMalformed, path)
	}

	first := s.Position[0]
	for i := range s.Position {
		s.Position[i] = (s.Position[i] - first) / countsPerMM
	}
	return s, nil
}

// MeanTemperature returns the mean of the temperature column (index 6) of
// a measurement file, skipping entries that are missing or NaN.
func MeanTemperature(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("read temperature: %w", err)
	}
	defer f.Close()

	var sum float64
	var n int
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if line <= headerLines {
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 7 {
			continue
		}
		t, err := strconv.ParseFloat(fields[6], 64)
		if err != nil || math.IsNaN(t) {
			continue
		}
		sum += t
		n++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read temperature: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s has no temperature samples", ErrMalformed, path)
	}
	return sum / float64(n), nil
}

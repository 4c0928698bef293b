// Command ac-susceptibility organizes, fits and plots ac-susceptibility
// measurement data.
//
// The data folder is expected to hold raw measurement dumps under input/.
// They are reorganized into temperature subfolders of frequency files,
// every scan is fitted per channel (using calibrated shape parameters when
// available) and the results are rendered as per-scan voltage figures and
// a per-measurement magnetization summary.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/de-souza/ac-susceptibility/internal/export"
	"github.com/de-souza/ac-susceptibility/internal/fit"
	"github.com/de-souza/ac-susceptibility/internal/organize"
	"github.com/de-souza/ac-susceptibility/internal/render"
	"github.com/de-souza/ac-susceptibility/internal/scan"
)

var (
	dataPath    = flag.String("d", "data", "path to data folder")
	skipVoltage = flag.Bool("s", false, "don't plot the voltage")
	preview     = flag.Bool("preview", false, "show a gnuplot quick-look of each fitted scan")
	xlsx        = flag.Bool("xlsx", false, "write an XLSX summary per measurement")
)

func main() {
	flag.Parse()
	if err := run(*dataPath, *skipVoltage, *preview, *xlsx); err != nil {
		log.Fatal(err)
	}
}

func run(dataPath string, skipVoltage, preview, xlsx bool) error {
	if err := organize.Run(dataPath); err != nil {
		return err
	}

	cal, err := loadCalibration(dataPath)
	if err != nil {
		return err
	}

	cfg := render.DefaultConfig()
	input := filepath.Join(dataPath, "input")
	output := filepath.Join(dataPath, "output")

	measurements, err := os.ReadDir(input)
	if err != nil {
		return err
	}
	for _, m := range measurements {
		if !m.IsDir() {
			continue
		}
		series, err := processMeasurement(cfg, cal, input, output, m.Name(), skipVoltage, preview)
		if err != nil {
			return err
		}
		if len(series) == 0 {
			continue
		}
		pdf := filepath.Join(output, "magnetization", m.Name()+".pdf")
		if err := cfg.Magnetization(m.Name(), series, pdf); err != nil {
			return err
		}
		if xlsx {
			book := filepath.Join(output, "magnetization", m.Name()+".xlsx")
			if err := export.SummaryXLSX(book, series); err != nil {
				return err
			}
		}
	}
	return nil
}

// processMeasurement fits every frequency file of every temperature
// subfolder of one measurement, rendering voltage figures along the way,
// and returns the per-temperature summary series sorted by temperature.
func processMeasurement(cfg render.Config, cal fit.Calibration, input, output, name string, skipVoltage, preview bool) ([]render.TemperatureSeries, error) {
	dir := filepath.Join(input, name)
	temps, err := sortedTemperatures(dir)
	if err != nil {
		return nil, err
	}

	var series []render.TemperatureSeries
	for _, temp := range temps {
		freqs, files, err := sortedFrequencies(filepath.Join(dir, temp))
		if err != nil {
			return nil, err
		}

		ts := render.TemperatureSeries{Label: temp, Freq: freqs}
		for i, file := range files {
			s, err := scan.Load(file)
			if err != nil {
				return nil, err
			}
			res, err := fit.XY(s, cal)
			if err != nil {
				return nil, err
			}

			summary := res.Summary()
			for k := 0; k < 3; k++ {
				ts.Amp[k] = append(ts.Amp[k], summary[k])
				ts.Phase[k] = append(ts.Phase[k], summary[3+k])
			}

			if !skipVoltage {
				stem := strings.TrimSuffix(filepath.Base(file), ".txt")
				png := filepath.Join(output, "voltage", name, temp, stem+".png")
				if err := cfg.Voltage(s, res, png); err != nil {
					return nil, err
				}
			}
			if preview {
				title := name + " " + temp + " " + strconv.FormatFloat(freqs[i], 'g', -1, 64) + "Hz"
				if err := render.Preview(title, s, res); err != nil {
					return nil, err
				}
			}
		}
		series = append(series, ts)
	}
	return series, nil
}

// loadCalibration prefers a saved calibration file, then a reference scan
// batch under <data>/calibration (persisting the aggregate for the next
// run), then none, in which case every scan gets a free fit.
func loadCalibration(dataPath string) (fit.Calibration, error) {
	calFile := filepath.Join(dataPath, "calibration.json")
	if _, err := os.Stat(calFile); err == nil {
		return fit.LoadCalibration(calFile)
	}

	refDir := filepath.Join(dataPath, "calibration")
	entries, err := os.ReadDir(refDir)
	if err != nil {
		return fit.Calibration{}, nil
	}
	var refs []*scan.Scan
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		s, err := scan.Load(filepath.Join(refDir, e.Name()))
		if err != nil {
			return fit.Calibration{}, err
		}
		refs = append(refs, s)
	}

	cal, err := fit.Aggregate(refs)
	if err != nil {
		return fit.Calibration{}, err
	}
	if cal.FitParameters != nil {
		if err := cal.Save(calFile); err != nil {
			return fit.Calibration{}, err
		}
		log.Printf("Saved calibration %q", calFile)
	}
	return cal, nil
}

// sortedTemperatures lists the temperature subfolders of a measurement,
// sorted numerically ("9K" before "10K").
func sortedTemperatures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var temps []string
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), "K") {
			temps = append(temps, e.Name())
		}
	}
	sort.Slice(temps, func(i, j int) bool {
		return temperatureValue(temps[i]) < temperatureValue(temps[j])
	})
	return temps, nil
}

func temperatureValue(label string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(label, "K"), 64)
	if err != nil {
		return 0
	}
	return v
}

// sortedFrequencies lists the frequency files of a temperature subfolder,
// sorted by the numeric frequency parsed from stems like "10Hz.txt".
func sortedFrequencies(dir string) ([]float64, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	type ff struct {
		freq float64
		path string
	}
	var all []ff
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".txt")
		freq, err := strconv.ParseFloat(strings.TrimSuffix(stem, "Hz"), 64)
		if err != nil {
			continue
		}
		all = append(all, ff{freq, filepath.Join(dir, e.Name())})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].freq < all[j].freq })

	freqs := make([]float64, len(all))
	files := make([]string, len(all))
	for i, f := range all {
		freqs[i] = f.freq
		files[i] = f.path
	}
	return freqs, files, nil
}

// Package organize rearranges raw measurement dumps into temperature
// subfolders of frequency-named files.
package organize

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/de-souza/ac-susceptibility/internal/scan"
)

// Raw dump file stems look like <12-char date prefix><freq>Hz_<4-digit
// measurement number>; the trailing five characters carry the number.
const (
	stemPrefixLen = 12
	stemSuffixLen = 5
)

// Run reorganizes every measurement folder under <dataPath>/input. Files
// arrive in arbitrarily named dump subfolders; non-text files are deleted,
// the rest are grouped by measurement number, moved into a subfolder named
// after the rounded mean temperature of the group ("300K") and renamed to
// their frequency stem. Already sorted subfolders (names ending in "K")
// are left alone and emptied dump subfolders are removed.
func Run(dataPath string) error {
	input := filepath.Join(dataPath, "input")
	measurements, err := os.ReadDir(input)
	if err != nil {
		return fmt.Errorf("organize: %w", err)
	}
	for _, m := range measurements {
		if !m.IsDir() {
			continue
		}
		dir := filepath.Join(input, m.Name())
		subs, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("organize: %w", err)
		}
		for _, sub := range subs {
			if !sub.IsDir() || strings.HasSuffix(sub.Name(), "K") {
				continue
			}
			if err := sortSubfolder(dir, filepath.Join(dir, sub.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortSubfolder(measurementDir, subdir string) error {
	if err := removeNonTxt(subdir); err != nil {
		return err
	}

	entries, err := os.ReadDir(subdir)
	if err != nil {
		return fmt.Errorf("organize: %w", err)
	}
	groups := make(map[int][]string)
	for _, e := range entries {
		n, err := measurementNumber(e.Name())
		if err != nil {
			return err
		}
		groups[n] = append(groups[n], e.Name())
	}

	for _, files := range groups {
		label, err := temperatureLabel(subdir, files)
		if err != nil {
			return err
		}
		target := filepath.Join(measurementDir, label)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("organize: %w", err)
		}
		for _, name := range files {
			dst := filepath.Join(target, sortedName(name))
			if err := os.Rename(filepath.Join(subdir, name), dst); err != nil {
				return fmt.Errorf("organize: %w", err)
			}
		}
	}
	if err := os.Remove(subdir); err != nil {
		return fmt.Errorf("organize: %w", err)
	}
	return nil
}

func removeNonTxt(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("organize: %w", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("organize: %w", err)
		}
	}
	return nil
}

// measurementNumber is the trailing four digits of the file stem.
func measurementNumber(name string) (int, error) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if len(stem) < 4 {
		return 0, fmt.Errorf("organize: no measurement number in %q", name)
	}
	n, err := strconv.Atoi(stem[len(stem)-4:])
	if err != nil {
		return 0, fmt.Errorf("organize: no measurement number in %q: %w", name, err)
	}
	return n, nil
}

// sortedName keeps only the frequency part of the stem, e.g.
// "2018-01-01__10Hz_0001.txt" becomes "10Hz.txt".
func sortedName(name string) string {
	stem := strings.TrimSuffix(name, ".txt")
	if len(stem) <= stemPrefixLen+stemSuffixLen {
		return name
	}
	return stem[stemPrefixLen:len(stem)-stemSuffixLen] + ".txt"
}

// temperatureLabel is the rounded mean temperature over a group of files,
// formatted like "300K".
func temperatureLabel(dir string, files []string) (string, error) {
	var sum float64
	var n int
	for _, name := range files {
		t, err := scan.MeanTemperature(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		sum += t
		n++
	}
	return fmt.Sprintf("%gK", math.Round(sum/float64(n))), nil
}

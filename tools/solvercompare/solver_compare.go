// solvercompare reads a CSV of per-backend pressure solutions from a
// regression run and reports the RMS/MAX residual of each backend against
// the dense baseline, supporting §8's cross-backend-agreement property, in
// the spirit of the teacher's tools/convOrder CSV-driven convergence study
// (same flag-driven main, same "read one file, print a per-row report"
// shape, repurposed from a per-polynomial-order rho/rhou/e residual table
// to a per-backend pressure residual table).
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
)

var csvFile string

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing one dense-backend pressure column followed by one column per other backend")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	report, err := compareCSV(csvFile)
	if err != nil {
		panic(err)
	}
	for _, r := range report {
		fmt.Printf("%s vs dense: RMS = %v, MAX = %v\n", r.backend, r.rms, r.max)
	}
}

// BackendResidual is the RMS and MAX pressure residual of one backend
// against the dense baseline over a regression run's node set.
type BackendResidual struct {
	backend string
	rms     float64
	max     float64
}

// compareCSV reads a header row ("dense", then one column name per other
// backend) followed by one row per mesh node, and returns the RMS/MAX
// residual of every non-dense column against the dense column.
func compareCSV(path string) ([]BackendResidual, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("solvercompare: %q has no data rows", path)
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("solvercompare: %q needs a dense column plus at least one other backend", path)
	}

	ncols := len(header)
	sumSq := make([]float64, ncols)
	maxAbs := make([]float64, ncols)
	n := 0
	for _, rec := range records[1:] {
		if len(rec) != ncols {
			continue
		}
		dense, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("solvercompare: parsing dense column: %w", err)
		}
		for c := 1; c < ncols; c++ {
			v, err := strconv.ParseFloat(rec[c], 64)
			if err != nil {
				return nil, fmt.Errorf("solvercompare: parsing column %d: %w", c, err)
			}
			d := v - dense
			sumSq[c] += d * d
			if a := math.Abs(d); a > maxAbs[c] {
				maxAbs[c] = a
			}
		}
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("solvercompare: %q has no well-formed data rows", path)
	}

	report := make([]BackendResidual, 0, ncols-1)
	for c := 1; c < ncols; c++ {
		report = append(report, BackendResidual{
			backend: header[c],
			rms:     math.Sqrt(sumSq[c] / float64(n)),
			max:     maxAbs[c],
		})
	}
	return report, nil
}

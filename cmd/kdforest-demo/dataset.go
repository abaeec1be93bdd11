package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/geshuning/kdforest"
)

// datasetFlags are the flags shared by every subcommand that needs points
// to index, either generated synthetically or loaded from a CSV file.
type datasetFlags struct {
	csvPath    string
	dim        int
	numPoints  int
	seed1      uint64
	seed2      uint64
	numTrees   int
	metric     string
	threshold  string
	maxCompare int
}

func (f *datasetFlags) bindCommon(cmd *cobraFlagSet) {
	cmd.IntVar(&f.dim, "dim", 16, "vector dimensionality (ignored when --csv is set)")
	cmd.IntVar(&f.numPoints, "num-points", 10000, "number of synthetic points to generate (ignored when --csv is set)")
	cmd.StringVar(&f.csvPath, "csv", "", "path to a CSV file of row-major points, one vector per line")
	cmd.Uint64Var(&f.seed1, "seed1", 1, "first PCG seed word")
	cmd.Uint64Var(&f.seed2, "seed2", 2, "second PCG seed word")
	cmd.IntVar(&f.numTrees, "trees", 4, "number of trees in the forest")
	cmd.StringVar(&f.metric, "metric", "l2", "distance metric: l1 or l2")
	cmd.StringVar(&f.threshold, "threshold", "median", "split thresholding method: median or mean")
	cmd.IntVar(&f.maxCompare, "max-comparisons", 0, "per-query comparison budget; 0 means exact search")
}

// cobraFlagSet is the narrow subset of *pflag.FlagSet's (what
// cmd.Flags() returns) flag-registration methods datasetFlags needs, so bindCommon can be
// shared across build/query/bench without importing cobra here directly.
type cobraFlagSet interface {
	IntVar(p *int, name string, value int, usage string)
	StringVar(p *string, name, value, usage string)
	Uint64Var(p *uint64, name string, value uint64, usage string)
}

func (f *datasetFlags) metricValue() (kdforest.Metric, error) {
	switch f.metric {
	case "l2":
		return kdforest.L2, nil
	case "l1":
		return kdforest.L1, nil
	default:
		return 0, fmt.Errorf("unknown metric %q (want l1 or l2)", f.metric)
	}
}

func (f *datasetFlags) thresholdValue() (kdforest.ThresholdMethod, error) {
	switch f.threshold {
	case "median":
		return kdforest.ThresholdMedian, nil
	case "mean":
		return kdforest.ThresholdMean, nil
	default:
		return 0, fmt.Errorf("unknown threshold method %q (want median or mean)", f.threshold)
	}
}

// loadOrGeneratePoints returns a flat row-major []float64 and the inferred
// dimensionality, either read from f.csvPath or synthesized with the
// forest's injectable RandSource for reproducibility.
func (f *datasetFlags) loadOrGeneratePoints() ([]float64, int, error) {
	if f.csvPath != "" {
		return loadCSVPoints(f.csvPath)
	}
	rng := kdforest.NewRandSource(f.seed1, f.seed2)
	pts := make([]float64, f.numPoints*f.dim)
	for i := range pts {
		pts[i] = float64(rng.Uint32()) / float64(1<<32)
	}
	return pts, f.dim, nil
}

func loadCSVPoints(path string) ([]float64, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("%s: no rows", path)
	}

	dim := len(rows[0])
	pts := make([]float64, 0, len(rows)*dim)
	for lineNo, row := range rows {
		if len(row) != dim {
			return nil, 0, fmt.Errorf("%s:%d: expected %d columns, got %d", path, lineNo+1, dim, len(row))
		}
		for _, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, 0, fmt.Errorf("%s:%d: %w", path, lineNo+1, err)
			}
			pts = append(pts, v)
		}
	}
	return pts, dim, nil
}

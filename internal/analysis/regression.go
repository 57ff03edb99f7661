package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Fit is a least-squares line through a sample series.
type Fit struct {
	Slope float64
	Mean  float64
}

// IndexTrend fits values against their position 0..n-1 rather than the
// elapsed time between samples, so unevenly spaced samples are weighted as if
// they were evenly spaced. Fitting against day offsets would replace xs here.
func IndexTrend(values []float64) Stat[Fit] {
	n := len(values)
	if n < 2 {
		return Insufficient[Fit]("fewer than two samples")
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	if stat.Variance(xs, nil) == 0 {
		return Insufficient[Fit]("no variance in x")
	}

	_, slope := stat.LinearRegression(xs, values, nil, false)
	mean := stat.Mean(values, nil)
	if !finite(slope) || !finite(mean) {
		return Insufficient[Fit]("non-finite regression")
	}
	return Computed(Fit{Slope: slope, Mean: mean})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

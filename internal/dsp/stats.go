package dsp

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std returns the population standard deviation, 0 for an empty slice.
func Std(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var acc float64
	for _, x := range xs {
		d := x - m
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(xs)))
}

// Median returns the 50th percentile.
func Median(xs []float64) float64 {
	return Percentile(xs, 50)
}

// Percentile returns the p-th percentile (0..100) using linear
// interpolation between closest ranks, 0 for an empty slice.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Skewness returns the third standardized moment. Fewer than three
// values or zero variance yields 0.
func Skewness(xs []float64) float64 {
	if len(xs) < 3 {
		return 0
	}
	m, s := Mean(xs), Std(xs)
	if s == 0 {
		return 0
	}
	var acc float64
	for _, x := range xs {
		z := (x - m) / s
		acc += z * z * z
	}
	return acc / float64(len(xs))
}

// Kurtosis returns the excess kurtosis (normal distribution maps to
// 0). Fewer than four values or zero variance yields 0.
func Kurtosis(xs []float64) float64 {
	if len(xs) < 4 {
		return 0
	}
	m, s := Mean(xs), Std(xs)
	if s == 0 {
		return 0
	}
	var acc float64
	for _, x := range xs {
		z := (x - m) / s
		acc += z * z * z * z
	}
	return acc/float64(len(xs)) - 3
}

package dsp

import "math"

// Frame timing for onset detection: 25 ms windows advanced every 10 ms.
const (
	frameSeconds = 0.025
	hopSeconds   = 0.01
	maxTempoBPM  = 200.0
)

// analyzeTempo detects onsets as energy jumps between successive
// frames and derives tempo from the median inter-onset interval.
func analyzeTempo(f *Features, samples []float64, rate int) {
	frameLen := int(frameSeconds * float64(rate))
	hop := int(hopSeconds * float64(rate))
	if frameLen <= 0 || hop <= 0 {
		return
	}

	energies := frameEnergies(samples, frameLen, hop)
	if len(energies) < 2 {
		return
	}

	diffs := make([]float64, len(energies)-1)
	for i := 1; i < len(energies); i++ {
		diffs[i-1] = math.Abs(energies[i] - energies[i-1])
	}

	threshold := Mean(diffs) + Std(diffs)
	var onsets []int
	for i, d := range diffs {
		if d > threshold {
			onsets = append(onsets, i)
		}
	}

	f.OnsetDensity = float64(len(onsets)) / (float64(len(samples)) / float64(rate))

	if len(onsets) < 2 {
		return
	}
	intervals := make([]float64, len(onsets)-1)
	for i := 1; i < len(onsets); i++ {
		intervals[i-1] = float64(onsets[i]-onsets[i-1]) * float64(hop) / float64(rate)
	}
	if avg := Median(intervals); avg > 0 {
		f.TempoEstimate = math.Min(60.0/avg, maxTempoBPM)
	}
	f.RhythmRegularity = 1.0 / (1.0 + Std(intervals))
}

func frameEnergies(samples []float64, frameLen, hop int) []float64 {
	var energies []float64
	for start := 0; start < len(samples)-frameLen; start += hop {
		var e float64
		for _, x := range samples[start : start+frameLen] {
			e += x * x
		}
		energies = append(energies, e)
	}
	return energies
}

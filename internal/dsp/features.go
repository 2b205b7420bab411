package dsp

import (
	"fmt"
	"math"
)

// Features is the statistical profile of one analyzed PCM window.
// Field names follow the serialized feature record keys.
type Features struct {
	Duration         float64 `json:"duration"` // seconds
	RMSEnergy        float64 `json:"rms_energy"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
	AmplitudeMean    float64 `json:"amplitude_mean"`
	AmplitudeStd     float64 `json:"amplitude_std"`
	AmplitudeMax     float64 `json:"amplitude_max"`
	DynamicRange     float64 `json:"dynamic_range"`

	SpectralCentroid  float64 `json:"spectral_centroid"`  // Hz
	SpectralBandwidth float64 `json:"spectral_bandwidth"` // Hz
	SpectralRolloff   float64 `json:"spectral_rolloff"`   // Hz
	SpectralFlatness  float64 `json:"spectral_flatness"`

	TempoEstimate    float64 `json:"tempo_estimate"` // BPM
	RhythmRegularity float64 `json:"rhythm_regularity"`
	OnsetDensity     float64 `json:"onset_density"` // onsets per second

	LoudnessEstimate float64 `json:"loudness_estimate"` // dBFS
	Brightness       float64 `json:"brightness"`        // energy fraction above 1 kHz
	Warmth           float64 `json:"warmth"`            // energy fraction below 500 Hz
	Roughness        float64 `json:"roughness"`
}

// Analyze computes the full feature profile for mono samples in
// [-1, 1] at the given rate.
func Analyze(samples []float64, rate int) (Features, error) {
	if len(samples) == 0 {
		return Features{}, fmt.Errorf("analyze: empty sample window")
	}
	if rate <= 0 {
		return Features{}, fmt.Errorf("analyze: invalid sample rate %d", rate)
	}

	var f Features
	analyzeAmplitude(&f, samples, rate)
	analyzeSpectrum(&f, samples, rate)
	analyzeTempo(&f, samples, rate)
	return f, nil
}

func analyzeAmplitude(f *Features, samples []float64, rate int) {
	f.Duration = float64(len(samples)) / float64(rate)

	var sumSq, sumAbs, maxAbs float64
	maxVal := math.Inf(-1)
	minVal := math.Inf(1)
	for _, x := range samples {
		sumSq += x * x
		a := math.Abs(x)
		sumAbs += a
		if a > maxAbs {
			maxAbs = a
		}
		if x > maxVal {
			maxVal = x
		}
		if x < minVal {
			minVal = x
		}
	}
	n := float64(len(samples))
	f.RMSEnergy = math.Sqrt(sumSq / n)
	f.AmplitudeMean = sumAbs / n
	f.AmplitudeStd = Std(samples)
	f.AmplitudeMax = maxAbs
	f.DynamicRange = maxVal - minVal
	f.ZeroCrossingRate = zeroCrossingRate(samples)
	f.LoudnessEstimate = 20 * math.Log10(f.RMSEnergy+1e-10)
}

func zeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	var total float64
	prev := sign(samples[0])
	for _, x := range samples[1:] {
		cur := sign(x)
		total += math.Abs(cur-prev) / 2
		prev = cur
	}
	return total / float64(len(samples)-1)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

package dsp

import "math"

func analyzeSpectrum(f *Features, samples []float64, rate int) {
	full := SpectrumMagnitudes(samples)
	half := full
	if len(full) > 1 {
		half = full[:len(full)/2]
	}
	binHz := float64(rate) / float64(len(full))

	var total float64
	for _, m := range half {
		total += m
	}
	if total > 0 {
		fracs := make([]float64, len(half))
		for i, m := range half {
			fracs[i] = m / total
		}
		f.SpectralCentroid = spectralCentroid(fracs, binHz)
		if f.SpectralCentroid > 0 {
			f.SpectralBandwidth = spectralBandwidth(fracs, binHz, f.SpectralCentroid)
		}
		f.SpectralRolloff = spectralRolloff(fracs, binHz)
		f.SpectralFlatness = spectralFlatness(fracs)
	}

	f.Brightness, f.Warmth = bandEnergyRatios(half, len(full), rate)
	f.Roughness = roughness(half)
}

func spectralCentroid(fracs []float64, binHz float64) float64 {
	var weighted float64
	for i, m := range fracs {
		weighted += float64(i) * binHz * m
	}
	return weighted
}

func spectralBandwidth(fracs []float64, binHz, centroid float64) float64 {
	var acc float64
	for i, m := range fracs {
		d := float64(i)*binHz - centroid
		acc += d * d * m
	}
	return math.Sqrt(acc)
}

// spectralRolloff returns the frequency below which 85% of the
// spectral magnitude accumulates.
func spectralRolloff(fracs []float64, binHz float64) float64 {
	var total float64
	for _, m := range fracs {
		total += m
	}
	target := 0.85 * total
	var cum float64
	for i, m := range fracs {
		cum += m
		if cum >= target {
			return float64(i) * binHz
		}
	}
	return 0
}

// spectralFlatness is the ratio of geometric to arithmetic mean
// magnitude (Wiener entropy): near 1 for noise, near 0 for pure tones.
func spectralFlatness(fracs []float64) float64 {
	arith := Mean(fracs)
	if arith <= 0 {
		return 0
	}
	var logSum float64
	for _, m := range fracs {
		logSum += math.Log(m + 1e-10)
	}
	geo := math.Exp(logSum / float64(len(fracs)))
	return geo / arith
}

// bandEnergyRatios returns the fraction of spectral energy above 1 kHz
// (brightness) and below 500 Hz (warmth).
func bandEnergyRatios(half []float64, fftLen, rate int) (brightness, warmth float64) {
	var total float64
	for _, m := range half {
		total += m * m
	}
	if total == 0 {
		return 0, 0
	}
	highStart := 1000 * fftLen / rate
	lowEnd := 500 * fftLen / rate
	var high, low float64
	for i, m := range half {
		if i >= highStart {
			high += m * m
		}
		if i < lowEnd {
			low += m * m
		}
	}
	return high / total, low / total
}

// roughness estimates spectral irregularity as the spread of
// bin-to-bin magnitude differences.
func roughness(half []float64) float64 {
	if len(half) < 2 {
		return 0
	}
	diffs := make([]float64, len(half)-1)
	for i := 1; i < len(half); i++ {
		diffs[i-1] = half[i] - half[i-1]
	}
	return Std(diffs)
}

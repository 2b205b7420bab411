package dsp

import (
	"math"
	"testing"
)

func TestSpectrumMagnitudesImpulse(t *testing.T) {
	xs := make([]float64, 8)
	xs[0] = 1

	mags := SpectrumMagnitudes(xs)
	if len(mags) != 8 {
		t.Fatalf("len = %d, want 8", len(mags))
	}
	for i, m := range mags {
		if math.Abs(m-1) > 1e-9 {
			t.Errorf("bin %d = %v, want 1 (impulse spectrum is flat)", i, m)
		}
	}
}

func TestSpectrumMagnitudesPureTone(t *testing.T) {
	const n = 64
	const bin = 8
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = math.Sin(2 * math.Pi * bin * float64(i) / n)
	}

	mags := SpectrumMagnitudes(xs)
	// A real sine at an exact bin concentrates in bin and n-bin, each
	// holding n/2 of the unit amplitude.
	if math.Abs(mags[bin]-n/2) > 1e-6 {
		t.Errorf("bin %d = %v, want %v", bin, mags[bin], float64(n/2))
	}
	if math.Abs(mags[n-bin]-n/2) > 1e-6 {
		t.Errorf("bin %d = %v, want %v", n-bin, mags[n-bin], float64(n/2))
	}
	for _, i := range []int{0, 1, 4, 20, 32, 50} {
		if mags[i] > 1e-6 {
			t.Errorf("bin %d = %v, want ~0", i, mags[i])
		}
	}
}

func TestSpectrumMagnitudesDC(t *testing.T) {
	xs := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}

	mags := SpectrumMagnitudes(xs)
	if math.Abs(mags[0]-4) > 1e-9 {
		t.Errorf("DC bin = %v, want 4", mags[0])
	}
	for i := 1; i < len(mags); i++ {
		if mags[i] > 1e-9 {
			t.Errorf("bin %d = %v, want 0", i, mags[i])
		}
	}
}

func TestSpectrumMagnitudesPadsToPowerOfTwo(t *testing.T) {
	mags := SpectrumMagnitudes(make([]float64, 12))
	if len(mags) != 16 {
		t.Errorf("len = %d, want 16", len(mags))
	}
}

func TestSpectrumMagnitudesParseval(t *testing.T) {
	xs := []float64{0.3, -0.7, 0.12, 0.9, -0.4, 0.05, -0.66, 0.21,
		0.8, -0.13, 0.44, -0.9, 0.37, 0.02, -0.28, 0.55}

	var timeEnergy float64
	for _, x := range xs {
		timeEnergy += x * x
	}

	mags := SpectrumMagnitudes(xs)
	var freqEnergy float64
	for _, m := range mags {
		freqEnergy += m * m
	}

	want := float64(len(xs)) * timeEnergy
	if math.Abs(freqEnergy-want) > 1e-9*want {
		t.Errorf("sum |X|^2 = %v, want n*sum x^2 = %v", freqEnergy, want)
	}
}

func TestFFTMatchesNaiveDFT(t *testing.T) {
	xs := []float64{1, 0.5, -0.25, 0.75, -1, 0.1, 0.9, -0.6}
	n := len(xs)

	wantRe := make([]float64, n)
	wantIm := make([]float64, n)
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			angle := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			wantRe[k] += xs[i] * math.Cos(angle)
			wantIm[k] += xs[i] * math.Sin(angle)
		}
	}

	re := append([]float64(nil), xs...)
	im := make([]float64, n)
	fft(re, im)

	for k := 0; k < n; k++ {
		if math.Abs(re[k]-wantRe[k]) > 1e-9 || math.Abs(im[k]-wantIm[k]) > 1e-9 {
			t.Errorf("bin %d = (%v, %v), want (%v, %v)", k, re[k], im[k], wantRe[k], wantIm[k])
		}
	}
}

func TestDFTMagnitudesKeepsNaturalLength(t *testing.T) {
	mags := DFTMagnitudes(make([]float64, 6))
	if len(mags) != 6 {
		t.Fatalf("len = %d, want 6 (no padding)", len(mags))
	}
}

func TestDFTMagnitudesMatchesFFTAtPowerOfTwo(t *testing.T) {
	xs := []float64{1, 0.5, -0.25, 0.75, -1, 0.1, 0.9, -0.6}

	direct := DFTMagnitudes(xs)
	fast := SpectrumMagnitudes(xs)
	if len(direct) != len(fast) {
		t.Fatalf("len mismatch: %d vs %d", len(direct), len(fast))
	}
	for i := range direct {
		if math.Abs(direct[i]-fast[i]) > 1e-9 {
			t.Errorf("bin %d: direct %v, fft %v", i, direct[i], fast[i])
		}
	}
}

func TestDFTMagnitudesOddLengthTone(t *testing.T) {
	// A complex exponential at bin 2 of a length-7 DFT concentrates all
	// magnitude in bins 2 and 5 for its real part.
	const n = 7
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = math.Cos(2 * math.Pi * 2 * float64(i) / n)
	}

	mags := DFTMagnitudes(xs)
	if math.Abs(mags[2]-n/2.0) > 1e-9 {
		t.Errorf("bin 2 = %v, want %v", mags[2], n/2.0)
	}
	if math.Abs(mags[5]-n/2.0) > 1e-9 {
		t.Errorf("bin 5 = %v, want %v", mags[5], n/2.0)
	}
	for _, i := range []int{0, 1, 3, 4, 6} {
		if mags[i] > 1e-9 {
			t.Errorf("bin %d = %v, want ~0", i, mags[i])
		}
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{12, 16},
		{1024, 1024},
		{1025, 2048},
	}
	for _, tt := range tests {
		if got := nextPow2(tt.n); got != tt.want {
			t.Errorf("nextPow2(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

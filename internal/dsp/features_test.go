package dsp

import (
	"math"
	"testing"
)

const testRate = 22050

// tone synthesizes a sine landing on an exact FFT bin so spectral
// assertions do not suffer leakage. n must be a power of two.
func tone(n, bin int, amp float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = amp * math.Sin(2*math.Pi*float64(bin)*float64(i)/float64(n))
	}
	return xs
}

// lcgNoise yields a deterministic pseudo-random signal in [-1, 1].
func lcgNoise(n int) []float64 {
	xs := make([]float64, n)
	state := uint32(12345)
	for i := range xs {
		state = state*1664525 + 1013904223
		xs[i] = float64(state)/float64(math.MaxUint32)*2 - 1
	}
	return xs
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	if _, err := Analyze(nil, testRate); err == nil {
		t.Error("Analyze(empty) should fail")
	}
	if _, err := Analyze([]float64{0.1}, 0); err == nil {
		t.Error("Analyze(rate 0) should fail")
	}
	if _, err := Analyze([]float64{0.1}, -44100); err == nil {
		t.Error("Analyze(negative rate) should fail")
	}
}

func TestAnalyzeSilence(t *testing.T) {
	f, err := Analyze(make([]float64, 4096), testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if f.RMSEnergy != 0 {
		t.Errorf("RMSEnergy = %v, want 0", f.RMSEnergy)
	}
	if f.ZeroCrossingRate != 0 {
		t.Errorf("ZeroCrossingRate = %v, want 0", f.ZeroCrossingRate)
	}
	if f.DynamicRange != 0 {
		t.Errorf("DynamicRange = %v, want 0", f.DynamicRange)
	}
	// 20*log10(1e-10) floor for digital silence.
	if math.Abs(f.LoudnessEstimate-(-200)) > 1e-9 {
		t.Errorf("LoudnessEstimate = %v, want -200", f.LoudnessEstimate)
	}
	if f.SpectralCentroid != 0 || f.SpectralFlatness != 0 {
		t.Errorf("spectral features = (%v, %v), want zeros", f.SpectralCentroid, f.SpectralFlatness)
	}
	if f.Brightness != 0 || f.Warmth != 0 {
		t.Errorf("band ratios = (%v, %v), want zeros", f.Brightness, f.Warmth)
	}
	if f.TempoEstimate != 0 || f.OnsetDensity != 0 {
		t.Errorf("tempo features = (%v, %v), want zeros", f.TempoEstimate, f.OnsetDensity)
	}
}

func TestAnalyzeLowTone(t *testing.T) {
	const n = 32768
	const bin = 512 // 344.5 Hz at 22050
	wantFreq := float64(bin) * testRate / n

	f, err := Analyze(tone(n, bin, 0.5), testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(f.Duration-float64(n)/testRate) > 1e-9 {
		t.Errorf("Duration = %v, want %v", f.Duration, float64(n)/testRate)
	}
	// Full periods make RMS exactly amp/sqrt(2).
	if math.Abs(f.RMSEnergy-0.5/math.Sqrt2) > 1e-3 {
		t.Errorf("RMSEnergy = %v, want %v", f.RMSEnergy, 0.5/math.Sqrt2)
	}
	if math.Abs(f.DynamicRange-1.0) > 1e-9 {
		t.Errorf("DynamicRange = %v, want 1.0", f.DynamicRange)
	}
	wantZCR := 2 * wantFreq / testRate
	if math.Abs(f.ZeroCrossingRate-wantZCR) > 1e-3 {
		t.Errorf("ZeroCrossingRate = %v, want ~%v", f.ZeroCrossingRate, wantZCR)
	}
	if math.Abs(f.SpectralCentroid-wantFreq) > 1.0 {
		t.Errorf("SpectralCentroid = %v, want ~%v", f.SpectralCentroid, wantFreq)
	}
	if math.Abs(f.SpectralRolloff-wantFreq) > 1.0 {
		t.Errorf("SpectralRolloff = %v, want ~%v", f.SpectralRolloff, wantFreq)
	}
	if f.SpectralFlatness > 0.05 {
		t.Errorf("SpectralFlatness = %v, want near 0 for a pure tone", f.SpectralFlatness)
	}
	// 344 Hz sits below both band edges.
	if f.Warmth < 0.99 {
		t.Errorf("Warmth = %v, want ~1", f.Warmth)
	}
	if f.Brightness > 0.01 {
		t.Errorf("Brightness = %v, want ~0", f.Brightness)
	}
}

func TestAnalyzeHighTone(t *testing.T) {
	const n = 32768
	const bin = 4096 // 2756.25 Hz at 22050
	wantFreq := float64(bin) * testRate / n

	f, err := Analyze(tone(n, bin, 0.4), testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(f.SpectralCentroid-wantFreq) > 2.0 {
		t.Errorf("SpectralCentroid = %v, want ~%v", f.SpectralCentroid, wantFreq)
	}
	if f.Brightness < 0.99 {
		t.Errorf("Brightness = %v, want ~1", f.Brightness)
	}
	if f.Warmth > 0.01 {
		t.Errorf("Warmth = %v, want ~0", f.Warmth)
	}
}

func TestAnalyzeNoiseIsFlat(t *testing.T) {
	noise, err := Analyze(lcgNoise(8192), testRate)
	if err != nil {
		t.Fatalf("Analyze(noise): %v", err)
	}
	pure, err := Analyze(tone(8192, 128, 0.5), testRate)
	if err != nil {
		t.Fatalf("Analyze(tone): %v", err)
	}

	if noise.SpectralFlatness < 0.3 {
		t.Errorf("noise flatness = %v, want > 0.3", noise.SpectralFlatness)
	}
	if noise.SpectralFlatness <= pure.SpectralFlatness {
		t.Errorf("noise flatness %v should exceed tone flatness %v", noise.SpectralFlatness, pure.SpectralFlatness)
	}
	// Random signs flip on roughly half of the steps.
	if noise.ZeroCrossingRate < 0.3 || noise.ZeroCrossingRate > 0.7 {
		t.Errorf("noise ZCR = %v, want near 0.5", noise.ZeroCrossingRate)
	}
}

func TestAnalyzePulseTrain(t *testing.T) {
	// 100 ms tone bursts every 500 ms for four seconds.
	n := 4 * testRate
	xs := make([]float64, n)
	for i := range xs {
		posInCycle := i % (testRate / 2)
		if posInCycle < testRate/10 {
			xs[i] = 0.8 * math.Sin(2*math.Pi*440*float64(i)/testRate)
		}
	}

	f, err := Analyze(xs, testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if f.TempoEstimate <= 0 || f.TempoEstimate > maxTempoBPM {
		t.Errorf("TempoEstimate = %v, want in (0, %v]", f.TempoEstimate, maxTempoBPM)
	}
	if f.OnsetDensity <= 0 {
		t.Errorf("OnsetDensity = %v, want > 0", f.OnsetDensity)
	}
	if f.RhythmRegularity <= 0 || f.RhythmRegularity > 1 {
		t.Errorf("RhythmRegularity = %v, want in (0, 1]", f.RhythmRegularity)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	xs := lcgNoise(4096)
	a, err := Analyze(xs, testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	b, err := Analyze(xs, testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a != b {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", a, b)
	}
}

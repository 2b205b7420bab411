package scoring

import (
	"math"
	"testing"

	"attune/internal/descriptor"
	"attune/internal/dsp"
	"attune/internal/features"
)

func statisticalRecord(f dsp.Features) features.Record {
	return features.Record{
		Provenance:  features.ProvenanceStatistical,
		Statistical: &f,
	}
}

func embeddingRecord(vec []float64) features.Record {
	return features.Record{
		Provenance: features.ProvenanceEmbedding,
		Embedding:  vec,
	}
}

func TestCandidateAxesStatistical(t *testing.T) {
	rec := statisticalRecord(dsp.Features{
		TempoEstimate:    100,
		RMSEnergy:        0.05,
		Brightness:       0.3,
		Warmth:           0.8,
		RhythmRegularity: 0.6,
		SpectralCentroid: 4000,
		DynamicRange:     1.0,
	})

	axes, ok := CandidateAxes(rec)
	if !ok {
		t.Fatal("expected usable axes")
	}
	want := []float64{0.5, 0.5, 0.3, 0.8, 0.6, 0.5, 0.5}
	if len(axes) != len(want) {
		t.Fatalf("expected %d axes, got %d", len(want), len(axes))
	}
	for i, w := range want {
		if math.Abs(axes[i]-w) > 1e-12 {
			t.Errorf("axis %d = %v, want %v", i, axes[i], w)
		}
	}
}

func TestCandidateAxesStatisticalCapsAtOne(t *testing.T) {
	rec := statisticalRecord(dsp.Features{
		TempoEstimate:    500,
		RMSEnergy:        0.9,
		Brightness:       1.2,
		Warmth:           1.1,
		RhythmRegularity: 3,
		SpectralCentroid: 20000,
		DynamicRange:     7,
	})

	axes, ok := CandidateAxes(rec)
	if !ok {
		t.Fatal("expected usable axes")
	}
	for i, v := range axes {
		if v != 1 {
			t.Errorf("axis %d = %v, want capped 1", i, v)
		}
	}
}

func TestSummarizeConstantVector(t *testing.T) {
	s := Summarize([]float64{0.5, 0.5, 0.5, 0.5})

	if s.Mean != 0.5 || s.Min != 0.5 || s.Max != 0.5 || s.Median != 0.5 {
		t.Fatalf("unexpected location stats: %+v", s)
	}
	if s.Std != 0 || s.IQR != 0 {
		t.Fatalf("expected zero spread, got std=%v iqr=%v", s.Std, s.IQR)
	}
	if s.Skewness != 0 || s.Kurtosis != 0 {
		t.Fatalf("expected zero-variance guards, got skew=%v kurt=%v", s.Skewness, s.Kurtosis)
	}
	if math.Abs(s.Energy-1.0) > 1e-12 {
		t.Fatalf("energy = %v, want 1.0", s.Energy)
	}
	if math.Abs(s.RMS-0.5) > 1e-12 {
		t.Fatalf("rms = %v, want 0.5", s.RMS)
	}
	// A constant sequence has only a DC component, so the
	// index-weighted centroid sits at bin zero.
	if s.Centroid != 0 {
		t.Fatalf("centroid = %v, want 0", s.Centroid)
	}
}

func TestSummarizeKnownSequence(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})

	if math.Abs(s.Mean-2.5) > 1e-12 {
		t.Errorf("mean = %v, want 2.5", s.Mean)
	}
	if math.Abs(s.Std-math.Sqrt(1.25)) > 1e-12 {
		t.Errorf("std = %v, want sqrt(1.25)", s.Std)
	}
	if s.Min != 1 || s.Max != 4 {
		t.Errorf("min/max = %v/%v, want 1/4", s.Min, s.Max)
	}
	if math.Abs(s.Median-2.5) > 1e-12 {
		t.Errorf("median = %v, want 2.5", s.Median)
	}
	if math.Abs(s.Q25-1.75) > 1e-12 || math.Abs(s.Q75-3.25) > 1e-12 {
		t.Errorf("quartiles = %v/%v, want 1.75/3.25", s.Q25, s.Q75)
	}
	if math.Abs(s.IQR-1.5) > 1e-12 {
		t.Errorf("iqr = %v, want 1.5", s.IQR)
	}
	if math.Abs(s.Skewness) > 1e-12 {
		t.Errorf("skewness = %v, want 0 for a symmetric sequence", s.Skewness)
	}
	if math.Abs(s.Kurtosis-(-1.36)) > 1e-9 {
		t.Errorf("kurtosis = %v, want -1.36", s.Kurtosis)
	}
	if math.Abs(s.Energy-30) > 1e-12 {
		t.Errorf("energy = %v, want 30", s.Energy)
	}
	if math.Abs(s.RMS-math.Sqrt(7.5)) > 1e-12 {
		t.Errorf("rms = %v, want sqrt(7.5)", s.RMS)
	}

	// DFT of [1,2,3,4]: |X| = [10, 2*sqrt(2), 2, 2*sqrt(2)].
	mags := []float64{10, 2 * math.Sqrt2, 2, 2 * math.Sqrt2}
	var num, den float64
	for i, m := range mags {
		num += float64(i) * m
		den += m
	}
	if math.Abs(s.Centroid-num/den) > 1e-9 {
		t.Errorf("centroid = %v, want %v", s.Centroid, num/den)
	}
}

func TestCandidateAxesEmbeddingSaturation(t *testing.T) {
	// Alternating full-scale values saturate the energy, centroid,
	// spread, and rms proxies; symmetry zeroes skewness, and the flat
	// two-point distribution pins excess kurtosis at -2.
	vec := make([]float64, 256)
	for i := range vec {
		if i%2 == 0 {
			vec[i] = 1
		} else {
			vec[i] = -1
		}
	}

	axes, ok := CandidateAxes(embeddingRecord(vec))
	if !ok {
		t.Fatal("expected usable axes")
	}
	want := []float64{1, 1, 1, 1, 0, 0.4}
	if len(axes) != len(want) {
		t.Fatalf("expected %d axes, got %d", len(want), len(axes))
	}
	for i, w := range want {
		if math.Abs(axes[i]-w) > 1e-9 {
			t.Errorf("axis %d = %v, want %v", i, axes[i], w)
		}
	}
}

func TestCandidateAxesRejectsInvalidRecords(t *testing.T) {
	if _, ok := CandidateAxes(features.Record{Provenance: features.ProvenanceStatistical}); ok {
		t.Error("expected statistical record without payload to be rejected")
	}
	if _, ok := CandidateAxes(features.Record{Provenance: features.ProvenanceEmbedding}); ok {
		t.Error("expected embedding record without payload to be rejected")
	}
	if _, ok := CandidateAxes(features.Record{Provenance: "mystery"}); ok {
		t.Error("expected unknown provenance to be rejected")
	}
}

func TestProjectCutsToTemplateSpace(t *testing.T) {
	rec := statisticalRecord(dsp.Features{TempoEstimate: 100, RMSEnergy: 0.05, DynamicRange: 1})

	axes, _ := CandidateAxes(rec)
	if len(axes) != 7 {
		t.Fatalf("expected 7 raw axes, got %d", len(axes))
	}
	projected, ok := Project(rec)
	if !ok {
		t.Fatal("expected projection")
	}
	if len(projected) != descriptor.Axes {
		t.Fatalf("expected %d projected axes, got %d", descriptor.Axes, len(projected))
	}
	for i := range projected {
		if projected[i] != axes[i] {
			t.Errorf("axis %d = %v, want %v", i, projected[i], axes[i])
		}
	}
}

func TestScorePerfectStatisticalMatch(t *testing.T) {
	// Zero dynamic range keeps the truncated candidate at unit norm, so
	// an identical template direction scores a full 1.0.
	rec := statisticalRecord(dsp.Features{
		TempoEstimate:    100,
		RMSEnergy:        0.05,
		Brightness:       0.5,
		Warmth:           0.5,
		RhythmRegularity: 0.5,
		SpectralCentroid: 4000,
		DynamicRange:     0,
	})
	template := descriptor.Normalize(descriptor.Vector{0.5, 0.5, 0.5, 0.5, 0.5, 0.5})

	score := NewScorer(DefaultConfig()).Score(template, rec)
	if math.Abs(score-1) > 1e-12 {
		t.Fatalf("score = %v, want 1", score)
	}
}

func TestScoreCutsCandidateAfterNormalization(t *testing.T) {
	// Dynamic range is outside the template space, yet it still scales
	// the candidate's norm before the cut. A large value must therefore
	// pull an otherwise perfect match below 1.
	base := dsp.Features{
		TempoEstimate:    100,
		RMSEnergy:        0.05,
		Brightness:       0.5,
		Warmth:           0.5,
		RhythmRegularity: 0.5,
		SpectralCentroid: 4000,
	}
	loud := base
	loud.DynamicRange = 2

	template := descriptor.Normalize(descriptor.Vector{0.5, 0.5, 0.5, 0.5, 0.5, 0.5})
	scorer := NewScorer(DefaultConfig())

	perfect := scorer.Score(template, statisticalRecord(base))
	dampened := scorer.Score(template, statisticalRecord(loud))
	if !(dampened < perfect) {
		t.Fatalf("expected dynamic range to dampen the score through the norm, got %v vs %v", dampened, perfect)
	}
	if math.Abs(perfect-1) > 1e-12 {
		t.Fatalf("baseline score = %v, want 1", perfect)
	}
}

func TestScoreBlendsPerProvenanceWeights(t *testing.T) {
	template := descriptor.Normalize(descriptor.Vector{0.9, 0.1, 0.4, 0.7, 0.2, 0.5})
	statRec := statisticalRecord(dsp.Features{
		TempoEstimate:    140,
		RMSEnergy:        0.03,
		Brightness:       0.6,
		Warmth:           0.2,
		RhythmRegularity: 0.8,
		SpectralCentroid: 2500,
		DynamicRange:     0.9,
	})
	embRec := embeddingRecord([]float64{0.3, -0.8, 0.5, 1.2, -0.1, 0.9, 0.4, -0.6})

	cosOnly := NewScorer(Config{Statistical: Weights{Cosine: 1}, Embedding: Weights{Cosine: 1}})
	eucOnly := NewScorer(Config{Statistical: Weights{Euclidean: 1}, Embedding: Weights{Euclidean: 1}})
	blended := NewScorer(DefaultConfig())

	statCos := cosOnly.Score(template, statRec)
	statEuc := eucOnly.Score(template, statRec)
	wantStat := 0.7*statCos + 0.3*statEuc
	if got := blended.Score(template, statRec); math.Abs(got-wantStat) > 1e-12 {
		t.Errorf("statistical blend = %v, want %v", got, wantStat)
	}

	embCos := cosOnly.Score(template, embRec)
	embEuc := eucOnly.Score(template, embRec)
	wantEmb := 0.8*embCos + 0.2*embEuc
	if got := blended.Score(template, embRec); math.Abs(got-wantEmb) > 1e-12 {
		t.Errorf("embedding blend = %v, want %v", got, wantEmb)
	}
}

func TestScoreInvalidRecordIsZero(t *testing.T) {
	template := descriptor.Normalize(descriptor.Vector{1, 0, 0, 0, 0, 0})
	scorer := NewScorer(DefaultConfig())
	if got := scorer.Score(template, features.Record{Provenance: "mystery"}); got != 0 {
		t.Fatalf("score = %v, want 0 for unusable record", got)
	}
	if got := scorer.Score(nil, statisticalRecord(dsp.Features{RMSEnergy: 0.1})); got != 0 {
		t.Fatalf("score = %v, want 0 for empty template", got)
	}
}

func TestScoreSilentCandidate(t *testing.T) {
	// An all-zero candidate cannot be normalized; cosine is zero and
	// only the euclidean term contributes.
	template := descriptor.Normalize(descriptor.Vector{0.5, 0.5, 0.5, 0.5, 0.5, 0.5})
	rec := statisticalRecord(dsp.Features{})

	score := NewScorer(DefaultConfig()).Score(template, rec)
	want := 0.3 * (1.0 / 2.0) // distance to a unit template is 1
	if math.Abs(score-want) > 1e-12 {
		t.Fatalf("score = %v, want %v", score, want)
	}
}

func TestNewScorerDefaultsZeroWeights(t *testing.T) {
	template := descriptor.Normalize(descriptor.Vector{0.9, 0.1, 0.4, 0.7, 0.2, 0.5})
	rec := embeddingRecord([]float64{0.3, -0.8, 0.5, 1.2, -0.1, 0.9})

	implicit := NewScorer(Config{}).Score(template, rec)
	explicit := NewScorer(DefaultConfig()).Score(template, rec)
	if implicit != explicit {
		t.Fatalf("implicit defaults scored %v, explicit %v", implicit, explicit)
	}
}

package scoring

import (
	"math"

	"attune/internal/descriptor"
	"attune/internal/dsp"
	"attune/internal/features"
)

// Weights blends the two distance measures into one score. A pair
// summing to one keeps scores in [0, 1].
type Weights struct {
	Cosine    float64
	Euclidean float64
}

// Config carries the blend weights per feature provenance.
type Config struct {
	Embedding   Weights
	Statistical Weights
}

// DefaultConfig returns the reference blend: embedding scores lean
// harder on cosine similarity, statistical scores keep more euclidean
// weight.
func DefaultConfig() Config {
	return Config{
		Embedding:   Weights{Cosine: 0.8, Euclidean: 0.2},
		Statistical: Weights{Cosine: 0.7, Euclidean: 0.3},
	}
}

// Scorer scores candidate records against stage template vectors.
type Scorer struct {
	cfg Config
}

// NewScorer builds a Scorer. A zero-valued weight pair falls back to
// its default.
func NewScorer(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.Embedding == (Weights{}) {
		cfg.Embedding = def.Embedding
	}
	if cfg.Statistical == (Weights{}) {
		cfg.Statistical = def.Statistical
	}
	return &Scorer{cfg: cfg}
}

// Score returns the similarity between a normalized template vector and
// a candidate record. Records without a usable payload score zero.
func (s *Scorer) Score(template descriptor.Vector, rec features.Record) float64 {
	axes, ok := CandidateAxes(rec)
	if !ok {
		return 0
	}
	candidate := descriptor.Normalize(descriptor.Vector(axes))

	n := len(template)
	if len(candidate) < n {
		n = len(candidate)
	}
	if n == 0 {
		return 0
	}
	cos := cosineNonNegative(template[:n], candidate[:n])
	euc := euclideanCloseness(template[:n], candidate[:n])

	w := s.cfg.Statistical
	if rec.Provenance == features.ProvenanceEmbedding {
		w = s.cfg.Embedding
	}
	return w.Cosine*cos + w.Euclidean*euc
}

// CandidateAxes maps a record onto raw bounded axis values before
// normalization. Statistical records produce seven axes; the trailing
// dynamic-range axis falls outside the six-dimensional template space
// and is cut after normalization, so it shapes the score only through
// the norm. Embedding records produce six axes. ok is false when the
// record carries no usable payload.
func CandidateAxes(rec features.Record) ([]float64, bool) {
	switch rec.Provenance {
	case features.ProvenanceStatistical:
		if rec.Statistical == nil {
			return nil, false
		}
		return statisticalAxes(*rec.Statistical), true
	case features.ProvenanceEmbedding:
		if len(rec.Embedding) == 0 {
			return nil, false
		}
		return embeddingAxes(rec.Embedding), true
	default:
		return nil, false
	}
}

// Project returns the record's raw axes cut to the template space's
// six dimensions, for clustering and reporting.
func Project(rec features.Record) (descriptor.Vector, bool) {
	axes, ok := CandidateAxes(rec)
	if !ok {
		return nil, false
	}
	if len(axes) > descriptor.Axes {
		axes = axes[:descriptor.Axes]
	}
	return descriptor.Vector(axes), true
}

func statisticalAxes(f dsp.Features) []float64 {
	return []float64{
		capUnit(f.TempoEstimate / 200.0),
		capUnit(f.RMSEnergy * 10),
		capUnit(f.Brightness),
		capUnit(f.Warmth),
		capUnit(f.RhythmRegularity),
		capUnit(f.SpectralCentroid / 8000.0),
		capUnit(f.DynamicRange / 2.0),
	}
}

func embeddingAxes(vec []float64) []float64 {
	st := Summarize(vec)
	return []float64{
		capUnit(math.Abs(st.Energy) / 10.0),
		capUnit(math.Abs(st.Centroid) / 100.0),
		capUnit(st.Std * 2.0),
		capUnit(st.RMS * 5.0),
		capUnit(math.Abs(st.Skewness) / 2.0),
		capUnit(math.Abs(st.Kurtosis) / 5.0),
	}
}

// EmbeddingSummary captures sequence statistics over an embedding
// vector, treated as a one-dimensional signal. Six of these feed the
// proxy axes; the rest are retained for inspection output.
type EmbeddingSummary struct {
	Mean     float64
	Std      float64
	Min      float64
	Max      float64
	Median   float64
	Q25      float64
	Q75      float64
	IQR      float64
	Skewness float64
	Kurtosis float64
	Energy   float64
	RMS      float64
	Centroid float64
}

// Summarize computes the summary statistics for an embedding vector.
// An empty vector yields a zero summary.
func Summarize(vec []float64) EmbeddingSummary {
	var s EmbeddingSummary
	if len(vec) == 0 {
		return s
	}

	s.Mean = dsp.Mean(vec)
	s.Std = dsp.Std(vec)
	s.Min, s.Max = vec[0], vec[0]
	for _, v := range vec {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Median = dsp.Median(vec)
	s.Q25 = dsp.Percentile(vec, 25)
	s.Q75 = dsp.Percentile(vec, 75)
	s.IQR = s.Q75 - s.Q25
	s.Skewness = dsp.Skewness(vec)
	s.Kurtosis = dsp.Kurtosis(vec)

	var energy float64
	for _, v := range vec {
		energy += v * v
	}
	s.Energy = energy
	s.RMS = math.Sqrt(energy / float64(len(vec)))

	// Index-weighted centroid over the vector's own spectrum. The
	// natural-length transform keeps bin indices aligned with vector
	// positions.
	mags := dsp.DFTMagnitudes(vec)
	var num, den float64
	for i, m := range mags {
		num += float64(i) * m
		den += m
	}
	if den > 0 {
		s.Centroid = num / den
	}
	return s
}

func capUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	return x
}

// cosineNonNegative returns max(0, a·b). Inputs are unit-or-zero norm,
// so the dot product already is the cosine.
func cosineNonNegative(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	if dot < 0 {
		return 0
	}
	return dot
}

// euclideanCloseness returns 1/(1+dist), mapping distance 0 to 1 and
// decaying toward 0.
func euclideanCloseness(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return 1 / (1 + math.Sqrt(sum))
}

package features

import (
	"fmt"
	"time"

	"attune/internal/dsp"
)

// ExtractorVersion tags every record. Bumping it turns existing cache
// entries into misses on their next lookup.
const ExtractorVersion = "4.0.0"

// Provenance says which analysis path produced a record.
type Provenance string

const (
	// ProvenanceStatistical marks records built by the local dsp
	// fallback analysis.
	ProvenanceStatistical Provenance = "statistical"
	// ProvenanceEmbedding marks records built from a provider
	// embedding vector.
	ProvenanceEmbedding Provenance = "embedding"
)

// Record is one extracted feature profile for a media file. Exactly
// one of Statistical or Embedding is populated, selected by
// Provenance.
type Record struct {
	Fingerprint      string     `json:"feature_id"`
	Path             string     `json:"video_path"`
	Name             string     `json:"video_name"`
	ExtractRatio     float64    `json:"extract_ratio"`
	ExtractedAt      time.Time  `json:"extracted_at"`
	FileSize         int64      `json:"file_size"`
	ExtractorVersion string     `json:"extractor_version"`
	Provenance       Provenance `json:"provenance"`
	ModelType        string     `json:"model_type,omitempty"`

	Statistical *dsp.Features `json:"statistical,omitempty"`
	Embedding   []float64     `json:"feature_vector,omitempty"`
}

// Validate checks that the provenance tag and its payload agree.
func (r Record) Validate() error {
	switch r.Provenance {
	case ProvenanceStatistical:
		if r.Statistical == nil {
			return fmt.Errorf("statistical record %s has no feature payload", r.Fingerprint)
		}
	case ProvenanceEmbedding:
		if len(r.Embedding) == 0 {
			return fmt.Errorf("embedding record %s has no feature vector", r.Fingerprint)
		}
	default:
		return fmt.Errorf("record %s has unknown provenance %q", r.Fingerprint, r.Provenance)
	}
	return nil
}

// Fresh reports whether the record was produced by the current
// extractor version with the given analysis window ratio. Stale
// records are re-extracted rather than served.
func (r Record) Fresh(ratio float64) bool {
	return r.ExtractorVersion == ExtractorVersion && r.ExtractRatio == ratio
}

package emotion

import (
	"fmt"
	"log/slog"

	"attune/internal/logging"
	"attune/internal/services"
)

// Vector is a dense intensity vector over the taxonomy. Index i corresponds
// to Taxonomy()[i]; every component stays within [0,1].
type Vector []float64

// NewVector validates the raw values and returns a clamped copy. Length is
// the hard contract: anything other than Dim fails with ErrDimension.
func NewVector(values []float64) (Vector, error) {
	if len(values) != Dim {
		return nil, services.Wrap(services.ErrDimension, "emotion", "new vector",
			fmt.Sprintf("expected %d components, got %d", Dim, len(values)), nil)
	}
	v := make(Vector, Dim)
	copy(v, values)
	v.clamp()
	return v, nil
}

// Zero returns the all-zero vector.
func Zero() Vector {
	return make(Vector, Dim)
}

// Validate rejects vectors whose length breaks the taxonomy contract.
func (v Vector) Validate() error {
	if len(v) != Dim {
		return services.Wrap(services.ErrDimension, "emotion", "validate",
			fmt.Sprintf("expected %d components, got %d", Dim, len(v)), nil)
	}
	return nil
}

func (v Vector) clamp() {
	for i, value := range v {
		if value < 0 {
			v[i] = 0
		} else if value > 1 {
			v[i] = 1
		}
	}
}

// Intensity returns the value for an emotion name (aliases accepted);
// unknown names read as zero.
func (v Vector) Intensity(name string) float64 {
	idx, ok := Index(name)
	if !ok || len(v) != Dim {
		return 0
	}
	return v[idx]
}

// Dominant returns the highest-intensity axis. ok is false for the all-zero
// vector so callers can apply their default-emotion policy explicitly.
func (v Vector) Dominant() (string, bool) {
	if len(v) != Dim {
		return "", false
	}
	best := -1
	bestValue := 0.0
	for i, value := range v {
		if value > bestValue {
			best = i
			bestValue = value
		}
	}
	if best < 0 {
		return "", false
	}
	return taxonomy[best], true
}

// Builder turns emotion→intensity maps into validated vectors.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder constructs a Builder. A nil logger is replaced with a no-op.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logging.NewComponentLogger(logger, "emotion")}
}

// FromIntensities builds a vector from a name→intensity map. Unknown names
// are skipped silently per the taxonomy contract; out-of-range intensities
// are clamped. An empty or nil map yields the zero vector.
func (b *Builder) FromIntensities(intensities map[string]float64) Vector {
	v := Zero()
	ignored := 0
	for name, value := range intensities {
		idx, ok := Index(name)
		if !ok {
			ignored++
			continue
		}
		if value < 0 {
			value = 0
		} else if value > 1 {
			value = 1
		}
		v[idx] = value
	}
	if ignored > 0 && b.logger != nil {
		b.logger.Debug("ignored unknown emotion names", logging.Int("count", ignored))
	}
	return v
}

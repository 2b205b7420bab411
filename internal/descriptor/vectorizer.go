package descriptor

import (
	"math"
	"strings"

	"attune/internal/templates"
)

// Axis indices into a Vector.
const (
	AxisTempo = iota
	AxisTonality
	AxisDynamics
	AxisIntensity
	AxisInstrumentation
	AxisTexture

	Axes
)

var axisNames = [Axes]string{
	"tempo",
	"tonality",
	"dynamics",
	"intensity",
	"instrumentation",
	"texture",
}

// AxisName returns the label for an axis index, or "" when out of range.
func AxisName(i int) string {
	if i < 0 || i >= Axes {
		return ""
	}
	return axisNames[i]
}

// Vector holds one value per axis, L2-normalized unless all axes are zero.
type Vector []float64

type tableEntry struct {
	keyword string
	value   float64
}

// Scan order matters: the first keyword found in the descriptor wins.
var tempoTable = []tableEntry{
	{"slow", 0.2}, {"deeply", 0.1}, {"profound", 0.1},
	{"moderate", 0.5}, {"gradually", 0.4}, {"natural", 0.5},
	{"fast", 0.8}, {"urgent", 0.9}, {"agitated", 0.85},
	{"tired", 0.25}, {"sluggish", 0.2}, {"gentle", 0.3},
	{"smooth", 0.4}, {"flowing", 0.45}, {"weightless", 0.15},
}

var dynamicsTable = []tableEntry{
	{"whisper", 0.1}, {"gentle", 0.2}, {"soft", 0.25},
	{"restless", 0.7}, {"sharp", 0.8}, {"heavy", 0.6},
	{"compressed", 0.75}, {"embracing", 0.3}, {"peaceful", 0.2},
	{"expanding", 0.5}, {"free", 0.4},
}

// intensityTable is max-accumulated rather than first-match: every
// keyword present in the mood raises the floor.
var intensityTable = []tableEntry{
	{"deep", 0.8}, {"profound", 0.9}, {"transcendent", 1.0},
	{"anxiety", 0.7}, {"stress", 0.8}, {"overload", 0.9},
	{"exhausted", 0.6}, {"fatigue", 0.5}, {"tired", 0.4},
	{"irritated", 0.7}, {"angry", 0.8}, {"calm", 0.3},
	{"peace", 0.2}, {"tranquil", 0.25}, {"serene", 0.2},
}

var textureTable = []tableEntry{
	{"minimal", 0.1}, {"simple", 0.2}, {"spacious", 0.2},
	{"complex", 0.8}, {"layered", 0.7}, {"polyphonic", 0.9},
	{"angular", 0.6}, {"flowing", 0.4}, {"smooth", 0.3},
	{"balanced", 0.5}, {"compressed", 0.7}, {"intense", 0.8},
}

var (
	complexFamilies = []string{"percussion", "brass", "strings"}
	simpleFamilies  = []string{"piano", "ambient", "pads"}
)

// FromStage projects a stage descriptor bundle onto the six axes and
// L2-normalizes the result.
func FromStage(stage templates.Stage) Vector {
	v := Vector{
		tempoValue(stage.Tempo),
		tonalityValue(stage.Key),
		dynamicsValue(stage.Dynamics),
		moodIntensity(stage.Mood),
		instrumentComplexity(stage.Instrumentation),
		textureComplexity(stage.Texture),
	}
	return Normalize(v)
}

// Normalize scales v to unit length. The zero vector has no direction
// and is returned unchanged.
func Normalize(v Vector) Vector {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func scanTable(table []tableEntry, desc string, fallback float64) float64 {
	desc = strings.ToLower(desc)
	for _, e := range table {
		if strings.Contains(desc, e.keyword) {
			return e.value
		}
	}
	return fallback
}

func tempoValue(desc string) float64 {
	return scanTable(tempoTable, desc, 0.5)
}

// tonalityValue maps minor keys toward the low (negative-affect) end of
// the axis and major keys toward the high end, refined by the coloring
// adjective when one is present.
func tonalityValue(desc string) float64 {
	desc = strings.ToLower(desc)
	switch {
	case strings.Contains(desc, "minor"):
		switch {
		case strings.Contains(desc, "anxious"), strings.Contains(desc, "tense"):
			return 0.2
		case strings.Contains(desc, "weary"):
			return 0.25
		}
		return 0.3
	case strings.Contains(desc, "major"):
		switch {
		case strings.Contains(desc, "calm"):
			return 0.7
		case strings.Contains(desc, "warm"):
			return 0.75
		}
		return 0.6
	}
	return 0.5
}

func dynamicsValue(desc string) float64 {
	return scanTable(dynamicsTable, desc, 0.4)
}

func moodIntensity(desc string) float64 {
	desc = strings.ToLower(desc)
	intensity := 0.5
	for _, e := range intensityTable {
		if strings.Contains(desc, e.keyword) && e.value > intensity {
			intensity = e.value
		}
	}
	return intensity
}

// instrumentComplexity scores a comma-separated instrument list: 0.2
// per entry, plus 0.3 for each complex family mention or 0.1 for each
// simple one, capped at 1.
func instrumentComplexity(desc string) float64 {
	if desc == "" {
		return 0.5
	}
	parts := strings.Split(strings.ToLower(desc), ",")
	complexity := float64(len(parts)) * 0.2
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch {
		case containsAny(part, complexFamilies):
			complexity += 0.3
		case containsAny(part, simpleFamilies):
			complexity += 0.1
		}
	}
	return math.Min(complexity, 1.0)
}

func textureComplexity(desc string) float64 {
	return scanTable(textureTable, desc, 0.5)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

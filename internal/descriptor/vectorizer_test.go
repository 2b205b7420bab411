package descriptor

import (
	"math"
	"testing"

	"attune/internal/templates"
)

func TestTempoValue(t *testing.T) {
	tests := []struct {
		desc string
		want float64
	}{
		{"moderate tense", 0.5},
		{"slow peaceful", 0.2},
		{"pressured urgent", 0.9},
		{"tired sluggish", 0.25},
		{"profound stillness", 0.1},
		{"weightless floating", 0.15},
		{"gently flowing", 0.45},
		{"smoothing out", 0.4},
		{"", 0.5},
		{"syncopated shuffle", 0.5},
	}

	for _, tt := range tests {
		if got := tempoValue(tt.desc); got != tt.want {
			t.Errorf("tempoValue(%q) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestTempoValueFirstMatchWins(t *testing.T) {
	// "slow" precedes "urgent" in the scan order.
	if got := tempoValue("slow urgent"); got != 0.2 {
		t.Errorf("tempoValue(slow urgent) = %v, want 0.2", got)
	}
}

func TestTonalityValue(t *testing.T) {
	tests := []struct {
		desc string
		want float64
	}{
		{"minor anxious", 0.2},
		{"tense minor", 0.2},
		{"minor weary", 0.25},
		{"minor to neutral transition", 0.3},
		{"dissonant minor", 0.3},
		{"major calm", 0.7},
		{"warm major", 0.75},
		{"resolved major", 0.6},
		{"deep major", 0.6},
		{"neutral peaceful", 0.5},
		{"", 0.5},
	}

	for _, tt := range tests {
		if got := tonalityValue(tt.desc); got != tt.want {
			t.Errorf("tonalityValue(%q) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestDynamicsValue(t *testing.T) {
	tests := []struct {
		desc string
		want float64
	}{
		{"restless energy", 0.7},
		{"whisper soft", 0.1},
		{"gentle soft", 0.2},
		{"compressed energy", 0.75},
		{"embracing comfort", 0.3},
		{"heavy fatigue", 0.6},
		{"free flowing", 0.4},
		{"settling down", 0.4},
	}

	for _, tt := range tests {
		if got := dynamicsValue(tt.desc); got != tt.want {
			t.Errorf("dynamicsValue(%q) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestDynamicsValueFirstMatchWins(t *testing.T) {
	// "expanding" precedes "free", and "freedom" still matches "free".
	if got := dynamicsValue("expanding freedom"); got != 0.5 {
		t.Errorf("dynamicsValue(expanding freedom) = %v, want 0.5", got)
	}
}

func TestMoodIntensity(t *testing.T) {
	tests := []struct {
		desc string
		want float64
	}{
		{"matching anxiety", 0.7},
		{"stress overload", 0.9},
		{"exhausted state", 0.6},
		{"deep relaxation for sleep", 0.8},
		{"transcendent sleep", 1.0},
		{"irritated energy", 0.7},
		// Calming keywords sit below the 0.5 floor and never lower it.
		{"serene sleep state", 0.5},
		{"existing tranquility", 0.5},
		{"guiding to peace", 0.5},
		{"", 0.5},
	}

	for _, tt := range tests {
		if got := moodIntensity(tt.desc); got != tt.want {
			t.Errorf("moodIntensity(%q) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestMoodIntensityTakesMax(t *testing.T) {
	if got := moodIntensity("deep transcendent calm"); got != 1.0 {
		t.Errorf("moodIntensity(deep transcendent calm) = %v, want 1.0", got)
	}
}

func TestInstrumentComplexity(t *testing.T) {
	tests := []struct {
		desc string
		want float64
	}{
		{"", 0.5},
		{"strings, piano", 0.8},
		{"tight strings, muted brass", 1.0},
		{"staccato strings, percussion", 1.0},
		{"soft piano, ambient", 0.6},
		{"ambient pads, nature", 0.5},
		{"cello, low piano", 0.5},
		{"pure tones, silence", 0.4},
		{"ambient pads", 0.3},
	}

	for _, tt := range tests {
		got := instrumentComplexity(tt.desc)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("instrumentComplexity(%q) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestTextureComplexity(t *testing.T) {
	tests := []struct {
		desc string
		want float64
	}{
		{"complex, layered", 0.8},
		{"minimal, spacious", 0.1},
		{"compressed, intense", 0.7},
		{"balanced, serene", 0.5},
		{"angular, restless", 0.6},
		// "flowing" precedes "smooth" in the scan order.
		{"smoothing, flowing", 0.4},
		// "simplifying" does not contain "simple".
		{"simplifying", 0.5},
		{"heavy, dragging", 0.5},
		{"", 0.5},
	}

	for _, tt := range tests {
		if got := textureComplexity(tt.desc); got != tt.want {
			t.Errorf("textureComplexity(%q) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestFromStageUnitNorm(t *testing.T) {
	stage := templates.Stage{
		Tempo:           "moderate tense",
		Key:             "minor anxious",
		Dynamics:        "restless energy",
		Mood:            "matching anxiety",
		Instrumentation: "strings, piano",
		Texture:         "complex, layered",
	}

	v := FromStage(stage)
	if len(v) != Axes {
		t.Fatalf("FromStage returned %d axes, want %d", len(v), Axes)
	}

	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-9 {
		t.Errorf("norm = %v, want 1.0", math.Sqrt(sum))
	}
}

func TestFromStageAxisOrdering(t *testing.T) {
	stage := templates.Stage{
		Tempo:           "moderate tense",
		Key:             "minor anxious",
		Dynamics:        "restless energy",
		Mood:            "matching anxiety",
		Instrumentation: "strings, piano",
		Texture:         "complex, layered",
	}

	v := FromStage(stage)
	if v[AxisTonality] >= v[AxisTempo] {
		t.Errorf("tonality %v should rank below tempo %v for an anxious minor key", v[AxisTonality], v[AxisTempo])
	}
	if v[AxisTexture] <= v[AxisDynamics] {
		t.Errorf("texture %v should rank above dynamics %v for a complex layered texture", v[AxisTexture], v[AxisDynamics])
	}
}

func TestFromStageCalmTargetIsQuiet(t *testing.T) {
	stage := templates.Stage{
		Tempo:           "profound stillness",
		Key:             "deep major",
		Dynamics:        "whisper soft",
		Mood:            "transcendent sleep",
		Instrumentation: "pure tones, silence",
		Texture:         "minimal, transcendent",
	}

	v := FromStage(stage)
	// Whisper dynamics and minimal texture pin both axes to the bottom
	// of the space while the transcendent mood dominates.
	if v[AxisDynamics] >= v[AxisIntensity] {
		t.Errorf("dynamics %v should rank below intensity %v", v[AxisDynamics], v[AxisIntensity])
	}
	if v[AxisTexture] >= v[AxisTonality] {
		t.Errorf("texture %v should rank below tonality %v", v[AxisTexture], v[AxisTonality])
	}
}

func TestFromStageDeterministic(t *testing.T) {
	stage := templates.Stage{
		Tempo:           "tired sluggish",
		Key:             "minor weary",
		Dynamics:        "heavy fatigue",
		Mood:            "exhausted state",
		Instrumentation: "cello, low piano",
		Texture:         "heavy, dragging",
	}

	a := FromStage(stage)
	b := FromStage(stage)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("axis %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	v := Normalize(Vector{0, 0, 0, 0, 0, 0})
	for i, x := range v {
		if x != 0 {
			t.Errorf("axis %d = %v, want 0", i, x)
		}
	}
}

func TestAxisName(t *testing.T) {
	if got := AxisName(AxisTempo); got != "tempo" {
		t.Errorf("AxisName(AxisTempo) = %q, want tempo", got)
	}
	if got := AxisName(Axes); got != "" {
		t.Errorf("AxisName(out of range) = %q, want empty", got)
	}
	if got := AxisName(-1); got != "" {
		t.Errorf("AxisName(-1) = %q, want empty", got)
	}
}

package templates

// StageName identifies one of the three ISO stages.
type StageName string

const (
	StageMatch  StageName = "match"
	StageGuide  StageName = "guide"
	StageTarget StageName = "target"
)

// ISOStageRatio is the leading fraction of a candidate segment whose
// features represent the match stage. Extraction analyzes the same fraction
// so template and candidate describe the same slice of audio.
const ISOStageRatio = 0.25

// Stage is one qualitative descriptor bundle.
type Stage struct {
	Tempo           string `json:"tempo"`
	Key             string `json:"key"`
	Dynamics        string `json:"dynamics"`
	Mood            string `json:"mood"`
	Instrumentation string `json:"instrumentation"`
	Texture         string `json:"texture"`
}

// Template is the full three-stage bundle for one emotion.
type Template struct {
	Emotion string `json:"emotion"`
	Match   Stage  `json:"match"`
	Guide   Stage  `json:"guide"`
	Target  Stage  `json:"target"`
}

// Stages returns the bundle in ISO order.
func (t Template) Stages() [3]Stage {
	return [3]Stage{t.Match, t.Guide, t.Target}
}

// Stage returns the named stage; unknown names read as the match stage.
func (t Template) Stage(name StageName) Stage {
	switch name {
	case StageGuide:
		return t.Guide
	case StageTarget:
		return t.Target
	default:
		return t.Match
	}
}

// StageInfo tags a stage with retrieval metadata.
type StageInfo struct {
	Emotion     string    `json:"emotion"`
	Stage       StageName `json:"stage"`
	Ratio       float64   `json:"ratio"`
	Descriptors Stage     `json:"descriptors"`
}

// DefaultCategory is the base category used when no stem matches an unknown
// emotion, and the policy target for all-zero emotion vectors.
const DefaultCategory = "anxiety"

// BaseCategories lists the explicitly authored emotion categories in
// definition order.
var BaseCategories = []string{"anxiety", "fatigue", "restlessness", "calm", "stress"}

var baseTemplates = map[string]Template{
	"anxiety": {
		Emotion: "anxiety",
		Match: Stage{
			Tempo:           "moderate tense",
			Key:             "minor anxious",
			Dynamics:        "restless energy",
			Mood:            "matching anxiety",
			Instrumentation: "strings, piano",
			Texture:         "complex, layered",
		},
		Guide: Stage{
			Tempo:           "gradually calming",
			Key:             "minor to neutral transition",
			Dynamics:        "settling down",
			Mood:            "guiding to peace",
			Instrumentation: "soft piano, ambient",
			Texture:         "simplifying",
		},
		Target: Stage{
			Tempo:           "slow peaceful",
			Key:             "major calm",
			Dynamics:        "gentle soft",
			Mood:            "deep relaxation for sleep",
			Instrumentation: "ambient pads, nature",
			Texture:         "minimal, spacious",
		},
	},
	"fatigue": {
		Emotion: "fatigue",
		Match: Stage{
			Tempo:           "tired sluggish",
			Key:             "minor weary",
			Dynamics:        "heavy fatigue",
			Mood:            "exhausted state",
			Instrumentation: "cello, low piano",
			Texture:         "heavy, dragging",
		},
		Guide: Stage{
			Tempo:           "gentle restoration",
			Key:             "minor to warm transition",
			Dynamics:        "nurturing support",
			Mood:            "healing tiredness",
			Instrumentation: "warm strings, harp",
			Texture:         "supportive, embracing",
		},
		Target: Stage{
			Tempo:           "deeply restful",
			Key:             "warm major",
			Dynamics:        "embracing comfort",
			Mood:            "restorative sleep",
			Instrumentation: "soft choir, ambient",
			Texture:         "enveloping, safe",
		},
	},
	"restlessness": {
		Emotion: "restlessness",
		Match: Stage{
			Tempo:           "agitated irregular",
			Key:             "dissonant minor",
			Dynamics:        "sharp edges",
			Mood:            "irritated energy",
			Instrumentation: "staccato strings, percussion",
			Texture:         "angular, restless",
		},
		Guide: Stage{
			Tempo:           "smoothing out",
			Key:             "resolving tensions",
			Dynamics:        "softening edges",
			Mood:            "releasing irritation",
			Instrumentation: "flowing strings, woodwinds",
			Texture:         "smoothing, flowing",
		},
		Target: Stage{
			Tempo:           "smooth flowing",
			Key:             "resolved major",
			Dynamics:        "peaceful waves",
			Mood:            "serene sleep state",
			Instrumentation: "soft pads, gentle waves",
			Texture:         "fluid, peaceful",
		},
	},
	"calm": {
		Emotion: "calm",
		Match: Stage{
			Tempo:           "naturally calm",
			Key:             "neutral peaceful",
			Dynamics:        "already gentle",
			Mood:            "existing tranquility",
			Instrumentation: "soft piano, strings",
			Texture:         "balanced, serene",
		},
		Guide: Stage{
			Tempo:           "deepening calm",
			Key:             "enriching peace",
			Dynamics:        "expanding serenity",
			Mood:            "enhancing stillness",
			Instrumentation: "ambient, soft choir",
			Texture:         "expanding, deepening",
		},
		Target: Stage{
			Tempo:           "profound stillness",
			Key:             "deep major",
			Dynamics:        "whisper soft",
			Mood:            "transcendent sleep",
			Instrumentation: "pure tones, silence",
			Texture:         "minimal, transcendent",
		},
	},
	"stress": {
		Emotion: "stress",
		Match: Stage{
			Tempo:           "pressured urgent",
			Key:             "tense minor",
			Dynamics:        "compressed energy",
			Mood:            "stress overload",
			Instrumentation: "tight strings, muted brass",
			Texture:         "compressed, intense",
		},
		Guide: Stage{
			Tempo:           "releasing pressure",
			Key:             "opening up space",
			Dynamics:        "expanding freedom",
			Mood:            "letting go stress",
			Instrumentation: "opening brass, flowing strings",
			Texture:         "expanding, liberating",
		},
		Target: Stage{
			Tempo:           "weightless floating",
			Key:             "liberated major",
			Dynamics:        "free flowing",
			Mood:            "stress-free sleep",
			Instrumentation: "ambient space, soft pads",
			Texture:         "weightless, free",
		},
	},
}

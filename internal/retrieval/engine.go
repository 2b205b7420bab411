package retrieval

import (
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"

	"attune/internal/descriptor"
	"attune/internal/features"
	"attune/internal/logging"
	"attune/internal/services"
	"attune/internal/templates"
)

const component = "retrieval"

const (
	// DefaultTopK is how many matches Rank returns when the caller
	// does not ask for a specific count.
	DefaultTopK = 5
	// DefaultMinSimilarity is the score floor below which candidates
	// are considered unrelated to the emotion and dropped.
	DefaultMinSimilarity = 0.1
)

// Source supplies the candidate records to rank. The feature cache
// satisfies this.
type Source interface {
	List() []features.Record
}

// Scorer computes template-to-candidate similarity on the shared
// descriptor axes.
type Scorer interface {
	Score(template descriptor.Vector, rec features.Record) float64
}

// Match pairs a candidate with its similarity to the requested
// emotion.
type Match struct {
	Record features.Record
	Score  float64
}

// Config assembles an Engine.
type Config struct {
	Templates *templates.Store
	Scorer    Scorer
	Source    Source

	// TopK caps Rank results when the caller passes no explicit
	// count. Zero or negative means DefaultTopK.
	TopK int
	// MinSimilarity is the score floor. Zero means
	// DefaultMinSimilarity; a negative value disables the floor.
	MinSimilarity float64

	// Rand drives PickRandom. Nil uses the shared global source.
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Engine ranks extracted candidates against per-emotion match-stage
// vectors. Safe for concurrent use.
type Engine struct {
	store  *templates.Store
	scorer Scorer
	source Source
	logger *slog.Logger

	topK   int
	minSim float64

	mu      sync.Mutex
	vectors map[string]descriptor.Vector

	randMu sync.Mutex
	rng    *rand.Rand
}

// NewEngine validates cfg and builds an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Templates == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "template store is required", nil)
	}
	if cfg.Scorer == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "scorer is required", nil)
	}
	if cfg.Source == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "candidate source is required", nil)
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	minSim := cfg.MinSimilarity
	if minSim == 0 {
		minSim = DefaultMinSimilarity
	}
	return &Engine{
		store:   cfg.Templates,
		scorer:  cfg.Scorer,
		source:  cfg.Source,
		logger:  logging.NewComponentLogger(cfg.Logger, component),
		topK:    topK,
		minSim:  minSim,
		vectors: make(map[string]descriptor.Vector),
		rng:     cfg.Rand,
	}, nil
}

// Rank scores every candidate against the emotion's match-stage
// vector and returns at most topK matches at or above the similarity
// floor, best first. topK <= 0 means the configured default. Ties
// keep source order, so a deterministic source yields deterministic
// rankings.
func (e *Engine) Rank(emotion string, topK int) []Match {
	if topK <= 0 {
		topK = e.topK
	}
	records := e.source.List()
	if len(records) == 0 {
		logging.WarnWithContext(e.logger, "no candidates available", "retrieval_empty",
			logging.String(logging.FieldEmotion, emotion),
			logging.String(logging.FieldErrorHint, "extract features from a media library first"),
			logging.String(logging.FieldImpact, "nothing can be recommended"))
		return nil
	}
	template := e.templateVector(emotion)
	matches := make([]Match, 0, len(records))
	for _, rec := range records {
		score := e.scorer.Score(template, rec)
		if score >= e.minSim {
			matches = append(matches, Match{Record: rec, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	e.logger.Debug("ranked candidates",
		logging.Args(
			logging.String(logging.FieldEmotion, emotion),
			logging.Int("considered", len(records)),
			logging.Int("returned", len(matches)),
		)...)
	return matches
}

// PickRandom ranks candidates for the emotion and draws one uniformly
// from the result, trading a little similarity for session variety.
// The second return is false when nothing clears the floor.
func (e *Engine) PickRandom(emotion string, topK int) (Match, bool) {
	matches := e.Rank(emotion, topK)
	if len(matches) == 0 {
		return Match{}, false
	}
	pick := matches[e.intn(len(matches))]
	e.logger.Info("selected candidate",
		logging.Args(
			logging.String(logging.FieldEmotion, emotion),
			logging.String(logging.FieldSegment, pick.Record.Path),
			logging.Float64("score", pick.Score),
			logging.Int("pool", len(matches)),
		)...)
	return pick, true
}

// Stats summarizes the engine's retrieval surface for status output.
type Stats struct {
	Candidates    int     `json:"candidates"`
	Emotions      int     `json:"emotions"`
	TopK          int     `json:"top_k"`
	MinSimilarity float64 `json:"min_similarity"`
}

func (e *Engine) Stats() Stats {
	return Stats{
		Candidates:    len(e.source.List()),
		Emotions:      len(e.store.Known()),
		TopK:          e.topK,
		MinSimilarity: e.minSim,
	}
}

// templateVector returns the match-stage vector for the emotion,
// building it on first use. Keyed by canonical emotion so aliases in
// other languages share one entry.
func (e *Engine) templateVector(emotion string) descriptor.Vector {
	info := e.store.MatchStage(emotion)
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.vectors[info.Emotion]; ok {
		return v
	}
	v := descriptor.FromStage(info.Descriptors)
	e.vectors[info.Emotion] = v
	return v
}

// rand.Rand is not safe for concurrent use, so injected sources are
// serialized here.
func (e *Engine) intn(n int) int {
	if e.rng == nil {
		return rand.IntN(n)
	}
	e.randMu.Lock()
	defer e.randMu.Unlock()
	return e.rng.IntN(n)
}

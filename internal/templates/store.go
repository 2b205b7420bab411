package templates

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"attune/internal/emotion"
	"attune/internal/logging"
)

// sleepEmotions are synthesized at construction so the store starts with the
// full sleep-support vocabulary; any other unknown emotion synthesizes
// lazily on first lookup.
var sleepEmotions = []string{
	"rumination",
	"sleep anxiety",
	"physical fatigue",
	"mental fatigue",
	"hyperarousal",
	"bedtime worry",
	"racing thoughts",
	"somatic tension",
}

// stemRules categorize unknown emotions onto base categories. Scan order
// matters: the first rule with a matching stem wins.
var stemRules = []struct {
	category string
	stems    []string
}{
	{"anxiety", []string{"anxiety", "anxious", "worry", "焦虑", "担忧"}},
	{"fatigue", []string{"fatigue", "疲惫"}},
	{"restlessness", []string{"arousal", "racing", "觉醒", "奔逸"}},
	{"stress", []string{"tension", "tense", "紧张"}},
}

// Store resolves emotions to their three-stage templates. Lookups never
// fail: unknown emotions synthesize a template from the nearest base
// category once and reuse it afterwards.
type Store struct {
	logger *slog.Logger

	mu        sync.RWMutex
	templates map[string]Template
}

// NewStore builds a store seeded with the base categories and the sleep
// vocabulary. A nil logger is replaced with a no-op.
func NewStore(logger *slog.Logger) *Store {
	s := &Store{
		logger:    logging.NewComponentLogger(logger, "templates"),
		templates: make(map[string]Template, len(baseTemplates)+len(sleepEmotions)),
	}
	for name, tpl := range baseTemplates {
		s.templates[name] = tpl
	}
	for _, emotion := range sleepEmotions {
		s.templates[emotion] = s.synthesize(emotion)
	}
	return s
}

// Get returns the template for an emotion, synthesizing and caching one for
// unknown emotions. Repeated calls for the same emotion always return the
// same template.
func (s *Store) Get(emotion string) Template {
	key := normalizeEmotion(emotion)
	if key == "" {
		key = DefaultCategory
	}

	s.mu.RLock()
	tpl, ok := s.templates[key]
	s.mu.RUnlock()
	if ok {
		return tpl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tpl, ok := s.templates[key]; ok {
		return tpl
	}
	tpl = s.synthesize(key)
	s.templates[key] = tpl
	s.logger.Debug("synthesized template",
		logging.String(logging.FieldEmotion, key),
		logging.String("base_category", categorize(key)))
	return tpl
}

// MatchStage returns the match-stage descriptors tagged with the ISO ratio
// contract consumed by feature extraction.
func (s *Store) MatchStage(emotion string) StageInfo {
	tpl := s.Get(emotion)
	return StageInfo{
		Emotion:     tpl.Emotion,
		Stage:       StageMatch,
		Ratio:       ISOStageRatio,
		Descriptors: tpl.Match,
	}
}

// Known returns every emotion the store currently holds a template for, in
// sorted order.
func (s *Store) Known() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.templates))
	for name := range s.templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// synthesize builds a derived template: deep-copy the categorized base and
// rewrite each stage's mood to reference the derived emotion.
func (s *Store) synthesize(emotion string) Template {
	base := baseTemplates[categorize(emotion)]
	derived := Template{
		Emotion: emotion,
		Match:   rewriteMood(base.Match, emotion),
		Guide:   rewriteMood(base.Guide, emotion),
		Target:  rewriteMood(base.Target, emotion),
	}
	return derived
}

func rewriteMood(stage Stage, emotion string) Stage {
	stage.Mood = emotion + " - " + stage.Mood
	return stage
}

// categorize maps an unknown emotion onto a base category by stem matching,
// defaulting to anxiety.
func categorize(emotion string) string {
	for _, rule := range stemRules {
		for _, stem := range rule.stems {
			if strings.Contains(emotion, stem) {
				return rule.category
			}
		}
	}
	return DefaultCategory
}

// categoryAliases covers template categories that are not taxonomy axes and
// therefore have no alias entry in the emotion package.
var categoryAliases = map[string]string{
	"疲惫": "fatigue",
	"烦躁": "restlessness",
}

// normalizeEmotion lowercases and resolves aliases so Chinese input (for
// example 焦虑) lands on the same template as its canonical name.
func normalizeEmotion(name string) string {
	canon, _ := emotion.Canonical(name)
	canon = strings.ToLower(strings.TrimSpace(canon))
	if mapped, ok := categoryAliases[canon]; ok {
		return mapped
	}
	return canon
}

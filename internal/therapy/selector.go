package therapy

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"attune/internal/features"
	"attune/internal/logging"
	"attune/internal/retrieval"
	"attune/internal/services"
	"attune/internal/templates"
)

const component = "therapy"

// DefaultHistoryLimit bounds the in-memory selection history when the
// caller does not configure one.
const DefaultHistoryLimit = 50

// Classifier maps free text onto an emotion label with a confidence
// estimate. The emotion package's keyword classifier satisfies this.
type Classifier interface {
	Classify(text string) (string, float64)
}

// Picker draws one candidate from the best matches for an emotion. The
// retrieval engine satisfies this.
type Picker interface {
	PickRandom(emotion string, topK int) (retrieval.Match, bool)
}

// Selection is one recorded therapy pick. It carries the diagnosis, the
// chosen segment, and the full ISO template so a player has the whole
// session arc in hand.
type Selection struct {
	ID         string    `json:"selection_id"`
	SelectedAt time.Time `json:"selected_at"`
	UserInput  string    `json:"user_input,omitempty"`

	Emotion    string  `json:"detected_emotion"`
	Confidence float64 `json:"emotion_confidence"`

	SegmentPath string  `json:"video_path"`
	SegmentName string  `json:"video_name"`
	Score       float64 `json:"similarity_score"`
	// Duration is the analyzed audio window in seconds. Zero when the
	// record carries no statistical payload.
	Duration float64 `json:"therapy_duration"`

	Stage      templates.StageName `json:"therapy_stage"`
	StageRatio float64             `json:"stage_ratio"`
	Template   templates.Template  `json:"iso_template"`

	Record features.Record `json:"features"`
}

// Config assembles a Selector.
type Config struct {
	Classifier Classifier
	Picker     Picker
	Templates  *templates.Store

	// TopK is the candidate pool size handed to the picker. Zero or
	// negative means the retrieval default.
	TopK int
	// HistoryLimit caps the selection history. Zero means
	// DefaultHistoryLimit; a negative value keeps history unbounded.
	HistoryLimit int

	Logger *slog.Logger
}

// Selector runs the diagnose-then-retrieve loop and records every pick.
// Safe for concurrent use.
type Selector struct {
	classifier Classifier
	picker     Picker
	store      *templates.Store
	logger     *slog.Logger

	topK  int
	limit int

	mu      sync.Mutex
	history []Selection
}

// NewSelector validates cfg and builds a Selector.
func NewSelector(cfg Config) (*Selector, error) {
	if cfg.Classifier == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "classifier is required", nil)
	}
	if cfg.Picker == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "picker is required", nil)
	}
	if cfg.Templates == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "template store is required", nil)
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	limit := cfg.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	return &Selector{
		classifier: cfg.Classifier,
		picker:     cfg.Picker,
		store:      cfg.Templates,
		logger:     logging.NewComponentLogger(cfg.Logger, component),
		topK:       topK,
		limit:      limit,
	}, nil
}

// Select classifies the user's description and picks a matching
// segment. A nil Selection with a nil error means no candidate cleared
// the similarity floor.
func (s *Selector) Select(userInput string) (*Selection, error) {
	emotion, confidence := s.classifier.Classify(userInput)
	s.logger.Debug("classified input",
		logging.String(logging.FieldEmotion, emotion),
		logging.Float64("confidence", confidence))
	return s.selectFor(userInput, emotion, confidence)
}

// SelectForEmotion skips classification for callers that already know
// the emotion, such as a session runner replaying a diagnosis. The
// label may be an alias; templates and retrieval fold it to canonical
// form. Returns nil, nil when no candidate cleared the floor.
func (s *Selector) SelectForEmotion(emotion string, confidence float64) (*Selection, error) {
	return s.selectFor("", emotion, confidence)
}

func (s *Selector) selectFor(userInput, emotion string, confidence float64) (*Selection, error) {
	match, ok := s.picker.PickRandom(emotion, s.topK)
	if !ok {
		logging.WarnWithContext(s.logger, "no segment matched the detected emotion", "selection_empty",
			logging.String(logging.FieldEmotion, emotion),
			logging.String(logging.FieldErrorHint, "extract features from more media or lower the similarity floor"),
			logging.String(logging.FieldImpact, "no therapy session can start"))
		return nil, nil
	}

	info := s.store.MatchStage(emotion)
	sel := Selection{
		ID:          uuid.NewString(),
		SelectedAt:  time.Now().UTC(),
		UserInput:   userInput,
		Emotion:     info.Emotion,
		Confidence:  confidence,
		SegmentPath: match.Record.Path,
		SegmentName: match.Record.Name,
		Score:       match.Score,
		Stage:       info.Stage,
		StageRatio:  info.Ratio,
		Template:    s.store.Get(emotion),
		Record:      match.Record,
	}
	if match.Record.Statistical != nil {
		sel.Duration = match.Record.Statistical.Duration
	}

	s.mu.Lock()
	s.history = append(s.history, sel)
	if s.limit > 0 && len(s.history) > s.limit {
		s.history = append(s.history[:0], s.history[1:]...)
	}
	s.mu.Unlock()

	s.logger.Info("therapy segment selected",
		logging.Args(
			logging.String("selection_id", sel.ID),
			logging.String(logging.FieldEmotion, sel.Emotion),
			logging.String(logging.FieldSegment, sel.SegmentPath),
			logging.Float64("score", sel.Score),
			logging.Float64("confidence", sel.Confidence),
		)...)
	return &sel, nil
}

// History returns a copy of the recorded selections, oldest first.
func (s *Selector) History() []Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Selection, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory drops all recorded selections.
func (s *Selector) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.logger.Debug("selection history cleared")
}

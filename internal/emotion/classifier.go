package emotion

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"attune/internal/logging"
)

// Default classification outcomes. Short or unmatched input resolves to
// anxiety, the designated default category of the template store.
const (
	DefaultLabel = "anxiety"

	defaultShortConfidence   = 0.85
	defaultNoMatchConfidence = 0.80
	baseConfidence           = 0.85
	confidencePerScore       = 0.03
	maxConfidence            = 0.95
)

type keywordSet struct {
	label    string
	keywords []string
}

// baseKeywordSets covers the five template categories. Order matters: ties
// resolve to the earliest set.
var baseKeywordSets = []keywordSet{
	{"anxiety", []string{
		"焦虑", "紧张", "担心", "不安", "害怕", "恐惧", "心跳", "忐忑", "惶恐",
		"anxious", "anxiety", "nervous", "worried", "worry", "uneasy", "afraid", "panicky",
	}},
	{"fatigue", []string{
		"疲惫", "累", "疲劳", "困倦", "乏力", "无力", "疲倦", "困", "精疲力竭",
		"tired", "exhausted", "fatigued", "drained", "weary", "sleepy", "worn out",
	}},
	{"restlessness", []string{
		"烦躁", "烦恼", "易怒", "急躁", "不耐烦", "暴躁", "愤怒", "生气", "恼火",
		"restless", "irritable", "agitated", "impatient", "annoyed", "angry", "on edge",
	}},
	{"calm", []string{
		"平静", "放松", "安静", "宁静", "舒缓", "轻松", "安逸", "祥和", "淡定",
		"calm", "relaxed", "peaceful", "quiet", "serene", "at ease", "tranquil",
	}},
	{"stress", []string{
		"压力", "紧迫", "负担", "重压", "沉重", "压抑", "紧张", "负重", "喘不过气",
		"stress", "stressed", "pressure", "burden", "overwhelmed", "weighed down",
	}},
}

// sleepKeywordSets covers the sleep-specific derived emotions. They are
// consulted before the base sets: any sleep hit outranks base hits, so
// sleep-flavored phrasing routes to the sleep vocabulary.
var sleepKeywordSets = []keywordSet{
	{"rumination", []string{
		"反刍", "胡思乱想", "想太多", "思维循环", "钻牛角尖",
		"ruminating", "overthinking", "thought loop", "cant stop thinking",
	}},
	{"sleep anxiety", []string{
		"睡不着", "失眠", "睡眠焦虑", "怕睡不好", "担心睡眠",
		"insomnia", "cant sleep", "sleep anxiety", "afraid of not sleeping",
	}},
	{"physical fatigue", []string{
		"身体累", "肌肉酸痛", "体力不支", "身体沉重",
		"body aches", "sore muscles", "physically drained", "heavy limbs",
	}},
	{"mental fatigue", []string{
		"脑子累", "精神疲劳", "心累", "思维疲惫",
		"mentally exhausted", "brain fog", "mentally drained", "mind is tired",
	}},
	{"hyperarousal", []string{
		"太兴奋", "睡不下", "精神亢奋", "大脑活跃",
		"wired", "too excited", "keyed up", "mind wide awake",
	}},
	{"bedtime worry", []string{
		"睡前担心", "明天的事", "工作压力", "生活烦恼",
		"worrying before bed", "about tomorrow", "work stress", "life worries",
	}},
	{"racing thoughts", []string{
		"停不下来", "思绪飞转", "脑子转个不停", "想法很多",
		"racing thoughts", "thoughts spinning", "cant switch off", "so many thoughts",
	}},
	{"somatic tension", []string{
		"肌肉紧张", "身体僵硬", "无法放松", "绷得很紧",
		"muscle tension", "stiff body", "cant relax", "wound tight",
	}},
}

// Classifier scores free text against keyword sets and returns the dominant
// emotion label with a confidence estimate. It never fails: degenerate input
// falls back to the default label.
type Classifier struct {
	logger *slog.Logger
	folder cases.Caser
}

// NewClassifier constructs a Classifier. A nil logger is replaced with a
// no-op.
func NewClassifier(logger *slog.Logger) *Classifier {
	return &Classifier{
		logger: logging.NewComponentLogger(logger, "classifier"),
		folder: cases.Fold(),
	}
}

// Classify returns (label, confidence). Empty or sub-2-rune input maps to
// the default label at 0.85; text with no keyword hit maps to the default
// label at 0.80. Confidence otherwise grows with the match score and caps at
// 0.95.
func (c *Classifier) Classify(text string) (string, float64) {
	cleaned := c.normalize(text)
	if len([]rune(cleaned)) < 2 {
		return DefaultLabel, defaultShortConfidence
	}

	label, score := bestMatch(cleaned, sleepKeywordSets)
	if score == 0 {
		label, score = bestMatch(cleaned, baseKeywordSets)
	}
	if score == 0 {
		c.logger.Debug("no keyword match", logging.String("input", cleaned))
		return DefaultLabel, defaultNoMatchConfidence
	}

	confidence := baseConfidence + float64(score)*confidencePerScore
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return label, confidence
}

// bestMatch returns the highest-scoring set label. Ties resolve to the
// earliest set.
func bestMatch(text string, sets []keywordSet) (string, int) {
	bestLabel := ""
	bestScore := 0
	for _, set := range sets {
		score := scoreKeywords(text, set.keywords)
		if score > bestScore {
			bestLabel = set.label
			bestScore = score
		}
	}
	return bestLabel, bestScore
}

// normalize folds width and case, drops punctuation, and collapses runs of
// whitespace so keyword matching sees a uniform shape for mixed-script input.
func (c *Classifier) normalize(text string) string {
	folded := c.folder.String(width.Fold.String(text))
	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// scoreKeywords awards 2 points for an exact or word-boundary hit and 1 for
// a substring hit.
func scoreKeywords(text string, keywords []string) int {
	score := 0
	padded := " " + text + " "
	for _, keyword := range keywords {
		if !strings.Contains(text, keyword) {
			continue
		}
		if keyword == text || strings.Contains(padded, " "+keyword+" ") {
			score += 2
		} else {
			score++
		}
	}
	return score
}

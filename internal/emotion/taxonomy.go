package emotion

import "strings"

// Dim is the number of axes in the emotion taxonomy. The taxonomy order is
// part of the public contract: vector index i always refers to taxonomy[i].
const Dim = 27

// taxonomy lists the canonical axis names in contract order. Never reorder or
// rename entries; downstream vectors and persisted records depend on the
// index mapping.
var taxonomy = [Dim]string{
	"admiration",
	"aesthetic appreciation",
	"amusement",
	"anger",
	"anxiety",
	"awe",
	"boredom",
	"calm",
	"confusion",
	"craving",
	"disappointment",
	"disgust",
	"empathic pain",
	"entrancement",
	"envy",
	"excitement",
	"fear",
	"guilt",
	"interest",
	"joy",
	"nostalgia",
	"relief",
	"romance",
	"sadness",
	"satisfaction",
	"stress",
	"surprise",
}

// aliases maps accepted alternative spellings onto canonical names. Fatigue
// deliberately has no entry: it is a music-template category, not a taxonomy
// axis.
var aliases = map[string]string{
	"钦佩":   "admiration",
	"审美欣赏": "aesthetic appreciation",
	"娱乐":   "amusement",
	"愤怒":   "anger",
	"焦虑":   "anxiety",
	"敬畏":   "awe",
	"无聊":   "boredom",
	"平静":   "calm",
	"困惑":   "confusion",
	"渴望":   "craving",
	"失望":   "disappointment",
	"厌恶":   "disgust",
	"共情痛苦": "empathic pain",
	"入迷":   "entrancement",
	"嫉妒":   "envy",
	"兴奋":   "excitement",
	"恐惧":   "fear",
	"内疚":   "guilt",
	"兴趣":   "interest",
	"快乐":   "joy",
	"怀旧":   "nostalgia",
	"宽慰":   "relief",
	"浪漫":   "romance",
	"悲伤":   "sadness",
	"满足":   "satisfaction",
	"压力":   "stress",
	"惊讶":   "surprise",

	// English variants.
	"calmness":  "calm",
	"happiness": "joy",
	"stressed":  "stress",
}

var indexByName = func() map[string]int {
	m := make(map[string]int, Dim)
	for i, name := range taxonomy {
		m[name] = i
	}
	return m
}()

// Taxonomy returns a copy of the ordered canonical axis names.
func Taxonomy() []string {
	out := make([]string, Dim)
	copy(out, taxonomy[:])
	return out
}

// Name returns the canonical name for axis i, or "" when out of range.
func Name(i int) string {
	if i < 0 || i >= Dim {
		return ""
	}
	return taxonomy[i]
}

// Canonical resolves a possibly aliased emotion name to its canonical form.
// The second result reports whether the name belongs to the taxonomy.
func Canonical(name string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return "", false
	}
	if _, ok := indexByName[trimmed]; ok {
		return trimmed, true
	}
	if canon, ok := aliases[trimmed]; ok {
		return canon, true
	}
	return trimmed, false
}

// Index returns the axis index of an emotion name (aliases accepted). The
// second result is false for names outside the taxonomy.
func Index(name string) (int, bool) {
	canon, ok := Canonical(name)
	if !ok {
		return 0, false
	}
	idx, ok := indexByName[canon]
	return idx, ok
}

// Package retrieval ranks extracted candidates against emotion
// templates and picks playback candidates.
//
// The engine scores every record from its source against the target
// emotion's match-stage vector, drops candidates below the similarity
// floor, and returns the top k in descending score order. Selection
// adds controlled variety: PickRandom draws uniformly from the ranked
// set so repeated sessions for the same emotion do not always replay
// the single best segment.
//
// Match-stage vectors are derived lazily per canonical emotion and
// cached for the engine's lifetime; templates are immutable, so the
// cache never goes stale.
package retrieval

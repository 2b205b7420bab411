// Package templates holds the per-emotion music descriptor bundles that
// drive retrieval. Every emotion maps to exactly three stages following the
// ISO principle: match the listener's current state, guide it, then land on
// the target state.
//
// Five base categories carry hand-written descriptors. Any other emotion is
// synthesized deterministically from the nearest base category by keyword
// stems and cached, so repeated lookups always return the same template.
// Lookups never fail; emotions with no recognizable stem fall back to the
// anxiety category.
package templates

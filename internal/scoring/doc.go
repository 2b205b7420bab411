// Package scoring measures how well a candidate's audio features match
// a stage template vector.
//
// Candidates carry one of two feature payloads, and each projects onto
// the template's emotion space differently:
//
//   - statistical records map their analysis profile onto seven
//     bounded axes (tempo, energy, brightness, warmth, regularity,
//     centroid, dynamic range); the template space is six-dimensional,
//     so the trailing axis is cut after normalization
//   - embedding records are treated as an opaque sequence: summary
//     statistics over the vector (moments, quartiles, energy, an
//     index-weighted spectral centroid) are rescaled onto six proxy
//     axes
//
// Both projections are L2-normalized and scored against the template
// with a blend of non-negative cosine similarity and euclidean
// closeness, weighted per provenance. Scores live in [0, 1].
package scoring

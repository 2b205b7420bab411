// Package descriptor projects qualitative stage descriptors onto a
// numeric axis space.
//
// Template stages describe music in prose ("moderate tense", "minor
// anxious", "restless sharp"). Scoring needs numbers, so each of the
// six descriptor fields is scanned against an ordered keyword table
// and mapped to a value in [0,1]. The resulting vector is
// L2-normalized and compared against candidate audio projections.
package descriptor

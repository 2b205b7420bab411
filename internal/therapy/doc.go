// Package therapy turns a user's self-reported state into a concrete
// session selection: classify the input, rank the extracted library for
// the detected emotion, and draw one segment from the best matches.
//
// Selections follow the ISO principle's match stage. The chosen segment
// mirrors the user's current state rather than the desired end state,
// and the attached template describes the full three-stage arc a player
// can follow from there. The selector keeps a bounded in-memory history
// so a session runner can show or audit recent picks.
package therapy

// Package emotion defines the fixed emotion taxonomy, the intensity vector
// built over it, and the keyword classifier that turns free text into an
// emotion label with a confidence estimate.
//
// The taxonomy is an ordered, immutable list of 27 named axes. Vector length
// is a hard contract: any other length is rejected with services.ErrDimension.
// Component values are soft-corrected instead (clamped to [0,1]), and unknown
// emotion names are ignored rather than rejected so upstream vocabularies can
// drift without breaking callers.
//
// Chinese aliases are accepted wherever emotion names enter the package;
// canonical names are always the English forms.
package emotion

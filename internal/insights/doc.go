// Package insights groups extracted candidates into sound profiles.
//
// Candidates are clustered with k-means over their six-axis descriptor
// projection, the same space retrieval scores against, so a group's
// centroid reads directly as "what kind of material this is". Groups
// get descriptive names from their centroid quadrant; records that
// cannot be projected, or that land in groups below the minimum size,
// are reported as outliers.
package insights

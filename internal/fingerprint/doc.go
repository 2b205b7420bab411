// Package fingerprint computes deterministic fingerprints for catalog
// media files.
//
// A fingerprint combines the file's basename, byte size, modification
// time, and the analysis window ratio, hashed with SHA-256 and
// shortened to 32 hex characters. Moving a file between directories
// keeps its fingerprint; editing the file or changing the analysis
// window invalidates it, which in turn invalidates any cached feature
// record for it.
package fingerprint

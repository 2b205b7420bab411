// Package preflight provides readiness checks for external binaries,
// services, and filesystem paths that Attune depends on.
//
// These checks run in two contexts:
//   - Batch commands (extract, segment) call RunAll before starting so a
//     missing binary or unwritable directory fails fast instead of
//     partway through a library.
//   - The CLI "attune status" command uses individual check functions
//     (CheckProvider, CheckDirectoryAccess) to display system health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight

// Package services defines the shared error taxonomy consumed by the
// retrieval pipeline and external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so failures carry
//     component and operation context while staying classifiable with
//     errors.Is.
//   - Classification helpers: Recoverable reports whether the extraction
//     pipeline should fall through to its statistical path, ExitCode maps a
//     failure onto the process exit status used by the CLI.
//
// Use these helpers when wiring new components so error handling stays
// uniform across the pipeline.
package services

// Package logging assembles the structured slog loggers used across attune.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and provides component loggers plus warn/error helpers that
// enforce event_type, error_hint, and impact fields. A no-op logger is
// available for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits log lines with the same shape.
package logging

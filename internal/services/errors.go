package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDimension marks emotion vectors whose length violates the taxonomy
	// contract. This is the only failure in the vector path that propagates.
	ErrDimension = errors.New("dimension mismatch")
	// ErrExtraction marks per-segment feature extraction failures. Batch
	// callers skip the segment and continue.
	ErrExtraction = errors.New("extraction failure")
	// ErrProviderUnavailable marks embedding provider outages; extraction
	// falls through to the statistical path when it sees this marker.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	ErrExternalTool        = errors.New("external tool error")
	ErrValidation          = errors.New("validation error")
	ErrConfiguration       = errors.New("configuration error")
	ErrNotFound            = errors.New("not found")
	ErrTimeout             = errors.New("timeout")
	ErrTransient           = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether the extractor should degrade to its fallback
// path instead of failing the segment outright.
func Recoverable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrTransient)
}

// ExitCode maps an error onto the process exit status the CLI reports.
// Validation and configuration problems are distinguishable so scripts can
// tell operator mistakes from runtime faults.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrDimension):
		return 2
	case errors.Is(err, ErrNotFound):
		return 3
	case errors.Is(err, ErrExternalTool):
		return 4
	default:
		return 1
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// Package embedding provides the HTTP client for the audio embedding
// provider. The provider receives a mono PCM window and returns an
// opaque embedding vector used as the primary feature representation.
//
// Every provider-side failure (unconfigured endpoint, connection
// problems, timeouts, malformed responses) is classified as
// services.ErrProviderUnavailable so the extractor can drop to its
// statistical fallback without inspecting transport details. Context
// cancellation propagates as-is.
//
// Retries follow the provider's Retry-After header when present and
// exponential backoff otherwise; only transient failures (HTTP 408,
// 429, 5xx, network timeouts) are retried.
package embedding

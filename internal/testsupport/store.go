package testsupport

import (
	"context"
	"testing"

	"attune/internal/catalog"
	"attune/internal/config"
)

// MustOpenCatalog opens the segment catalog for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RegisterSegment registers a segment for tests using the provided store.
func RegisterSegment(t testing.TB, store *catalog.Store, seg catalog.Segment) *catalog.Segment {
	t.Helper()

	out, err := store.Upsert(context.Background(), seg)
	if err != nil {
		t.Fatalf("catalog.Upsert: %v", err)
	}
	return out
}

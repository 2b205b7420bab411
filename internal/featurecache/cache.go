package featurecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"attune/internal/features"
	"attune/internal/fileutil"
	"attune/internal/logging"
)

// Cache provides thread-safe access to the on-disk feature record
// store.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	records map[string]features.Record // keyed by fingerprint
}

// New creates a cache backed by the JSON file at path. An empty path
// yields a disabled cache where every operation is a no-op. The file
// is created lazily on first Store.
func New(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "featurecache")

	c := &Cache{
		path:    path,
		logger:  logger,
		records: make(map[string]features.Record),
	}

	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logger.Warn("failed to load feature cache",
			logging.String(logging.FieldEventType, "featurecache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty"),
			logging.String(logging.FieldImpact, "previously analyzed media will be re-extracted"))
	}

	return c
}

// Lookup returns the cached record for the given fingerprint if
// present.
func (c *Cache) Lookup(fp string) (features.Record, bool) {
	fp = strings.TrimSpace(fp)
	if fp == "" || c.path == "" {
		return features.Record{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, found := c.records[fp]
	return rec, found
}

// Store adds or replaces a record and persists the cache to disk.
func (c *Cache) Store(rec features.Record) error {
	rec.Fingerprint = strings.TrimSpace(rec.Fingerprint)
	if rec.Fingerprint == "" {
		return errors.New("record fingerprint cannot be empty")
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[rec.Fingerprint] = rec

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached feature record",
		logging.String(logging.FieldFingerprint, rec.Fingerprint),
		logging.String("media", rec.Name),
		logging.String(logging.FieldProvenance, string(rec.Provenance)))

	return nil
}

// Remove deletes the record with the given fingerprint and persists
// the change.
func (c *Cache) Remove(fp string) error {
	fp = strings.TrimSpace(fp)
	if fp == "" {
		return errors.New("record fingerprint cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[fp]; !exists {
		return fmt.Errorf("fingerprint %q not found in cache", fp)
	}

	delete(c.records, fp)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("removed feature record", logging.String(logging.FieldFingerprint, fp))
	return nil
}

// List returns all records sorted by extraction time descending
// (newest first).
func (c *Cache) List() []features.Record {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]features.Record, 0, len(c.records))
	for _, rec := range c.records {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ExtractedAt.After(records[j].ExtractedAt)
	})

	return records
}

// Prune drops records whose source file no longer exists or that a
// newer extractor version has obsoleted. It returns the number of
// records dropped.
func (c *Cache) Prune() (int, error) {
	if c.path == "" {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for fp, rec := range c.records {
		stale := rec.ExtractorVersion != features.ExtractorVersion
		if !stale {
			if _, err := os.Stat(rec.Path); err != nil {
				stale = true
			}
		}
		if stale {
			delete(c.records, fp)
			dropped++
		}
	}

	if dropped == 0 {
		return 0, nil
	}

	if err := c.save(); err != nil {
		return dropped, fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Info("pruned feature cache",
		logging.String(logging.FieldEventType, "featurecache_pruned"),
		logging.Int("dropped", dropped),
		logging.Int("remaining", len(c.records)))

	return dropped, nil
}

// Clear removes all records and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make(map[string]features.Record)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cleared feature cache")
	return nil
}

// Count returns the number of cached records.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.records)
}

// Stats returns record counts grouped by provenance.
func (c *Cache) Stats() map[features.Provenance]int {
	stats := make(map[features.Provenance]int)
	if c.path == "" {
		return stats
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, rec := range c.records {
		stats[rec.Provenance]++
	}
	return stats
}

// load reads the cache from disk into memory.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var records []features.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.records = make(map[string]features.Record, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Fingerprint) != "" {
			c.records[rec.Fingerprint] = rec
		}
	}

	c.logger.Debug("loaded feature cache",
		logging.Int("record_count", len(c.records)),
		logging.String("path", c.path))

	return nil
}

// save writes the cache to disk atomically.
func (c *Cache) save() error {
	records := make([]features.Record, 0, len(c.records))
	for _, rec := range c.records {
		records = append(records, rec)
	}

	// Sort for deterministic output
	sort.Slice(records, func(i, j int) bool {
		if records[i].ExtractedAt.Equal(records[j].ExtractedAt) {
			return records[i].Fingerprint < records[j].Fingerprint
		}
		return records[i].ExtractedAt.After(records[j].ExtractedAt)
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	return fileutil.WriteAtomic(c.path, data, 0o644)
}

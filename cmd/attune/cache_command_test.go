package main

import (
	"encoding/json"
	"os"
	"testing"
)

func TestCacheStatsJSON(t *testing.T) {
	env := newCLITestEnv(t)
	seedFeatureRecord(t, env, "a_5min_part01.mp4", 60)
	seedFeatureRecord(t, env, "b_5min_part01.mp4", 70)

	output, err := runCLI(t, env, "--json", "cache", "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	var stats cacheStatsJSON
	if err := json.Unmarshal([]byte(output), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v\n%s", err, output)
	}
	if stats.Records != 2 {
		t.Errorf("Records = %d, want 2", stats.Records)
	}
	if stats.Provenance["statistical"] != 2 {
		t.Errorf("statistical = %d, want 2", stats.Provenance["statistical"])
	}
	if stats.Path != env.cfg.Paths.FeaturesPath {
		t.Errorf("Path = %q, want %q", stats.Path, env.cfg.Paths.FeaturesPath)
	}
}

func TestCacheListShowsRecords(t *testing.T) {
	env := newCLITestEnv(t)
	seedFeatureRecord(t, env, "a_5min_part01.mp4", 60)

	output, err := runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	requireContains(t, output, "a_5min_part01.mp4")
	requireContains(t, output, "statistical")
}

func TestCacheListEmpty(t *testing.T) {
	env := newCLITestEnv(t)

	output, err := runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	requireContains(t, output, "Feature cache is empty")
}

func TestCachePruneDropsMissingFiles(t *testing.T) {
	env := newCLITestEnv(t)
	gone := seedFeatureRecord(t, env, "gone_5min_part01.mp4", 60)
	seedFeatureRecord(t, env, "kept_5min_part01.mp4", 61)
	if err := os.Remove(gone.Path); err != nil {
		t.Fatalf("remove media file: %v", err)
	}

	output, err := runCLI(t, env, "cache", "prune")
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	requireContains(t, output, "Pruned 1 stale records.")

	output, err = runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	requireContains(t, output, "kept_5min_part01.mp4")
}

func TestCacheClear(t *testing.T) {
	env := newCLITestEnv(t)
	seedFeatureRecord(t, env, "a_5min_part01.mp4", 60)

	output, err := runCLI(t, env, "cache", "clear")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	requireContains(t, output, "Cleared 1 records.")

	output, err = runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	requireContains(t, output, "Feature cache is empty")
}

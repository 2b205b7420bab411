package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"attune/internal/catalog"
	"attune/internal/testsupport"
)

func TestCatalogListEmpty(t *testing.T) {
	env := newCLITestEnv(t)

	output, err := runCLI(t, env, "catalog", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	requireContains(t, output, "Catalog is empty")
}

func TestCatalogListAndStats(t *testing.T) {
	env := newCLITestEnv(t)
	seedSegmentRow(t, env, catalog.Segment{
		SegmentPath: filepath.Join(env.cfg.Paths.SegmentsDir, "ocean_5min_part01.mp4"),
		SourcePath:  filepath.Join(env.cfg.Paths.LibraryDir, "ocean.mp4"),
		Title:       "ocean",
		Duration:    300,
		PartIndex:   1,
		PartCount:   3,
		Lead:        true,
	})
	seedSegmentRow(t, env, catalog.Segment{
		SegmentPath: filepath.Join(env.cfg.Paths.SegmentsDir, "ocean_5min_part02.mp4"),
		SourcePath:  filepath.Join(env.cfg.Paths.LibraryDir, "ocean.mp4"),
		Title:       "ocean",
		Duration:    300,
		PartIndex:   2,
		PartCount:   3,
	})

	output, err := runCLI(t, env, "catalog", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	requireContains(t, output, "ocean")
	requireContains(t, output, "1/3")
	requireContains(t, output, "2/3")

	output, err = runCLI(t, env, "catalog", "list", "--lead-only")
	if err != nil {
		t.Fatalf("lead-only list failed: %v", err)
	}
	requireContains(t, output, "1/3")
	if strings.Contains(output, "2/3") {
		t.Errorf("lead-only list includes non-lead part:\n%s", output)
	}

	output, err = runCLI(t, env, "--json", "catalog", "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	var stats catalog.Stats
	if err := json.Unmarshal([]byte(output), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v\n%s", err, output)
	}
	if stats.Segments != 2 {
		t.Errorf("Segments = %d, want 2", stats.Segments)
	}
	if stats.Sources != 1 {
		t.Errorf("Sources = %d, want 1", stats.Sources)
	}
	if stats.Leads != 1 {
		t.Errorf("Leads = %d, want 1", stats.Leads)
	}
}

func TestCatalogListJSON(t *testing.T) {
	env := newCLITestEnv(t)
	seed := seedSegmentRow(t, env, catalog.Segment{
		SegmentPath: filepath.Join(env.cfg.Paths.SegmentsDir, "dawn_3min_part01.mp4"),
		SourcePath:  filepath.Join(env.cfg.Paths.LibraryDir, "dawn.mp4"),
		Duration:    180,
		PartIndex:   1,
		PartCount:   2,
		Lead:        true,
	})

	output, err := runCLI(t, env, "--json", "catalog", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var views []segmentJSON
	if err := json.Unmarshal([]byte(output), &views); err != nil {
		t.Fatalf("unmarshal list: %v\n%s", err, output)
	}
	if len(views) != 1 {
		t.Fatalf("len(views) = %d, want 1", len(views))
	}
	if views[0].ID != seed.ID {
		t.Errorf("ID = %d, want %d", views[0].ID, seed.ID)
	}
	if views[0].Title != "dawn" {
		t.Errorf("Title = %q, want dawn", views[0].Title)
	}
	if !views[0].Lead {
		t.Error("Lead = false, want true")
	}
}

func TestCatalogRemove(t *testing.T) {
	env := newCLITestEnv(t)
	seg := seedSegmentRow(t, env, catalog.Segment{
		SegmentPath: filepath.Join(env.cfg.Paths.SegmentsDir, "gone_1min_part01.mp4"),
		Duration:    60,
	})

	output, err := runCLI(t, env, "catalog", "remove", strconv.FormatInt(seg.ID, 10))
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	requireContains(t, output, "Removed segment")

	_, err = runCLI(t, env, "catalog", "remove", strconv.FormatInt(seg.ID, 10))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCatalogRemoveRejectsBadID(t *testing.T) {
	env := newCLITestEnv(t)

	_, err := runCLI(t, env, "catalog", "remove", "banana")
	if err == nil || !strings.Contains(err.Error(), "invalid segment id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestCatalogPrune(t *testing.T) {
	env := newCLITestEnv(t)
	kept := filepath.Join(env.cfg.Paths.SegmentsDir, "kept_1min_part01.mp4")
	testsupport.WriteFile(t, kept, 2048)
	seedSegmentRow(t, env, catalog.Segment{SegmentPath: kept, Duration: 60})
	seedSegmentRow(t, env, catalog.Segment{
		SegmentPath: filepath.Join(env.cfg.Paths.SegmentsDir, "vanished_1min_part01.mp4"),
		Duration:    60,
	})

	output, err := runCLI(t, env, "catalog", "prune")
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	requireContains(t, output, "Pruned 1 stale rows.")
}

func TestCatalogClear(t *testing.T) {
	env := newCLITestEnv(t)
	seedSegmentRow(t, env, catalog.Segment{
		SegmentPath: filepath.Join(env.cfg.Paths.SegmentsDir, "a_1min_part01.mp4"),
		Duration:    60,
	})

	output, err := runCLI(t, env, "catalog", "clear")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	requireContains(t, output, "Cleared 1 rows.")

	output, err = runCLI(t, env, "catalog", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	requireContains(t, output, "Catalog is empty")
}

func TestCatalogScanEmpty(t *testing.T) {
	env := newCLITestEnv(t)

	output, err := runCLI(t, env, "catalog", "scan")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	requireContains(t, output, "0 media files")
	requireContains(t, output, "0 segments")
}

func TestCatalogInsightsNotEnough(t *testing.T) {
	env := newCLITestEnv(t)

	output, err := runCLI(t, env, "catalog", "insights")
	if err != nil {
		t.Fatalf("insights failed: %v", err)
	}
	requireContains(t, output, "Not enough cached records")
}

func TestCatalogInsightsJSON(t *testing.T) {
	env := newCLITestEnv(t)
	for i, tempo := range []float64{58, 60, 62, 138, 140, 142} {
		seedFeatureRecord(t, env, fmt.Sprintf("seg%02d_5min_part01.mp4", i), tempo)
	}

	output, err := runCLI(t, env, "--json", "catalog", "insights", "--groups", "2")
	if err != nil {
		t.Fatalf("insights failed: %v\n%s", err, output)
	}
	var result insightsResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("unmarshal insights: %v\n%s", err, output)
	}
	total := len(result.Outliers)
	for _, g := range result.Groups {
		total += len(g.Members)
		if len(g.Centroid) == 0 {
			t.Errorf("group %s has empty centroid", g.Name)
		}
	}
	if total != 6 {
		t.Errorf("grouped %d records, want 6", total)
	}
}

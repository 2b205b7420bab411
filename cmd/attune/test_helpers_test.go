package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"attune/internal/catalog"
	"attune/internal/config"
	"attune/internal/dsp"
	"attune/internal/featurecache"
	"attune/internal/features"
	"attune/internal/fingerprint"
	"attune/internal/logging"
	"attune/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// newCLITestEnv lays out temp library paths, disables the similarity
// floor so seeded records always rank, and writes the config file the
// CLI will load.
func newCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Scoring.MinSimilarity = -1
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeConfigFile(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeConfigFile(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(*cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, env, "", args...)
}

func runCLIWithInput(t *testing.T, env *cliTestEnv, input string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if input != "" {
		cmd.SetIn(strings.NewReader(input))
	}
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output does not contain %q:\n%s", want, output)
	}
}

// seedFeatureRecord writes a fake segment file and stores a fresh
// statistical record for it so retrieval has a candidate.
func seedFeatureRecord(t *testing.T, env *cliTestEnv, name string, tempo float64) features.Record {
	t.Helper()
	path := filepath.Join(env.cfg.Paths.SegmentsDir, name)
	testsupport.WriteFile(t, path, 4096)
	fp, err := fingerprint.Compute(path, features.DefaultExtractRatio)
	if err != nil {
		t.Fatalf("fingerprint %s: %v", path, err)
	}
	rec := features.Record{
		Fingerprint:      fp,
		Path:             path,
		Name:             name,
		ExtractRatio:     features.DefaultExtractRatio,
		ExtractedAt:      time.Now().UTC(),
		FileSize:         4096,
		ExtractorVersion: features.ExtractorVersion,
		Provenance:       features.ProvenanceStatistical,
		Statistical: &dsp.Features{
			Duration:          300,
			RMSEnergy:         0.18,
			ZeroCrossingRate:  0.07,
			AmplitudeMean:     0.14,
			AmplitudeStd:      0.05,
			AmplitudeMax:      0.6,
			DynamicRange:      0.5,
			SpectralCentroid:  1400,
			SpectralBandwidth: 900,
			SpectralRolloff:   2800,
			SpectralFlatness:  0.3,
			TempoEstimate:     tempo,
			RhythmRegularity:  0.7,
			OnsetDensity:      1.2,
			LoudnessEstimate:  0.2,
			Brightness:        0.4,
			Warmth:            0.6,
		},
	}
	cache := featurecache.New(env.cfg.Paths.FeaturesPath, logging.NewNop())
	if err := cache.Store(rec); err != nil {
		t.Fatalf("store record: %v", err)
	}
	return rec
}

// seedSegmentRow registers one catalog row; the segment file itself is
// only written when a test needs it on disk.
func seedSegmentRow(t *testing.T, env *cliTestEnv, seg catalog.Segment) *catalog.Segment {
	t.Helper()
	store := testsupport.MustOpenCatalog(t, env.cfg)
	return testsupport.RegisterSegment(t, store, seg)
}

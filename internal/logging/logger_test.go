package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"attune/internal/logging"
)

func TestNewConsoleWritesFormattedLine(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	componentLogger := logging.NewComponentLogger(logger, "extractor")
	componentLogger.Info("segment scored", logging.String("segment", "clip.mp4"), logging.Float64("score", 0.75))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO extractor: segment scored") {
		t.Fatalf("unexpected console line %q", line)
	}
	if !strings.Contains(line, "segment=clip.mp4") || !strings.Contains(line, "score=0.75") {
		t.Fatalf("expected attrs in console line %q", line)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewJSONLogger(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "log.json")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{`"level":"info"`, `"msg":"json message"`, `"k":"v"`, `"ts":"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("json line missing %s: %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "level.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "invalid",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("visible")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden") {
		t.Fatalf("debug message should be suppressed at default level: %q", content)
	}
	if !strings.Contains(string(content), "visible") {
		t.Fatalf("info message missing: %q", content)
	}
}

func TestNewWithFileTeesToJSONFile(t *testing.T) {
	tempDir := t.TempDir()
	consolePath := filepath.Join(tempDir, "console.log")
	filePath := filepath.Join(tempDir, "attune.log")

	logger, err := logging.NewWithFile(
		logging.Options{Format: "console", Level: "info", OutputPaths: []string{consolePath}},
		logging.FileOptions{Path: filePath},
	)
	if err != nil {
		t.Fatalf("NewWithFile returned error: %v", err)
	}

	logger.Info("tee message", logging.String("k", "v"))
	logger.Debug("file only")

	consoleContent, err := os.ReadFile(consolePath)
	if err != nil {
		t.Fatalf("read console log: %v", err)
	}
	if !strings.Contains(string(consoleContent), "tee message") {
		t.Fatalf("console missing message: %q", consoleContent)
	}
	if strings.Contains(string(consoleContent), "file only") {
		t.Fatalf("console should not carry debug records: %q", consoleContent)
	}

	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read json log: %v", err)
	}
	if !strings.Contains(string(fileContent), `"msg":"tee message"`) {
		t.Fatalf("json file missing message: %q", fileContent)
	}
	if !strings.Contains(string(fileContent), `"msg":"file only"`) {
		t.Fatalf("json file should capture debug records: %q", fileContent)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "warn.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "extraction skipped", "extraction_failed",
		logging.String("segment", "clip.mp4"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"event_type=extraction_failed", "error_hint=", "impact="} {
		if !strings.Contains(line, want) {
			t.Fatalf("warn line missing %s: %q", want, line)
		}
	}
}

func TestCleanupOldLogsRemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "attune-old.log")
	freshPath := filepath.Join(dir, "attune-fresh.log")
	keepPath := filepath.Join(dir, "attune.log")

	for _, path := range []string{oldPath, freshPath, keepPath} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatalf("age file: %v", err)
	}
	if err := os.Chtimes(keepPath, stale, stale); err != nil {
		t.Fatalf("age file: %v", err)
	}

	logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "attune-*.log",
		Exclude: []string{keepPath},
	})

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed, err=%v", oldPath, err)
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Fatalf("fresh file should remain: %v", err)
	}
	if _, err := os.Stat(keepPath); err != nil {
		t.Fatalf("excluded file should remain: %v", err)
	}
}

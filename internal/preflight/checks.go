package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"attune/internal/catalog"
	"attune/internal/featurecache"
	"attune/internal/logging"
	"attune/internal/services/embedding"
)

// Requirement defines an external binary dependency.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// CheckBinaries evaluates the provided requirements and reports
// availability. The detail of a passing check is the resolved path.
func CheckBinaries(requirements []Requirement) []Result {
	results := make([]Result, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		result := Result{Name: req.Name, Optional: req.Optional}
		if cmd == "" {
			result.Detail = "command not configured"
			results = append(results, result)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			result.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, result)
			continue
		}
		result.Passed = true
		result.Detail = resolved
		results = append(results, result)
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// statfs is a seam for tests.
var statfs = func(path string) (total, free uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total = stat.Blocks * uint64(stat.Bsize)
	free = stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}

// CheckDiskSpace verifies the filesystem holding path has at least
// minFreeBytes available.
func CheckDiskSpace(name, path string, minFreeBytes uint64) Result {
	total, free, err := statfs(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s free of %s", logging.FormatBytes(int64(free)), logging.FormatBytes(int64(total)))
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (below %s minimum)", detail, logging.FormatBytes(int64(minFreeBytes)))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckProvider verifies that the embedding provider is reachable.
// It uses a 10-second timeout and a single attempt (no retries).
func CheckProvider(ctx context.Context, cfg embedding.Config) Result {
	const name = "Embedding provider"

	if strings.TrimSpace(cfg.BaseURL) == "" {
		return Result{Name: name, Optional: true, Detail: "endpoint not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := embedding.NewClient(cfg, embedding.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeProviderError(err)}
	}
	return Result{Name: name, Optional: true, Passed: true, Detail: "API reachable"}
}

// CheckCatalog opens the segment catalog and reports its contents.
// Opening creates an empty catalog when none exists, which doubles as a
// writability check on the state directory.
func CheckCatalog(ctx context.Context, path string) Result {
	const name = "Segment catalog"

	store, err := catalog.Open(path)
	if err != nil {
		if errors.Is(err, catalog.ErrSchemaMismatch) {
			return Result{Name: name, Detail: "schema version mismatch (delete the catalog and rescan)"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("stats failed: %v", err)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d segments from %d sources", stats.Segments, stats.Sources),
	}
}

// CheckFeatureCache loads the feature cache and reports its contents.
// A corrupt or missing file is tolerated by the cache itself, so this
// check only fails when the path resolves to a directory.
func CheckFeatureCache(path string) Result {
	const name = "Feature cache"

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	cache := featurecache.New(path, nil)
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d feature records", len(cache.List())),
	}
}

// summarizeProviderError produces a human-readable summary for provider health check failures.
func summarizeProviderError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (provider unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (provider unreachable)"
	}
	return err.Error()
}

package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Compute returns the content fingerprint for the media file at path,
// analyzed with the given leading window ratio.
func Compute(path string, ratio float64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat media file: %w", err)
	}
	return FromStat(filepath.Base(path), info.Size(), info.ModTime(), ratio), nil
}

// FromStat builds a fingerprint from already-known file attributes.
// Only the basename participates, so relocating a file does not
// invalidate it.
func FromStat(name string, size int64, mtime time.Time, ratio float64) string {
	content := fmt.Sprintf("%s_%d_%d_%s",
		name, size, mtime.Unix(), strconv.FormatFloat(ratio, 'g', -1, 64))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:16])
}

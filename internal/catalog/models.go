package catalog

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Segment is one playable unit: a cut produced by the segmenter, or a
// whole file registered as part 0 of 1. The lead segment of a source
// is the cut whose opening aligns with the match stage.
type Segment struct {
	ID          int64
	SegmentPath string
	SourcePath  string
	Title       string
	Duration    float64
	PartIndex   int
	PartCount   int
	Lead        bool
	FileSize    int64
	Fingerprint string
	Extracted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListOptions narrows List results. Zero values mean no filter.
type ListOptions struct {
	// Source restricts results to segments cut from one source file.
	Source string
	// LeadOnly keeps only lead segments.
	LeadOnly bool
	// Unextracted keeps only segments without extracted features.
	Unextracted bool
}

// Stats aggregates catalog state for status output.
type Stats struct {
	Segments      int     `json:"segments"`
	Sources       int     `json:"sources"`
	Leads         int     `json:"leads"`
	Extracted     int     `json:"extracted"`
	TotalDuration float64 `json:"total_duration_seconds"`
}

const segmentColumns = "id, segment_path, source_path, title, duration_seconds, part_index, part_count, lead_segment, file_size, fingerprint, extracted, created_at, updated_at"

func scanSegment(scanner interface{ Scan(dest ...any) error }) (*Segment, error) {
	var (
		id          int64
		segmentPath string
		sourcePath  string
		title       string
		duration    sql.NullFloat64
		partIndex   sql.NullInt64
		partCount   sql.NullInt64
		lead        sql.NullInt64
		fileSize    sql.NullInt64
		fingerprint sql.NullString
		extracted   sql.NullInt64
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&segmentPath,
		&sourcePath,
		&title,
		&duration,
		&partIndex,
		&partCount,
		&lead,
		&fileSize,
		&fingerprint,
		&extracted,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	seg := &Segment{
		ID:          id,
		SegmentPath: segmentPath,
		SourcePath:  sourcePath,
		Title:       title,
		Duration:    duration.Float64,
		PartIndex:   int(partIndex.Int64),
		PartCount:   int(partCount.Int64),
		Lead:        lead.Int64 != 0,
		FileSize:    fileSize.Int64,
		Fingerprint: fingerprint.String,
		Extracted:   extracted.Int64 != 0,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		seg.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		seg.UpdatedAt = updated
	}
	return seg, nil
}

// TitleFromPath derives a display title from a media file name.
func TitleFromPath(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	if base == "" {
		return "Untitled Media"
	}
	ext := filepath.Ext(base)
	cleaned := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if cleaned == "" {
		return "Untitled Media"
	}
	return cleaned
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

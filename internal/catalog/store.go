package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages segment persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the catalog database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Upsert registers a segment, keyed by its file path. Re-registering a
// path whose file size changed clears the extraction state so the
// segment is picked up again by the next extraction run.
func (s *Store) Upsert(ctx context.Context, seg Segment) (*Segment, error) {
	if strings.TrimSpace(seg.SegmentPath) == "" {
		return nil, errors.New("segment path is required")
	}
	if seg.Title == "" {
		source := seg.SourcePath
		if strings.TrimSpace(source) == "" {
			source = seg.SegmentPath
		}
		seg.Title = TitleFromPath(source)
	}
	if seg.PartCount <= 0 {
		seg.PartCount = 1
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO segments (
            segment_path, source_path, title, duration_seconds, part_index,
            part_count, lead_segment, file_size, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(segment_path) DO UPDATE SET
            source_path = excluded.source_path,
            title = excluded.title,
            duration_seconds = excluded.duration_seconds,
            part_index = excluded.part_index,
            part_count = excluded.part_count,
            lead_segment = excluded.lead_segment,
            extracted = CASE WHEN excluded.file_size = segments.file_size THEN segments.extracted ELSE 0 END,
            fingerprint = CASE WHEN excluded.file_size = segments.file_size THEN segments.fingerprint ELSE NULL END,
            file_size = excluded.file_size,
            updated_at = excluded.updated_at`,
		seg.SegmentPath,
		seg.SourcePath,
		seg.Title,
		seg.Duration,
		seg.PartIndex,
		seg.PartCount,
		boolToInt(seg.Lead),
		seg.FileSize,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert segment: %w", err)
	}

	return s.GetByPath(ctx, seg.SegmentPath)
}

// GetByID fetches a segment by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Segment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = ?`, id)
	seg, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	return seg, nil
}

// GetByPath fetches a segment by its file path.
func (s *Store) GetByPath(ctx context.Context, path string) (*Segment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+segmentColumns+` FROM segments WHERE segment_path = ?`, path)
	seg, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get segment by path: %w", err)
	}
	return seg, nil
}

// List returns segments matching opts, ordered by source and position.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments`
	var (
		clauses []string
		args    []any
	)
	if opts.Source != "" {
		clauses = append(clauses, "source_path = ?")
		args = append(args, opts.Source)
	}
	if opts.LeadOnly {
		clauses = append(clauses, "lead_segment = 1")
	}
	if opts.Unextracted {
		clauses = append(clauses, "extracted = 0")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY source_path, part_index"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segments []*Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// MarkExtracted records that features exist for a segment.
func (s *Store) MarkExtracted(ctx context.Context, id int64, fingerprint string) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE segments SET extracted = 1, fingerprint = ?, updated_at = ? WHERE id = ?`,
		nullableString(fingerprint),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark extracted: %w", err)
	}
	return nil
}

// Remove deletes a segment row by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM segments WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete segment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all segments from the catalog.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM segments`)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	return res.RowsAffected()
}

// Prune drops rows whose segment files no longer exist on disk and
// returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT id, segment_path FROM segments`)
	if err != nil {
		return 0, fmt.Errorf("list segment paths: %w", err)
	}

	var missing []int64
	for rows.Next() {
		var (
			id   int64
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan segment path: %w", err)
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			missing = append(missing, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	if len(missing) == 0 {
		return 0, nil
	}

	placeholders := makePlaceholders(len(missing))
	args := make([]any, len(missing))
	for i, id := range missing {
		args[i] = id
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM segments WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("prune segments: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns aggregate counts for status output.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT COUNT(1), COUNT(DISTINCT source_path),
            COALESCE(SUM(lead_segment), 0), COALESCE(SUM(extracted), 0),
            COALESCE(SUM(duration_seconds), 0)
        FROM segments`,
	)
	var stats Stats
	if err := row.Scan(&stats.Segments, &stats.Sources, &stats.Leads, &stats.Extracted, &stats.TotalDuration); err != nil {
		return Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	return stats, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

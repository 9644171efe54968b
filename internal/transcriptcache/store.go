package transcriptcache

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

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transcripts (
	video_id   TEXT NOT NULL,
	hint       TEXT NOT NULL DEFAULT '',
	language   TEXT NOT NULL DEFAULT '',
	backend    TEXT NOT NULL DEFAULT '',
	text       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (video_id, hint)
);
CREATE INDEX IF NOT EXISTS idx_transcripts_created_at ON transcripts(created_at);
`

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// timestampLayout is fixed width so stored timestamps order lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one cached transcript.
type Entry struct {
	VideoID   string    `json:"video_id"`
	Hint      string    `json:"hint,omitempty"`
	Language  string    `json:"language,omitempty"`
	Backend   string    `json:"backend"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages transcript persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("transcript cache: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("transcript cache: ensure directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
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

func normalizeKey(videoID, hint string) (string, string) {
	return strings.TrimSpace(videoID), strings.ToLower(strings.TrimSpace(hint))
}

// Get returns the cached transcript for videoID and hint.
func (s *Store) Get(ctx context.Context, videoID, hint string) (Entry, bool, error) {
	videoID, hint = normalizeKey(videoID, hint)
	if videoID == "" {
		return Entry{}, false, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT video_id, hint, language, backend, text, created_at FROM transcripts WHERE video_id = ? AND hint = ?`,
		videoID, hint)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("transcript cache get: %w", err)
	}
	return entry, true, nil
}

// Put stores or replaces an entry. CreatedAt defaults to now.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	entry.VideoID, entry.Hint = normalizeKey(entry.VideoID, entry.Hint)
	if entry.VideoID == "" {
		return errors.New("transcript cache put: video id required")
	}
	if strings.TrimSpace(entry.Text) == "" {
		return errors.New("transcript cache put: text required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	return s.execWithRetry(ctx,
		`INSERT INTO transcripts (video_id, hint, language, backend, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id, hint) DO UPDATE SET
		   language = excluded.language,
		   backend = excluded.backend,
		   text = excluded.text,
		   created_at = excluded.created_at`,
		entry.VideoID, entry.Hint, entry.Language, entry.Backend, entry.Text,
		entry.CreatedAt.UTC().Format(timestampLayout))
}

// Delete removes every entry for videoID and reports how many were removed.
func (s *Store) Delete(ctx context.Context, videoID string) (int64, error) {
	videoID = strings.TrimSpace(videoID)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE video_id = ?`, videoID)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("transcript cache delete: %w", err)
	}
	return removed, nil
}

// List returns entries newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT video_id, hint, language, backend, text, created_at FROM transcripts ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transcript cache list: %w", err)
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("transcript cache list: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune removes entries older than maxAge.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).UTC().Format(timestampLayout)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE created_at < ?`, cutoff)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("transcript cache prune: %w", err)
	}
	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry   Entry
		created string
	)
	if err := row.Scan(&entry.VideoID, &entry.Hint, &entry.Language, &entry.Backend, &entry.Text, &created); err != nil {
		return Entry{}, err
	}
	ts, err := time.Parse(timestampLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	entry.CreatedAt = ts
	return entry, nil
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
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

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// timestampLayout is fixed width so ts_utc sorts lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open creates or opens the history database at path. busyTimeout <= 0
// uses 2s.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts rec, filling in an ID, grammar key and timestamp when unset.
// It returns the stored record.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.GrammarKey = strings.TrimSpace(rec.GrammarKey)
	if rec.GrammarKey == "" {
		rec.GrammarKey = "default"
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	accepted := 0
	if rec.Accepted {
		accepted = 1
	}
	err := s.withRetry("save recognition", func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO recognitions (id, grammar_key, input, accepted, token_count, steps, duration_us, error, ts_utc)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			rec.ID,
			rec.GrammarKey,
			rec.Input,
			accepted,
			rec.Tokens,
			rec.Steps,
			rec.Duration.Microseconds(),
			rec.Error,
			rec.Timestamp.UTC().Format(timestampLayout),
		)
		return err
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Recent returns up to limit records for grammarKey, newest first.
func (s *Store) Recent(ctx context.Context, grammarKey string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	err := s.withRetry("load recognitions", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT id, grammar_key, input, accepted, token_count, steps, duration_us, error, ts_utc
FROM recognitions
WHERE grammar_key = ?
ORDER BY ts_utc DESC, rowid DESC
LIMIT ?
`, grammarKey, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec        Record
			accepted   int
			durationUS int64
			tsRaw      string
		)
		if err := rows.Scan(&rec.ID, &rec.GrammarKey, &rec.Input, &accepted, &rec.Tokens, &rec.Steps, &durationUS, &rec.Error, &tsRaw); err != nil {
			return nil, fmt.Errorf("scan recognition row: %w", err)
		}
		rec.Accepted = accepted == 1
		rec.Duration = time.Duration(durationUS) * time.Microsecond
		ts, err := time.Parse(timestampLayout, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse recognition timestamp %q: %w", tsRaw, err)
		}
		rec.Timestamp = ts
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recognition rows: %w", err)
	}
	return out, nil
}

// Summary aggregates all records for grammarKey.
func (s *Store) Summary(ctx context.Context, grammarKey string) (Summary, error) {
	var sum Summary
	err := s.withRetry("summarize recognitions", func() error {
		return s.db.QueryRowContext(ctx, `
SELECT
  COUNT(*),
  COALESCE(SUM(CASE WHEN error = '' AND accepted = 1 THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN error = '' AND accepted = 0 THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0),
  COALESCE(AVG(steps), 0)
FROM recognitions
WHERE grammar_key = ?
`, grammarKey).Scan(&sum.Total, &sum.Accepted, &sum.Rejected, &sum.Failed, &sum.AvgSteps)
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

// Package sqlite persists single-user state (theme, progress, bookmarks,
// incorrect-answer stats) in a small SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"simulado-service/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

const defaultMaxConns = 10

// Store wraps the user-data database. All queries go through the Pool.
type Store struct {
	db   *sql.DB
	pool *Pool
}

// Open opens (creating if needed) the database at path. WAL journaling and
// NORMAL synchronous level are set per-connection through the DSN so every
// pooled handle is configured for concurrent-read/low-write access.
func Open(path string, maxConns int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=30000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{db: db, pool: NewPool(db, maxConns)}, nil
}

// DB exposes the underlying handle for the migrator.
func (s *Store) DB() *sql.DB { return s.db }

// Pool exposes the connection pool.
func (s *Store) Pool() *Pool { return s.pool }

func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}

// Theme returns the stored UI theme, defaulting to "light".
func (s *Store) Theme(ctx context.Context) (string, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer s.pool.Release(conn)

	var theme string
	err = conn.QueryRowContext(ctx, `SELECT value FROM theme WHERE id=1`).Scan(&theme)
	if err == sql.ErrNoRows {
		return "light", nil
	}
	if err != nil {
		return "", fmt.Errorf("get theme: %w", err)
	}
	return theme, nil
}

// SaveTheme stores the UI theme.
func (s *Store) SaveTheme(ctx context.Context, theme string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	_, err = conn.ExecContext(ctx, `INSERT OR REPLACE INTO theme (id, value) VALUES (1, ?)`, theme)
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// SaveProgress upserts the progress blob for one simulado.
func (s *Store) SaveProgress(ctx context.Context, simuladoID string, data json.RawMessage) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	_, err = conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO progress (simulado_id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		simuladoID, string(data))
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Progress returns the saved blob for one simulado, or nil when absent.
func (s *Store) Progress(ctx context.Context, simuladoID string) (json.RawMessage, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(conn)

	var data string
	err = conn.QueryRowContext(ctx, `SELECT data FROM progress WHERE simulado_id=?`, simuladoID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return json.RawMessage(data), nil
}

// DeleteProgress removes saved progress for one simulado.
func (s *Store) DeleteProgress(ctx context.Context, simuladoID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	_, err = conn.ExecContext(ctx, `DELETE FROM progress WHERE simulado_id = ?`, simuladoID)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

// AllProgress returns every non-empty progress blob keyed by simulado id.
func (s *Store) AllProgress(ctx context.Context) (map[string]json.RawMessage, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(conn)

	rows, err := conn.QueryContext(ctx,
		`SELECT simulado_id, data FROM progress WHERE data IS NOT NULL AND data != '{}'`)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out[id] = json.RawMessage(data)
	}
	return out, rows.Err()
}

// SaveBookmark upserts a bookmark.
func (s *Store) SaveBookmark(ctx context.Context, b domain.Bookmark) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	_, err = conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO bookmarks (simulado_id, question_hash, enunciado, category, created_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		b.SimuladoID, b.QuestionHash, b.Enunciado, b.Category)
	if err != nil {
		return fmt.Errorf("save bookmark: %w", err)
	}
	return nil
}

// DeleteBookmark removes one bookmark.
func (s *Store) DeleteBookmark(ctx context.Context, simuladoID, questionHash string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	_, err = conn.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE simulado_id = ? AND question_hash = ?`, simuladoID, questionHash)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// Bookmarks returns all bookmarks, most recent first.
func (s *Store) Bookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(conn)

	rows, err := conn.QueryContext(ctx,
		`SELECT simulado_id, question_hash, enunciado, category FROM bookmarks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]domain.Bookmark, 0)
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.SimuladoID, &b.QuestionHash, &b.Enunciado, &b.Category); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// SaveIncorrectStats upserts a batch of incorrect-answer counters in one
// transaction, keyed by question hash.
func (s *Store) SaveIncorrectStats(ctx context.Context, stats map[string]domain.IncorrectStat) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Release(conn)

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	for hash, stat := range stats {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO incorrect_answers (question_hash, count, enunciado, simulado_id, updated_at)
			 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			hash, stat.Count, stat.Enunciado, stat.SimuladoID)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save stat %q: %w", hash, err)
		}
	}
	return tx.Commit()
}

// IncorrectAnswers returns all incorrect-answer counters.
func (s *Store) IncorrectAnswers(ctx context.Context) ([]domain.IncorrectAnswer, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(conn)

	rows, err := conn.QueryContext(ctx,
		`SELECT question_hash, count, enunciado, simulado_id FROM incorrect_answers`)
	if err != nil {
		return nil, fmt.Errorf("list incorrect answers: %w", err)
	}
	defer rows.Close()

	answers := make([]domain.IncorrectAnswer, 0)
	for rows.Next() {
		var a domain.IncorrectAnswer
		if err := rows.Scan(&a.QuestionHash, &a.Count, &a.Enunciado, &a.SimuladoID); err != nil {
			return nil, fmt.Errorf("scan incorrect answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

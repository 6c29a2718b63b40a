//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"memtopo/internal/eval"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			helix_len INTEGER NOT NULL,
			evaluated INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			payload BLOB NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, report eval.Report) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if report.RunID == "" {
		return errors.New("run id is required")
	}

	payload, err := EncodeRun(report)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, helix_len, evaluated, correct, accuracy, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			helix_len = excluded.helix_len,
			evaluated = excluded.evaluated,
			correct = excluded.correct,
			accuracy = excluded.accuracy,
			payload = excluded.payload
	`, report.RunID, report.CreatedAt.Format(timeLayout), report.HelixLen,
		report.Evaluated, report.Correct, report.Accuracy, payload)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (eval.Report, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return eval.Report{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eval.Report{}, false, nil
		}
		return eval.Report{}, false, err
	}

	report, err := DecodeRun(payload)
	if err != nil {
		return eval.Report{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return report, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT payload FROM runs ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		report, err := DecodeRun(payload)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summarize(report))
	}
	return summaries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

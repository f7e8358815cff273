package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zhouzirui/helix/backend/internal/model/chat"
	"github.com/zhouzirui/helix/backend/internal/model/sequence"
)

// SQLiteStore keeps rows in a local database file for development.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path. Use ":memory:" for a throwaway store.
func NewSQLiteStore(ctx context.Context, path string, autoMigrate bool) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serialises writers; one connection also keeps ":memory:" coherent.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if autoMigrate {
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return s, nil
}

// Migrate creates the messages and sequences tables when missing.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('user', 'assistant')),
			created_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sequences (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '{}',
			steps TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create sequences table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertMessage(ctx context.Context, msg chat.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, user_id, content, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), msg.UserID, msg.Content, string(msg.Type), now(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertSequence(ctx context.Context, seq sequence.Sequence) (string, error) {
	steps, err := encodeSteps(seq.Steps)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sequences (id, user_id, context, steps, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, seq.UserID, encodeContext(seq.Context), steps, ts, ts,
	)
	if err != nil {
		return "", fmt.Errorf("insert sequence: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpdateSequenceSteps(ctx context.Context, id string, steps []sequence.Step) error {
	encoded, err := encodeSteps(steps)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sequences SET steps = ?, updated_at = ? WHERE id = ?`,
		encoded, now(), id,
	)
	if err != nil {
		return fmt.Errorf("update sequence: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sequence: %w", err)
	}
	if affected == 0 {
		return ErrSequenceNotFound
	}
	return nil
}

func (s *SQLiteStore) Probe(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM messages LIMIT 1`)
	if err != nil {
		return 0, fmt.Errorf("probe messages: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("probe messages: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhouzirui/helix/backend/internal/model/chat"
	"github.com/zhouzirui/helix/backend/internal/model/sequence"
)

// PostgresStore persists rows into the hosted Postgres database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a lazily connecting pool for connString.
func NewPostgresStore(ctx context.Context, connString string, autoMigrate bool) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 0
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	// Supabase's transaction pooler rejects named prepared statements.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if autoMigrate {
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		log.Println("[store] postgres schema ensured")
	}

	return s, nil
}

// Migrate creates the messages and sequences tables when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('user', 'assistant')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sequences (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id TEXT NOT NULL,
			context JSONB NOT NULL DEFAULT '{}'::jsonb,
			steps JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("create sequences table: %w", err)
	}

	return nil
}

// InsertMessage appends one chat turn.
func (s *PostgresStore) InsertMessage(ctx context.Context, msg chat.Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (user_id, content, type) VALUES ($1, $2, $3)`,
		msg.UserID, msg.Content, string(msg.Type),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// InsertSequence stores a generated sequence and returns its id.
func (s *PostgresStore) InsertSequence(ctx context.Context, seq sequence.Sequence) (string, error) {
	steps, err := encodeSteps(seq.Steps)
	if err != nil {
		return "", err
	}

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO sequences (user_id, context, steps) VALUES ($1, $2::jsonb, $3::jsonb) RETURNING id::text`,
		seq.UserID, encodeContext(seq.Context), steps,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert sequence: %w", err)
	}
	return id, nil
}

// UpdateSequenceSteps replaces the steps column wholesale.
func (s *PostgresStore) UpdateSequenceSteps(ctx context.Context, id string, steps []sequence.Step) error {
	key, err := sequenceKey(id)
	if err != nil {
		return err
	}

	encoded, err := encodeSteps(steps)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE sequences SET steps = $1::jsonb, updated_at = now() WHERE id = $2::uuid`,
		encoded, key,
	)
	if err != nil {
		return fmt.Errorf("update sequence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSequenceNotFound
	}
	return nil
}

// Probe reads at most one message row.
func (s *PostgresStore) Probe(ctx context.Context) (int, error) {
	rows, err := s.pool.Query(ctx, `SELECT id::text FROM messages LIMIT 1`)
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

// sequenceKey normalises id to the canonical uuid form. Ids that are not
// uuids cannot name a row.
func sequenceKey(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", ErrSequenceNotFound
	}
	return parsed.String(), nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

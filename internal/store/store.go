package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/zhouzirui/helix/backend/internal/config"
	"github.com/zhouzirui/helix/backend/internal/model/chat"
	"github.com/zhouzirui/helix/backend/internal/model/sequence"
)

var (
	ErrNotConfigured    = errors.New("store is not configured")
	ErrSequenceNotFound = errors.New("sequence not found")
)

// Store is the row sink used by the chat and sequence services.
type Store interface {
	InsertMessage(ctx context.Context, msg chat.Message) error
	// InsertSequence stores a new sequence and returns the assigned identifier.
	InsertSequence(ctx context.Context, seq sequence.Sequence) (string, error)
	// UpdateSequenceSteps replaces the stored steps of one sequence.
	UpdateSequenceSteps(ctx context.Context, id string, steps []sequence.Step) error
	// Probe performs a bounded read and reports how many rows came back.
	Probe(ctx context.Context) (int, error)
	Close()
}

// Open builds the backend selected by cfg. A driver that lacks connection
// parameters yields a store that fails every call with ErrNotConfigured.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if !cfg.Configured() {
		log.Printf("[store] %s driver has no connection settings, persistence disabled", cfg.Driver)
		return Unconfigured{}, nil
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.URL, cfg.AutoMigrate)
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath, cfg.AutoMigrate)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// Unconfigured stands in for a store whose credentials were never provided.
type Unconfigured struct{}

func (Unconfigured) InsertMessage(context.Context, chat.Message) error { return ErrNotConfigured }

func (Unconfigured) InsertSequence(context.Context, sequence.Sequence) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) UpdateSequenceSteps(context.Context, string, []sequence.Step) error {
	return ErrNotConfigured
}

func (Unconfigured) Probe(context.Context) (int, error) { return 0, ErrNotConfigured }

func (Unconfigured) Close() {}

// encodeSteps renders steps for a JSON column, never as null.
func encodeSteps(steps []sequence.Step) (string, error) {
	if steps == nil {
		steps = []sequence.Step{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("encode steps: %w", err)
	}
	return string(data), nil
}

// encodeContext returns the opaque context as JSON text, defaulting to {}.
func encodeContext(raw []byte) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "{}"
	}
	return string(raw)
}

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/helix/backend/internal/model/chat"
	"github.com/zhouzirui/helix/backend/internal/model/sequence"
)

// MemoryStore implements Store with in-process maps, suitable for tests and demos.
type MemoryStore struct {
	mu        sync.RWMutex
	messages  []chat.Message
	sequences map[string]sequence.Sequence
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages:  make([]chat.Message, 0, 16),
		sequences: make(map[string]sequence.Sequence),
	}
}

func (s *MemoryStore) InsertMessage(_ context.Context, msg chat.Message) error {
	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) InsertSequence(_ context.Context, seq sequence.Sequence) (string, error) {
	seq.ID = uuid.NewString()
	seq.CreatedAt = time.Now().UTC()
	seq.UpdatedAt = seq.CreatedAt
	seq.Steps = append([]sequence.Step{}, seq.Steps...)

	s.mu.Lock()
	s.sequences[seq.ID] = seq
	s.mu.Unlock()
	return seq.ID, nil
}

func (s *MemoryStore) UpdateSequenceSteps(_ context.Context, id string, steps []sequence.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.sequences[id]
	if !ok {
		return ErrSequenceNotFound
	}
	seq.Steps = append([]sequence.Step{}, steps...)
	seq.UpdatedAt = time.Now().UTC()
	s.sequences[id] = seq
	return nil
}

func (s *MemoryStore) Probe(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) > 0 {
		return 1, nil
	}
	return 0, nil
}

func (s *MemoryStore) Close() {}

// Messages returns a copy of every stored message in insertion order.
func (s *MemoryStore) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Message(nil), s.messages...)
}

// Sequence looks up a stored sequence by identifier.
func (s *MemoryStore) Sequence(id string) (sequence.Sequence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.sequences[id]
	if !ok {
		return sequence.Sequence{}, false
	}
	seq.Steps = append([]sequence.Step{}, seq.Steps...)
	return seq, true
}

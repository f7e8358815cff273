package sequence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/zhouzirui/helix/backend/internal/model/sequence"
	"github.com/zhouzirui/helix/backend/internal/service/ai"
	"github.com/zhouzirui/helix/backend/internal/store"
)

const defaultUserID = "anonymous"

var (
	ErrSequenceIDRequired = errors.New("sequenceId is required")
	ErrInvalidContext     = errors.New("context must be valid JSON")
	ErrPersistSequence    = errors.New("failed to store sequence")
)

// Service generates outreach sequences and applies user edits to them.
type Service struct {
	ai    *ai.Service
	store store.Store
}

// NewService wires the sequence service to its collaborators.
func NewService(aiSvc *ai.Service, st store.Store) *Service {
	return &Service{ai: aiSvc, store: st}
}

// GenerateRequest carries the frontend's generate-sequence payload.
type GenerateRequest struct {
	Context   json.RawMessage
	UserID    string
	Provider  string
	ModelName string
}

// GenerateResult is a freshly stored sequence.
type GenerateResult struct {
	SequenceID string
	Steps      []sequence.Step
	Provider   string
	Model      string
}

// Generate asks the selected provider for a sequence, parses it into steps
// and stores it. A reply with no parseable steps is still a success.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	sel, err := s.ai.Resolve(req.Provider, req.ModelName)
	if err != nil {
		return GenerateResult{}, err
	}

	contextJSON, err := compactContext(req.Context)
	if err != nil {
		return GenerateResult{}, err
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = defaultUserID
	}

	completion, err := s.ai.Complete(ctx, sel, ai.SequenceSystemPrompt(), ai.SequenceUserPrompt(contextJSON))
	if err != nil {
		return GenerateResult{}, err
	}

	steps := ParseSteps(completion.Content)
	if len(steps) == 0 {
		log.Printf("[sequence] warning: %s/%s reply contained no \"Step\" lines, storing empty sequence for user=%s", sel.Provider, sel.Model, userID)
	}

	id, err := s.store.InsertSequence(ctx, sequence.Sequence{
		UserID:  userID,
		Context: json.RawMessage(contextJSON),
		Steps:   steps,
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("%w: %w", ErrPersistSequence, err)
	}

	log.Printf("[sequence] generated sequence=%s user=%s steps=%d", id, userID, len(steps))
	return GenerateResult{
		SequenceID: id,
		Steps:      steps,
		Provider:   sel.Provider,
		Model:      sel.Model,
	}, nil
}

// Update replaces every stored step of sequenceID with steps.
func (s *Service) Update(ctx context.Context, sequenceID string, steps []sequence.Step) error {
	sequenceID = strings.TrimSpace(sequenceID)
	if sequenceID == "" {
		return ErrSequenceIDRequired
	}
	if steps == nil {
		steps = []sequence.Step{}
	}

	if err := s.store.UpdateSequenceSteps(ctx, sequenceID, steps); err != nil {
		if errors.Is(err, store.ErrSequenceNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrPersistSequence, err)
	}

	log.Printf("[sequence] updated sequence=%s steps=%d", sequenceID, len(steps))
	return nil
}

// compactContext normalises the opaque context for the prompt and the store.
func compactContext(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "{}", nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	return buf.String(), nil
}

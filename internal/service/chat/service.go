package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/zhouzirui/helix/backend/internal/model/chat"
	"github.com/zhouzirui/helix/backend/internal/service/ai"
	"github.com/zhouzirui/helix/backend/internal/store"
)

const defaultUserID = "anonymous"

var ErrPersistUserMessage = errors.New("failed to store user message")

// Service relays chat turns to a provider and records them.
type Service struct {
	ai    *ai.Service
	store store.Store
}

// NewService wires the chat service to its collaborators.
func NewService(aiSvc *ai.Service, st store.Store) *Service {
	return &Service{ai: aiSvc, store: st}
}

// Request is one inbound chat turn.
type Request struct {
	Message   string
	UserID    string
	Provider  string
	ModelName string
}

// Reply is the assistant's answer to a Request.
type Reply struct {
	Message  string
	Provider string
	Model    string
}

// Reply answers one chat turn. The user message must be stored before the
// provider is called; the assistant message is stored best effort.
func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	sel, err := s.ai.Resolve(req.Provider, req.ModelName)
	if err != nil {
		return Reply{}, err
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = defaultUserID
	}

	userMsg := chat.Message{
		UserID:  userID,
		Content: req.Message,
		Type:    chat.MessageTypeUser,
	}
	if err := s.store.InsertMessage(ctx, userMsg); err != nil {
		return Reply{}, fmt.Errorf("%w: %w", ErrPersistUserMessage, err)
	}

	completion, err := s.ai.Complete(ctx, sel, ai.ChatSystemPrompt(), req.Message)
	if err != nil {
		return Reply{}, err
	}

	assistantMsg := chat.Message{
		UserID:  userID,
		Content: completion.Content,
		Type:    chat.MessageTypeAssistant,
	}
	if err := s.store.InsertMessage(ctx, assistantMsg); err != nil {
		log.Printf("[chat] failed to save assistant message for user=%s: %v", userID, err)
	}

	return Reply{
		Message:  completion.Content,
		Provider: completion.Provider,
		Model:    completion.Model,
	}, nil
}

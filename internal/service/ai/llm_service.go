package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/helix/backend/internal/config"
)

// Supported provider names, as sent by the frontend in modelProvider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported model provider")
	ErrMissingCredential   = errors.New("model provider credentials are not configured")
	ErrCompletion          = errors.New("model completion failed")
)

// Backend is one provider's chat model plus the model name used by default.
type Backend struct {
	Model        model.ChatModel
	DefaultModel string
}

// Selection is a resolved provider/model pair.
type Selection struct {
	Provider string
	Model    string
}

// Completion is the text produced for a Selection.
type Completion struct {
	Provider string
	Model    string
	Content  string
}

// Service owns one compiled chain per configured provider.
type Service struct {
	chains      map[string]compose.Runnable[map[string]any, *schema.Message]
	defaults    map[string]string
	known       map[string]bool
	temperature *float32
	maxTokens   *int
}

// NewService builds every provider that has credentials. Providers without
// credentials stay known, so requests for them fail with ErrMissingCredential.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	backends := make(map[string]Backend, 3)
	defaults := map[string]string{
		ProviderOpenAI: cfg.OpenAI.Model,
		ProviderGemini: cfg.Gemini.Model,
		ProviderArk:    cfg.Ark.Model,
	}

	if cfg.OpenAI.Enabled() {
		client, err := cfg.NewOpenAIClient()
		if err != nil {
			log.Printf("warning: failed to initialize openai client: %v", err)
		} else {
			backends[ProviderOpenAI] = Backend{Model: NewLangChainModel(client, cfg.OpenAI.Model), DefaultModel: cfg.OpenAI.Model}
		}
	}

	if cfg.Gemini.Enabled() {
		client, err := cfg.NewGeminiClient(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize gemini client: %v", err)
		} else {
			backends[ProviderGemini] = Backend{Model: NewLangChainModel(client, cfg.Gemini.Model), DefaultModel: cfg.Gemini.Model}
		}
	}

	if cfg.Ark.Enabled() {
		chatModel, err := cfg.NewArkChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize ark chat model: %v", err)
		} else {
			backends[ProviderArk] = Backend{Model: chatModel, DefaultModel: cfg.Ark.Model}
		}
	}

	svc, err := NewServiceWithBackends(ctx, backends)
	if err != nil {
		return nil, err
	}
	for provider, name := range defaults {
		if svc.defaults[provider] == "" {
			svc.defaults[provider] = name
		}
	}

	if cfg.Temperature != nil {
		val := float32(*cfg.Temperature)
		svc.temperature = &val
	}
	svc.maxTokens = cfg.MaxTokens

	return svc, nil
}

// NewServiceWithBackends compiles a chain for each supplied backend.
func NewServiceWithBackends(ctx context.Context, backends map[string]Backend) (*Service, error) {
	svc := &Service{
		chains:   make(map[string]compose.Runnable[map[string]any, *schema.Message], len(backends)),
		defaults: make(map[string]string, len(backends)),
		known: map[string]bool{
			ProviderOpenAI: true,
			ProviderGemini: true,
			ProviderArk:    true,
		},
	}

	for name, backend := range backends {
		name = normalizeProvider(name)
		runnable, err := compileChain(ctx, backend.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s chain: %w", name, err)
		}
		svc.chains[name] = runnable
		svc.defaults[name] = backend.DefaultModel
		svc.known[name] = true
	}

	if len(svc.chains) == 0 {
		log.Println("warning: no model provider configured, chat and sequence generation will fail")
	} else {
		log.Printf("AI providers ready: %s", strings.Join(svc.Providers(), ", "))
	}

	return svc, nil
}

func compileChain(ctx context.Context, chatModel model.ChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	return chain.Compile(ctx)
}

// Providers lists the providers that have a live chain.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.chains))
	for name := range s.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve validates a provider name and fills in the default model.
// An empty provider means OpenAI.
func (s *Service) Resolve(provider, modelName string) (Selection, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		provider = ProviderOpenAI
	}

	if !s.known[provider] {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	if _, ok := s.chains[provider]; !ok {
		return Selection{}, fmt.Errorf("%w: %s", ErrMissingCredential, provider)
	}

	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		modelName = s.defaults[provider]
	}

	return Selection{Provider: provider, Model: modelName}, nil
}

// Complete runs one system+user exchange against the selected provider.
func (s *Service) Complete(ctx context.Context, sel Selection, system, user string) (Completion, error) {
	runnable, ok := s.chains[sel.Provider]
	if !ok {
		return Completion{}, fmt.Errorf("%w: %s", ErrMissingCredential, sel.Provider)
	}

	input := map[string]any{
		"system": system,
		"query":  user,
	}

	response, err := runnable.Invoke(ctx, input, compose.WithChatModelOption(s.modelOptions(sel.Model)...))
	if err != nil {
		return Completion{}, fmt.Errorf("%w: %s: %w", ErrCompletion, sel.Provider, err)
	}

	log.Printf("[ai] completion provider=%s model=%s length=%d", sel.Provider, sel.Model, len(response.Content))
	return Completion{
		Provider: sel.Provider,
		Model:    sel.Model,
		Content:  response.Content,
	}, nil
}

// Probe sends a fixed tiny prompt to provider with its default model.
func (s *Service) Probe(ctx context.Context, provider string) (Completion, error) {
	sel, err := s.Resolve(provider, "")
	if err != nil {
		return Completion{}, err
	}
	return s.Complete(ctx, sel, probeSystemPrompt, probeUserPrompt)
}

func (s *Service) modelOptions(modelName string) []model.Option {
	opts := make([]model.Option, 0, 3)
	if modelName != "" {
		opts = append(opts, model.WithModel(modelName))
	}
	if s.temperature != nil {
		opts = append(opts, model.WithTemperature(*s.temperature))
	}
	if s.maxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*s.maxTokens))
	}
	return opts
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

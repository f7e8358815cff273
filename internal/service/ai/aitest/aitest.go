// Package aitest provides a scripted chat model for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/helix/backend/internal/service/ai"
)

// Model answers every Generate call with Reply, or fails with Err.
type Model struct {
	Reply string
	Err   error

	mu     sync.Mutex
	inputs [][]*schema.Message
	models []string
}

func (m *Model) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{}, opts...)

	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	if options.Model != nil {
		m.models = append(m.models, *options.Model)
	}
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return schema.AssistantMessage(m.Reply, nil), nil
}

func (m *Model) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *Model) BindTools([]*schema.ToolInfo) error { return nil }

// Calls reports how many completions were requested.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// LastQuery returns the user text of the most recent call.
func (m *Model) LastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return ""
	}
	last := m.inputs[len(m.inputs)-1]
	if len(last) == 0 {
		return ""
	}
	return last[len(last)-1].Content
}

// Models lists the per-call model names in call order.
func (m *Model) Models() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.models...)
}

// NewService builds an ai.Service whose providers are all backed by the given models.
func NewService(models map[string]*Model) (*ai.Service, error) {
	backends := make(map[string]ai.Backend, len(models))
	for name, m := range models {
		backends[name] = ai.Backend{Model: m, DefaultModel: name + "-default"}
	}
	return ai.NewServiceWithBackends(context.Background(), backends)
}

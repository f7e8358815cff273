package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tmc/langchaingo/llms"
)

var errToolsUnsupported = errors.New("tool calling is not supported by langchain-backed models")

// LangChainModel adapts a langchaingo llms.Model to eino's chat model contract
// so OpenAI and Gemini clients can sit inside the same compose chain as Ark.
type LangChainModel struct {
	llm          llms.Model
	defaultModel string
}

// NewLangChainModel wraps llm. defaultModel is used when no per-call model is given.
func NewLangChainModel(llm llms.Model, defaultModel string) *LangChainModel {
	return &LangChainModel{llm: llm, defaultModel: defaultModel}
}

// Generate sends the whole conversation in one completion request.
func (m *LangChainModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{}, opts...)

	callOpts := make([]llms.CallOption, 0, 3)
	modelName := m.defaultModel
	if options.Model != nil && *options.Model != "" {
		modelName = *options.Model
	}
	if modelName != "" {
		callOpts = append(callOpts, llms.WithModel(modelName))
	}
	if options.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(float64(*options.Temperature)))
	}
	if options.MaxTokens != nil {
		callOpts = append(callOpts, llms.WithMaxTokens(*options.MaxTokens))
	}

	resp, err := m.llm.GenerateContent(ctx, toMessageContent(input), callOpts...)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model %s returned no choices", modelName)
	}

	choice := resp.Choices[0]
	msg := schema.AssistantMessage(choice.Content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{FinishReason: choice.StopReason}
	return msg, nil
}

// Stream emits the full completion as a single chunk.
func (m *LangChainModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// BindTools is not supported; the relay never registers tools.
func (m *LangChainModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) == 0 {
		return nil
	}
	return errToolsUnsupported
}

func toMessageContent(input []*schema.Message) []llms.MessageContent {
	contents := make([]llms.MessageContent, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		var role llms.ChatMessageType
		switch msg.Role {
		case schema.System:
			role = llms.ChatMessageTypeSystem
		case schema.User:
			role = llms.ChatMessageTypeHuman
		case schema.Assistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeGeneric
		}
		contents = append(contents, llms.TextParts(role, msg.Content))
	}
	return contents
}

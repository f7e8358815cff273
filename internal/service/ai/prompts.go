package ai

import (
	"fmt"
	"strings"
)

// PromptTemplate defines the instructions sent for one kind of request.
type PromptTemplate struct {
	SystemPrompt string
	ContextRules []string
}

// Build joins the system prompt and its rules into a single instruction.
func (t PromptTemplate) Build() string {
	if len(t.ContextRules) == 0 {
		return t.SystemPrompt
	}

	var builder strings.Builder
	builder.WriteString(t.SystemPrompt)
	builder.WriteString("\n\nRules:")
	for _, rule := range t.ContextRules {
		builder.WriteString("\n- ")
		builder.WriteString(rule)
	}
	return builder.String()
}

var chatTemplate = PromptTemplate{
	SystemPrompt: "You are Helix, a recruiting outreach assistant. Help the user create effective outreach sequences.",
}

var sequenceTemplate = PromptTemplate{
	SystemPrompt: "You are Helix, a recruiting outreach assistant. Generate a step-by-step outreach sequence based on the provided context.",
	ContextRules: []string{
		"Write every step on its own line in the form \"Step <number>: <message>\".",
		"Keep each step to a single line.",
	},
}

// ChatSystemPrompt is the instruction used for free-form chat turns.
func ChatSystemPrompt() string {
	return chatTemplate.Build()
}

// SequenceSystemPrompt is the instruction used when generating sequences.
func SequenceSystemPrompt() string {
	return sequenceTemplate.Build()
}

// SequenceUserPrompt embeds the caller's context (already JSON-encoded).
func SequenceUserPrompt(contextJSON string) string {
	return fmt.Sprintf("Generate a recruiting outreach sequence based on this context: %s", contextJSON)
}

const (
	probeSystemPrompt = "You are a connectivity check. Answer as briefly as possible."
	probeUserPrompt   = "Reply with the single word: pong"
)

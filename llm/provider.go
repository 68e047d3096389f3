// Package llm abstracts the hosted chat-completion service. The orchestrator
// only depends on the Provider interface; the OpenAI-compatible client below
// is the production implementation.
package llm

import (
	"context"
	"errors"
)

// ErrMalformedToolCall marks a tool call whose arguments could not be
// parsed. Callers that can proceed without the extraction treat it as a
// decline rather than a failure.
var ErrMalformedToolCall = errors.New("llm: malformed tool call")

// Options tunes a single completion call.
type Options struct {
	// Temperature in [0,1]. Near zero for extraction and filtering calls,
	// moderate for the persuasive final generation.
	Temperature float64
	MaxTokens   int
}

// Tool describes one structured-extraction function offered to the model.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the arguments.
	Parameters map[string]any
}

// ToolCall is the model's selection of a tool with parsed arguments.
type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// Provider is the contract the orchestrator needs from the LLM service.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Complete returns the full generated text for the prompt.
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
	// CompleteWithTools offers the given tools to the model and returns the
	// invoked tool, or nil when the model declined to call one. A nil return
	// with nil error is an expected outcome, not a failure.
	CompleteWithTools(ctx context.Context, prompt string, tools []Tool, opts Options) (*ToolCall, error)
}

// Package llm drafts structured content through a hosted language model.
// Every call is a single turn: a system prompt, one user prompt and an
// optional JSON schema the reply must satisfy.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one reply per request.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Purpose labels a request in the request log.
type Purpose string

const (
	PurposeQuestionDraft Purpose = "question-draft"
	PurposeUnlabeled     Purpose = "unlabeled"
)

// Request is a single-turn prompt.
type Request struct {
	Purpose Purpose
	System  string
	Prompt  string

	// Schema, when set, asks the vendor for JSON output and the reply is
	// validated against it before Generate returns.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

func (r Request) purpose() Purpose {
	if r.Purpose == "" {
		return PurposeUnlabeled
	}
	return r.Purpose
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is sent to vendors that label structured output, e.g.
	// "quiz-questions".
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason says why the model stopped.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a model reply. Content is the JSON document when the
// request carried a schema, else the raw reply text.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	Stop    StopReason
}

// Usage counts tokens of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}
